package models

import "time"

// Rotation records one completed key rotation. Only a digest of the
// generated value is stored, never the value itself.
type Rotation struct {
	ID uint `gorm:"primaryKey"`

	// Target information
	File string `gorm:"type:varchar(512);not null;index"`
	Key  string `gorm:"type:varchar(255);not null;index"`

	// What was written
	ByteLength  int    `gorm:"not null"`
	ValueDigest string `gorm:"type:varchar(64);not null"` // SHA-256 of the encoded value
	Appended    bool   // true when the key line was added rather than replaced

	// Checksums of the file before and after the edit
	BaseDigest  string `gorm:"type:varchar(40)"`
	AfterDigest string `gorm:"type:varchar(40)"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}
