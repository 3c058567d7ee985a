package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/termfx/confx/models"
)

// Connect establishes a database connection and runs migrations.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	// Ensure directory exists for file-based SQLite
	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// Migrate runs database migrations.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Rotation{})
}

// RecordRotation persists a rotation audit row.
func RecordRotation(db *gorm.DB, r *models.Rotation) error {
	if err := db.Create(r).Error; err != nil {
		return fmt.Errorf("recording rotation: %w", err)
	}
	return nil
}

// ListRotations returns recorded rotations, newest first. A limit of 0
// returns all rows.
func ListRotations(db *gorm.DB, limit int) ([]models.Rotation, error) {
	q := db.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rotations []models.Rotation
	if err := q.Find(&rotations).Error; err != nil {
		return nil, fmt.Errorf("listing rotations: %w", err)
	}
	return rotations, nil
}
