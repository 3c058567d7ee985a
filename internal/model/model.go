package model

// Operation identifies which bootstrap action produced a Result.
type Operation string

const (
	OpInit   Operation = "init"
	OpRotate Operation = "rotate"
)

// Result holds the outcome of a single bootstrap operation.
type Result struct {
	Operation    Operation `json:"operation"`
	File         string    `json:"file"`
	Key          string    `json:"key,omitempty"`
	ByteLength   int       `json:"byte_length,omitempty"`
	Modified     bool      `json:"modified"`
	DryRun       bool      `json:"dry_run,omitempty"`
	ValueDigest  string    `json:"value_digest,omitempty"` // SHA-256 of the encoded value, never the value
	OriginalSHA1 string    `json:"original_sha1,omitempty"`
	ModifiedSHA1 string    `json:"modified_sha1,omitempty"`
	Warning      string    `json:"warning,omitempty"`
	Error        string    `json:"error,omitempty"`
	ErrorCode    ErrorCode `json:"error_code,omitempty"`

	// Raw contents for diff preview, omitted from JSON.
	OriginalContent string `json:"-"`
	ModifiedContent string `json:"-"`
}
