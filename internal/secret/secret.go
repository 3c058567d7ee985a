// Package secret generates random key material for config rotation.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Generate returns n cryptographically secure random bytes encoded as
// standard base64, matching the output shape of `openssl rand -base64 n`.
func Generate(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("byte length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// Digest returns the SHA-256 hex digest of an encoded value. The audit
// trail stores digests so rotations can be correlated without retaining
// the secret itself.
func Digest(encoded string) string {
	sum := sha256.Sum256([]byte(encoded))
	return hex.EncodeToString(sum[:])
}
