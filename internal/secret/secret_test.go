package secret

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{name: "cloak key length", n: 32},
		{name: "secret base length", n: 48},
		{name: "single byte", n: 1},
		{name: "zero bytes", n: 0, wantErr: true},
		{name: "negative", n: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Generate(tt.n)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			raw, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err, "output must be valid standard base64")
			assert.Len(t, raw, tt.n)
		})
	}
}

func TestGenerateIsNonDeterministic(t *testing.T) {
	a, err := Generate(48)
	require.NoError(t, err)
	b, err := Generate(48)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two rotations must produce different values")
}

func TestDigest(t *testing.T) {
	// SHA-256("abc")
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		Digest("abc"))
	assert.Equal(t, Digest("same"), Digest("same"))
	assert.NotEqual(t, Digest("a"), Digest("b"))
}
