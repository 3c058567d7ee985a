package model

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ECNone},
		{name: "template not found", err: ErrTemplateNotFound, want: ECTemplateNotFound},
		{name: "config not found wrapped", err: fmt.Errorf("rotate: %w", ErrConfigNotFound), want: ECConfigNotFound},
		{name: "config exists", err: ErrConfigExists, want: ECConfigExists},
		{name: "key not found wrapped", err: fmt.Errorf("%w: CLOAK_KEY", ErrKeyNotFound), want: ECKeyNotFound},
		{name: "duplicate key", err: ErrDuplicateKey, want: ECDuplicateKey},
		{name: "write race", err: ErrWriteRace, want: ECWriteRace},
		{name: "permission wrapped", err: fmt.Errorf("open: %w", os.ErrPermission), want: ECPermission},
		{name: "unknown", err: errors.New("boom"), want: ECUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeFor(tt.err))
		})
	}
}

func TestWrapCLI(t *testing.T) {
	ce := WrapCLI(fmt.Errorf("rotate: %w", ErrKeyNotFound))
	assert.Equal(t, ECKeyNotFound, ce.Code)
	assert.Equal(t, "rotate: key not found in config file", ce.Message)

	// An existing CLIError passes through unchanged.
	same := WrapCLI(ce)
	assert.Equal(t, ce, same)

	assert.Contains(t, ce.JSON(), `"error_code":"ERR_KEY_NOT_FOUND"`)
}
