package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Sentinel errors for programmatic checking.
var (
	ErrTemplateNotFound = errors.New("template file not found")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrConfigExists     = errors.New("config file already exists")
	ErrKeyNotFound      = errors.New("key not found in config file")
	ErrDuplicateKey     = errors.New("key appears more than once in config file")
	ErrWriteRace        = errors.New("file changed on disk during operation")
)

// ErrorCode provides a machine-readable error type for JSON output.
type ErrorCode string

const (
	ECNone             ErrorCode = ""
	ECTemplateNotFound ErrorCode = "ERR_TEMPLATE_NOT_FOUND"
	ECConfigNotFound   ErrorCode = "ERR_CONFIG_NOT_FOUND"
	ECConfigExists     ErrorCode = "ERR_CONFIG_EXISTS"
	ECKeyNotFound      ErrorCode = "ERR_KEY_NOT_FOUND"
	ECDuplicateKey     ErrorCode = "ERR_DUPLICATE_KEY"
	ECPermission       ErrorCode = "ERR_PERMISSION"
	ECWriteRace        ErrorCode = "ERR_WRITE_RACE"
	ECReadError        ErrorCode = "ERR_READ_FILE"
	ECWriteError       ErrorCode = "ERR_WRITE_FILE"
	ECUnknown          ErrorCode = "ERR_UNKNOWN"
)

// CodeFor maps an error to its machine-readable code.
func CodeFor(err error) ErrorCode {
	switch {
	case err == nil:
		return ECNone
	case errors.Is(err, ErrTemplateNotFound):
		return ECTemplateNotFound
	case errors.Is(err, ErrConfigNotFound):
		return ECConfigNotFound
	case errors.Is(err, ErrConfigExists):
		return ECConfigExists
	case errors.Is(err, ErrKeyNotFound):
		return ECKeyNotFound
	case errors.Is(err, ErrDuplicateKey):
		return ECDuplicateKey
	case errors.Is(err, ErrWriteRace):
		return ECWriteRace
	case errors.Is(err, os.ErrPermission):
		return ECPermission
	default:
		return ECUnknown
	}
}

// CLIError pairs an error code with a human-readable message for output.
type CLIError struct {
	Code    ErrorCode `json:"error_code"`
	Message string    `json:"error"`
}

func (e CLIError) Error() string {
	return e.Message
}

// JSON renders the error as a single-line JSON object.
func (e CLIError) JSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"error_code":%q,"error":"marshal failure"}`, e.Code)
	}
	return string(b)
}

// WrapCLI converts any error into a CLIError, preserving an existing one.
func WrapCLI(err error) CLIError {
	var ce CLIError
	if errors.As(err, &ce) {
		return ce
	}
	return CLIError{Code: CodeFor(err), Message: err.Error()}
}
