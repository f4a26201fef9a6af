package core

import (
	"errors"
	"fmt"
)

// TransportError is a network, HTTP status or decode failure of the upstream call.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("LongCat API error (status %d): %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("LongCat API error (status %d)", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("LongCat API request failed: %v", e.Err)
	default:
		return "LongCat API request failed: " + e.Message
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedToolSchemaError is raised when a tool definition cannot be used.
type MalformedToolSchemaError struct {
	Tool  string
	Index int
	Err   error
}

func (e *MalformedToolSchemaError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("tool #%d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("tool %q has invalid parameters schema: %v", e.Tool, e.Err)
}

func (e *MalformedToolSchemaError) Unwrap() error {
	return e.Err
}

// ErrToolNameRequired is wrapped by MalformedToolSchemaError for unnamed tools.
var ErrToolNameRequired = errors.New("tool name is required")

// ErrorTypeName returns the errorType label used in error records.
func ErrorTypeName(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return ErrorTypeTransport
	}
	var schemaErr *MalformedToolSchemaError
	if errors.As(err, &schemaErr) {
		return ErrorTypeMalformedToolSchema
	}
	if err == nil {
		return ErrorTypeUnknown
	}
	return ErrorTypeGeneric
}
