package domain

import (
	"errors"
	"fmt"
)

// DomainError is a protocol-level error with a stable code.
//
// Message is exactly what the client receives after the "-" reply prefix,
// so it carries no code decoration. Code identifies the error class and is
// what errors.Is compares.
type DomainError struct {
	Code    string // Error code (e.g., "KV-CMD-4001")
	Message string // Wire message
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Withf returns a copy of the error carrying a formatted message.
func (e *DomainError) Withf(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Error codes.
const (
	CodeFraming        = "KV-PROTO-4000"
	CodeLimit          = "KV-PROTO-4130"
	CodeArity          = "KV-CMD-4001"
	CodeOption         = "KV-CMD-4002"
	CodeUnknownCommand = "KV-CMD-4040"
	CodeRateLimited    = "KV-SYS-4290"
)

var (
	// ErrFraming indicates a malformed frame header or element.
	// It is reported to the client and the connection keeps reading.
	ErrFraming = NewDomainError(CodeFraming, "Input format error")

	// ErrLimitExceeded indicates a frame exceeding the protocol limits.
	// The connection is closed after the error reply.
	ErrLimitExceeded = NewDomainError(CodeLimit, "ERR protocol limit exceeded")

	// ErrArity indicates a wrong number of command arguments.
	ErrArity = NewDomainError(CodeArity, "ERR wrong number of arguments")

	// ErrOption indicates an unknown, duplicate or malformed SET option.
	ErrOption = NewDomainError(CodeOption, "Invalid Option")

	// ErrUnknownCommand indicates an unrecognized command verb.
	ErrUnknownCommand = NewDomainError(CodeUnknownCommand, "Unknown command")

	// ErrRateLimited indicates the client exceeded its command rate.
	ErrRateLimited = NewDomainError(CodeRateLimited, "ERR rate limit exceeded")
)

// ErrorKind returns a short label for an error code, used in metrics.
func ErrorKind(err error) string {
	switch GetErrorCode(err) {
	case CodeFraming:
		return "framing"
	case CodeLimit:
		return "limit"
	case CodeArity:
		return "arity"
	case CodeOption:
		return "option"
	case CodeUnknownCommand:
		return "unknown_command"
	case CodeRateLimited:
		return "rate_limited"
	default:
		return "other"
	}
}
