package domain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a recoverable failure class. Codes are stable wire
// values surfaced to callers verbatim.
type ErrorCode string

const (
	CodeTerminalStatus     ErrorCode = "TerminalStatus"
	CodeStageNotInPipeline ErrorCode = "StageNotInPipeline"
	CodeInvalidTransition  ErrorCode = "InvalidTransition"
	CodeUnauthorized       ErrorCode = "Unauthorized"
	CodeInsufficientData   ErrorCode = "InsufficientData"
	CodeConflict           ErrorCode = "Conflict"
	CodeNotFound           ErrorCode = "NotFound"
	CodeUnknown            ErrorCode = "Unknown"
)

// Error is a typed, recoverable domain failure. Message is safe end-user
// text; callers may present it verbatim.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a typed domain error.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the error code from err, unwrapping as needed. Anything
// that is not a domain Error reports CodeUnknown.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeUnknown
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
