package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrorNotFound       ErrorCode = "NOT_FOUND"
	ErrorModelCall      ErrorCode = "MODEL_CALL_ERROR"
	ErrorBadModelOutput ErrorCode = "BAD_MODEL_OUTPUT"
	ErrorStore          ErrorCode = "STORE_ERROR"
	ErrorInternal       ErrorCode = "INTERNAL_ERROR"
)

// Error carries a stable code and reason past the usecase boundary while
// preserving the original cause for logging. Diagnostic holds raw model text
// for BAD_MODEL_OUTPUT so callers can show it to the end user.
type Error struct {
	Code       ErrorCode
	Reason     string
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

func newDiagnosticError(code ErrorCode, reason, diagnostic string, err error) *Error {
	return &Error{Code: code, Reason: reason, Diagnostic: truncateDiagnostic(diagnostic), Err: err}
}

const maxDiagnosticLen = 200

func truncateDiagnostic(s string) string {
	if len(s) <= maxDiagnosticLen {
		return s
	}
	return s[:maxDiagnosticLen] + "..."
}
