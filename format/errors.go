package format

import "fmt"

type ErrorCode string

const (
	// ErrConfiguration marks caller-configuration mistakes, such as asking
	// for a hash algorithm absent from the adapter's hasher table. These are
	// detected before any work begins.
	ErrConfiguration ErrorCode = "CONFIGURATION"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode
	Message string
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}
