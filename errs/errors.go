// Package errs defines the stable error classes surfaced by focus-cli.
package errs

import "fmt"

// Error is a stable, machine-readable error class. Two errors compare equal
// under errors.Is when their codes match, regardless of message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// WithMessage returns a new Error with the same code and a specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg}
}

// WithMessagef returns a new Error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	// Fatal at startup.
	ErrConfigMissing   = &Error{Code: "E_CONFIG_MISSING"}
	ErrConfigMalformed = &Error{Code: "E_CONFIG_MALFORMED"}

	// Expected, recoverable session states.
	ErrAlreadyActive = &Error{Code: "E_ALREADY_ACTIVE"}
	ErrNotActive     = &Error{Code: "E_NOT_ACTIVE"}

	// Fatal for the current operation.
	ErrInsufficientPrivilege = &Error{Code: "E_INSUFFICIENT_PRIVILEGE"}

	// Recoverable; the responder is optional.
	ErrListenerBind = &Error{Code: "E_LISTENER_BIND"}
)
