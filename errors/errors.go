// Package errors defines the error taxonomy for the platform RPC layer.
//
// All errors raised by the action handlers and the dispatcher are
// represented as *Error, which provides:
//   - Code: machine-readable error identifier
//   - Message: human-readable error description
//   - Cause: underlying error, if any
//
// Each code maps onto a JSON-RPC 2.0 error code via JSONRPCCode, so the
// dispatcher can turn any *Error into a well-formed error response
// entry. Use the provided constructors to create properly coded errors.
package errors

import "fmt"

// Code is a machine-readable error identifier.
type Code string

const (
	// INVALID_REQUEST covers missing transactions, illegal state
	// transitions and malformed RPC envelopes.
	INVALID_REQUEST Code = "INVALID_REQUEST"

	// INVALID_PARAMS covers structurally valid requests whose
	// parameters violate a handler rule.
	INVALID_PARAMS Code = "INVALID_PARAMS"

	// BAD_REQUEST covers amount-format violations (non-positive where
	// positive is required, and the like).
	BAD_REQUEST Code = "BAD_REQUEST"

	// METHOD_NOT_FOUND means no handler is registered for the method.
	METHOD_NOT_FOUND Code = "METHOD_NOT_FOUND"

	// INTERNAL_ERROR is an unexpected failure: a bug or a broken
	// collaborator, never expected control flow.
	INTERNAL_ERROR Code = "INTERNAL_ERROR"

	// STORE_ERROR is a persistence failure, including save conflicts.
	STORE_ERROR Code = "STORE_ERROR"

	// CONFIG_INVALID is a fatal misconfiguration, such as an action
	// that requires custody integration while it is disabled.
	CONFIG_INVALID Code = "CONFIG_INVALID"
)

// JSON-RPC 2.0 error codes.
const (
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
)

// Error is the base error type for the platform RPC layer.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, enabling error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// JSONRPCCode maps the taxonomy onto JSON-RPC 2.0 error codes.
func (e *Error) JSONRPCCode() int {
	switch e.Code {
	case INVALID_REQUEST, CONFIG_INVALID:
		return JSONRPCInvalidRequest
	case METHOD_NOT_FOUND:
		return JSONRPCMethodNotFound
	case INVALID_PARAMS, BAD_REQUEST:
		return JSONRPCInvalidParams
	default:
		return JSONRPCInternalError
	}
}

// NewInvalidRequest creates an INVALID_REQUEST error.
func NewInvalidRequest(format string, args ...any) *Error {
	return &Error{Code: INVALID_REQUEST, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidParams creates an INVALID_PARAMS error.
func NewInvalidParams(format string, args ...any) *Error {
	return &Error{Code: INVALID_PARAMS, Message: fmt.Sprintf(format, args...)}
}

// NewBadRequest creates a BAD_REQUEST error.
func NewBadRequest(format string, args ...any) *Error {
	return &Error{Code: BAD_REQUEST, Message: fmt.Sprintf(format, args...)}
}

// NewMethodNotFound creates a METHOD_NOT_FOUND error.
func NewMethodNotFound(format string, args ...any) *Error {
	return &Error{Code: METHOD_NOT_FOUND, Message: fmt.Sprintf(format, args...)}
}

// NewInternalError creates an INTERNAL_ERROR wrapping a cause.
func NewInternalError(message string, cause error) *Error {
	return &Error{Code: INTERNAL_ERROR, Message: message, Cause: cause}
}

// NewStoreError creates a STORE_ERROR wrapping a cause.
func NewStoreError(message string, cause error) *Error {
	return &Error{Code: STORE_ERROR, Message: message, Cause: cause}
}

// NewConfigInvalid creates a CONFIG_INVALID error.
func NewConfigInvalid(format string, args ...any) *Error {
	return &Error{Code: CONFIG_INVALID, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts an *Error from err, or wraps err as INTERNAL_ERROR
// when it is not part of the taxonomy.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return NewInternalError(err.Error(), err)
}
