package hostfuncs

import (
	"errors"
	"fmt"
)

// Exception is a value thrown by a function, returned to Go callers as an
// error.
type Exception struct {
	Value any
}

func (e *Exception) Error() string {
	return "uncaught " + Describe(e.Value)
}

// Message returns the message property of a thrown Error, or the rendered
// value for anything else.
func (e *Exception) Message() string {
	if o, ok := e.Value.(*Object); ok && o.Has("message") {
		return plain(o.Get("message"))
	}
	return Describe(e.Value)
}

// Code returns the code property of a thrown Error.
func (e *Exception) Code() string {
	if o, ok := e.Value.(*Object); ok {
		if c, ok := o.Get("code").(string); ok {
			return c
		}
	}
	return ""
}

// TrapError reports that the guest aborted while the host was calling it.
type TrapError struct {
	Err error
}

func (e *TrapError) Error() string {
	return "guest trapped: " + e.Err.Error()
}

func (e *TrapError) Unwrap() error {
	return e.Err
}

// AsTrap wraps err in *TrapError unless it already is one.
func AsTrap(err error) *TrapError {
	var trap *TrapError
	if errors.As(err, &trap) {
		return trap
	}
	return &TrapError{Err: err}
}

// PanicError converts a recovered panic value into an error.
func PanicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
