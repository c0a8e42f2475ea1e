package napi

import "github.com/reglet-dev/reglet-napi/hostabi"

// Env is the handle of one host environment. It is a plain value: copy it
// freely. The host owns the environment and keeps it alive for as long as
// any call using it is running.
type Env struct {
	m   *Module
	raw hostabi.Env
}

// Raw returns the host environment pointer.
func (e Env) Raw() hostabi.Env {
	return e.raw
}

// Module returns the module the environment is bound through.
func (e Env) Module() *Module {
	return e.m
}

func (e Env) table() hostabi.Table {
	return e.m.table
}

// wrap ties a raw handle to the innermost open scope.
func (e Env) wrap(raw hostabi.Value) Value {
	return Value{raw: raw, scope: e.m.scopes.current()}
}

// live fails with ErrValueOutOfScope if any of vs has outlived its scope.
func (e Env) live(op string, vs ...Value) error {
	for _, v := range vs {
		if !e.m.scopes.live(v.scope) {
			return &scopeError{op: op}
		}
	}
	return nil
}

// IsExceptionPending reports whether the host has an exception waiting to
// be thrown. It panics if the host cannot answer.
func (e Env) IsExceptionPending() bool {
	var pending bool
	st := e.table().IsExceptionPending(e.raw, &pending)
	return must("is_exception_pending", pending, e.check("is_exception_pending", st))
}

// Undefined returns the host's undefined value. It panics if the host
// cannot produce it.
func (e Env) Undefined() Value {
	var raw hostabi.Value
	st := e.table().GetUndefined(e.raw, &raw)
	return e.wrap(must("get_undefined", raw, e.check("get_undefined", st)))
}

// Null returns the host's null value. It panics if the host cannot produce
// it.
func (e Env) Null() Value {
	var raw hostabi.Value
	st := e.table().GetNull(e.raw, &raw)
	return e.wrap(must("get_null", raw, e.check("get_null", st)))
}

// Global returns the host's global object.
func (e Env) Global() Value {
	var raw hostabi.Value
	st := e.table().GetGlobal(e.raw, &raw)
	return e.wrap(must("get_global", raw, e.check("get_global", st)))
}

// Boolean returns the host's true or false value.
func (e Env) Boolean(b bool) Value {
	var raw hostabi.Value
	st := e.table().GetBoolean(e.raw, b, &raw)
	return e.wrap(must("get_boolean", raw, e.check("get_boolean", st)))
}

type scopeError struct {
	op string
}

func (e *scopeError) Error() string {
	return e.op + ": " + ErrValueOutOfScope.Error()
}

func (e *scopeError) Unwrap() error {
	return ErrValueOutOfScope
}
