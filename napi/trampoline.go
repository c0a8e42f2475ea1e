package napi

import (
	"errors"
	"fmt"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// Dispatch is the trampoline: the one entry point the host calls for every
// function created with CreateFunction. It rebuilds the call's
// CallbackInfo, looks up the callback by the data key and converts its
// result into the host's convention. A thrown call returns the null handle
// with the exception pending.
//
// Dispatch panics with *InvariantError if the host cannot describe the
// call or the data key is unknown.
func (m *Module) Dispatch(rawEnv hostabi.Env, rawInfo hostabi.CallbackInfo) hostabi.Value {
	env := m.Env(rawEnv)
	token := m.scopes.push()
	defer m.closeScope(token)

	info, key := newCallbackInfo(env, rawInfo)
	reg, ok := m.registry.lookup(key)
	if !ok {
		fatal("callback_dispatch", fmt.Errorf("no callback registered under key %d", key))
	}
	info.name = reg.name

	result, err := reg.fn(info)
	if err != nil {
		m.raise(env, reg.name, err)
		return 0
	}
	if result.IsZero() {
		return info.undefined.raw
	}
	if !m.scopes.live(result.scope) {
		m.raise(env, reg.name, &scopeError{op: reg.name + " result"})
		return 0
	}
	return result.raw
}

// raise turns a callback error into a pending host exception.
func (m *Module) raise(env Env, name string, err error) {
	var inv *InvariantError
	if errors.As(err, &inv) {
		panic(inv)
	}

	var exc *Exception
	if errors.As(err, &exc) {
		if env.IsExceptionPending() {
			m.logger.Debug("napi: callback threw with an exception already pending", "callback", name)
			return
		}
		thrown := exc.Value
		if thrown.IsZero() {
			thrown = env.Undefined()
		}
		if m.scopes.live(thrown.scope) {
			m.logger.Debug("napi: callback threw a value", "callback", name)
			if terr := Throw(env, thrown); terr != nil {
				fatal("throw", terr)
			}
			return
		}
		err = &scopeError{op: name + " exception"}
	}

	// A host call inside the callback already left an exception pending;
	// it is the one the host should see.
	if env.IsExceptionPending() {
		return
	}

	m.logger.Debug("napi: callback returned an error", "callback", name, "error", err)
	code := ""
	var herr *Error
	if errors.As(err, &herr) {
		code = herr.Code()
	}
	if terr := ThrowError(env, code, err.Error()); terr != nil {
		fatal("throw_error", terr)
	}
}
