package hostfuncs

import (
	"context"
	"errors"
	"fmt"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// CreateFunction stores a function that calls back into the guest through
// the Dispatcher with cb and data.
func (e *Env) CreateFunction(name string, cb hostabi.Callback, data uint32) hostabi.Value {
	return e.Store(NewFunction(name, e.guestFunction(name, cb, data)))
}

// guestFunction opens a scope, records the call info, dispatches into the
// guest and loads its result before the scope closes. An exception the guest
// left pending is rethrown to the caller.
func (e *Env) guestFunction(name string, cb hostabi.Callback, data uint32) NativeFunc {
	return func(ctx context.Context, inv *Invocation) (any, error) {
		if e.dispatcher == nil {
			return nil, &TrapError{Err: fmt.Errorf("function %q: no dispatcher", name)}
		}

		scope := e.OpenScope()
		defer e.unwind(scope)

		e.nextInfo++
		info := e.nextInfo
		e.infos[info] = &callbackRecord{
			this:      inv.This,
			newTarget: inv.NewTarget,
			args:      inv.Args,
			data:      data,
		}
		defer delete(e.infos, info)

		h, err := e.dispatcher.Dispatch(ctx, cb, e.id, info)
		if err != nil {
			e.logger.WarnContext(ctx, "guest function trapped", "function", name, "error", err)
			return nil, AsTrap(err)
		}

		var result any = Undefined{}
		if v, ok := e.Load(h); ok {
			result = v
		}
		if exc, ok := e.TakeException(); ok {
			return nil, &Exception{Value: exc}
		}
		return result, nil
	}
}

// Call calls fn with receiver this. A thrown value comes back as
// *Exception and a guest abort as *TrapError.
func (e *Env) Call(ctx context.Context, fn any, this any, args ...any) (any, error) {
	f, ok := fn.(*Function)
	if !ok {
		return nil, fmt.Errorf("%s is not a function", Describe(fn))
	}
	norm := make([]any, len(args))
	for i, a := range args {
		norm[i] = Normalize(a)
	}
	if this == nil {
		this = Undefined{}
	}
	result, err := f.call(ctx, &Invocation{This: Normalize(this), NewTarget: Undefined{}, Args: norm})
	if err != nil {
		return nil, err
	}
	return Normalize(result), nil
}

// CallFunction is the napi_call_function semantics: a thrown value becomes
// the pending exception. A trap panics so it unwinds the guest frames that
// made the call; the middleware lets it through.
func (e *Env) CallFunction(ctx context.Context, recv, fn hostabi.Value, argv []hostabi.Value) (hostabi.Value, hostabi.Status) {
	if len(argv) > e.maxArgs {
		return 0, e.Fail(hostabi.StatusInvalidArg, "%d arguments exceed limit of %d", len(argv), e.maxArgs)
	}
	this, st := e.load(recv)
	if !st.OK() {
		return 0, st
	}
	f, st := e.load(fn)
	if !st.OK() {
		return 0, st
	}
	if _, ok := f.(*Function); !ok {
		return 0, e.Fail(hostabi.StatusFunctionExpected, "expected a function, got %s", TypeOf(f))
	}
	args := make([]any, len(argv))
	for i, h := range argv {
		if args[i], st = e.load(h); !st.OK() {
			return 0, st
		}
	}

	result, err := e.Call(ctx, f, this, args...)
	if err != nil {
		var trap *TrapError
		if errors.As(err, &trap) {
			panic(trap)
		}
		var exc *Exception
		if errors.As(err, &exc) {
			e.setPending(exc.Value)
		} else {
			e.setPending(NewError("", err.Error()))
		}
		return 0, e.Fail(hostabi.StatusPendingException, "function threw %s", Describe(e.pending))
	}
	return e.Store(result), hostabi.StatusOK
}

// RegisterFunc runs a module's registration entry point.
type RegisterFunc func(ctx context.Context, env hostabi.Env, exports hostabi.Value) (hostabi.Value, error)

// LoadModule creates the exports object and hands it to register inside a
// handle scope. It returns what register returned, or the exports object
// if register returned the null handle.
func (e *Env) LoadModule(ctx context.Context, register RegisterFunc) (any, error) {
	scope := e.OpenScope()
	defer e.unwind(scope)

	exports := NewObject()
	h, err := register(ctx, e.id, e.Store(exports))
	if err != nil {
		return nil, AsTrap(err)
	}
	if exc, ok := e.TakeException(); ok {
		return nil, &Exception{Value: exc}
	}
	if v, ok := e.Load(h); ok {
		return v, nil
	}
	return exports, nil
}
