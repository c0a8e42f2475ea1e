package hostfuncs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

func quietEnv(opts ...EnvOption) *Env {
	return NewEnv(1, append([]EnvOption{WithEnvLogger(slog.New(slog.DiscardHandler))}, opts...)...)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	env := quietEnv()

	st := env.Invoke(context.Background(), "napi_create_object", func(ctx context.Context, e *Env) hostabi.Status {
		panic("test panic")
	})

	assert.Equal(t, hostabi.StatusGenericFailure, st)
	last := env.LastError()
	assert.Equal(t, hostabi.StatusGenericFailure, last.Status)
	assert.Contains(t, last.Message, "napi_create_object")
	assert.Contains(t, last.Message, "test panic")
}

func TestPanicRecoveryMiddleware_NoPanic(t *testing.T) {
	env := quietEnv()

	st := env.Invoke(context.Background(), "napi_create_object", func(ctx context.Context, e *Env) hostabi.Status {
		return hostabi.StatusOK
	})

	assert.Equal(t, hostabi.StatusOK, st)
}

func TestPanicRecoveryMiddleware_TrapKeepsUnwinding(t *testing.T) {
	env := quietEnv()
	trap := &TrapError{Err: errors.New("unreachable")}

	assert.PanicsWithValue(t, trap, func() {
		env.Invoke(context.Background(), "napi_call_function", func(ctx context.Context, e *Env) hostabi.Status {
			panic(trap)
		})
	})
}

func TestMiddlewareOrder_FIFO(t *testing.T) {
	var callOrder []string

	record := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, env *Env) hostabi.Status {
				callOrder = append(callOrder, name+"-before")
				st := next(ctx, env)
				callOrder = append(callOrder, name+"-after")
				return st
			}
		}
	}

	env := quietEnv(WithMiddleware(record("mw1"), record("mw2"), record("mw3")))
	env.Invoke(context.Background(), "napi_get_undefined", func(ctx context.Context, e *Env) hostabi.Status {
		callOrder = append(callOrder, "handler")
		return hostabi.StatusOK
	})

	expected := []string{
		"mw1-before",
		"mw2-before",
		"mw3-before",
		"handler",
		"mw3-after",
		"mw2-after",
		"mw1-after",
	}
	assert.Equal(t, expected, callOrder)
}

func TestExceptionGuardMiddleware(t *testing.T) {
	env := quietEnv()
	require.Equal(t, hostabi.StatusOK, env.ThrowError("", "boom"))

	called := false
	handler := func(ctx context.Context, e *Env) hostabi.Status {
		called = true
		return hostabi.StatusOK
	}

	t.Run("blocks ordinary calls", func(t *testing.T) {
		called = false
		st := env.Invoke(context.Background(), "napi_create_object", handler)
		assert.Equal(t, hostabi.StatusPendingException, st)
		assert.False(t, called)
		assert.Equal(t, hostabi.StatusPendingException, env.LastError().Status)
	})

	for _, name := range BypassCalls {
		t.Run("lets "+name+" through", func(t *testing.T) {
			called = false
			st := env.Invoke(context.Background(), name, handler)
			assert.Equal(t, hostabi.StatusOK, st)
			assert.True(t, called)
		})
	}
}

func TestLastErrorMiddleware(t *testing.T) {
	env := quietEnv()
	ctx := context.Background()

	st := env.Invoke(ctx, "napi_get_value_bool", func(ctx context.Context, e *Env) hostabi.Status {
		return e.Fail(hostabi.StatusBooleanExpected, "expected a boolean, got number")
	})
	require.Equal(t, hostabi.StatusBooleanExpected, st)
	assert.Equal(t, LastError{Status: hostabi.StatusBooleanExpected, Message: "expected a boolean, got number"}, env.LastError())

	t.Run("reading the error does not overwrite it", func(t *testing.T) {
		env.Invoke(ctx, "napi_get_last_error_info", func(ctx context.Context, e *Env) hostabi.Status {
			return hostabi.StatusOK
		})
		assert.Equal(t, hostabi.StatusBooleanExpected, env.LastError().Status)
	})

	t.Run("falls back to the status message", func(t *testing.T) {
		env.Invoke(ctx, "napi_typeof", func(ctx context.Context, e *Env) hostabi.Status {
			return hostabi.StatusInvalidArg
		})
		assert.Equal(t, hostabi.StatusInvalidArg.Message(), env.LastError().Message)
	})

	t.Run("success clears the message", func(t *testing.T) {
		env.Invoke(ctx, "napi_typeof", func(ctx context.Context, e *Env) hostabi.Status {
			return hostabi.StatusOK
		})
		assert.Equal(t, LastError{Status: hostabi.StatusOK}, env.LastError())
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	env := NewEnv(42, WithEnvLogger(logger))

	env.Invoke(context.Background(), "napi_get_value_int32", func(ctx context.Context, e *Env) hostabi.Status {
		return e.Fail(hostabi.StatusNumberExpected, "expected a number, got string")
	})

	out := buf.String()
	assert.Contains(t, out, "host function failed")
	assert.Contains(t, out, "function=napi_get_value_int32")
	assert.Contains(t, out, "env=42")
	assert.Contains(t, out, "number_expected")

	buf.Reset()
	env.Invoke(context.Background(), "napi_create_object", func(ctx context.Context, e *Env) hostabi.Status {
		return hostabi.StatusOK
	})
	assert.Contains(t, buf.String(), "host function completed")
	assert.Contains(t, buf.String(), "env=42")
}

func TestHostContext(t *testing.T) {
	env := quietEnv()
	type key struct{}
	parent := context.WithValue(context.Background(), key{}, "v")

	hc := NewHostContext(parent, "napi_throw", env)

	assert.Equal(t, "napi_throw", hc.FunctionName())
	assert.Same(t, env, hc.Env())
	assert.Equal(t, "v", hc.Value(key{}))
	assert.Equal(t, "napi_throw", FunctionNameFrom(hc))
	assert.Equal(t, "unknown", FunctionNameFrom(context.Background()))
}
