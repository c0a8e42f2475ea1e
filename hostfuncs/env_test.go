package hostfuncs

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

func TestEnv_HandleScopes(t *testing.T) {
	env := quietEnv()

	outer := env.Store("outer")
	scope := env.OpenScope()
	inner := env.Store("inner")
	require.Equal(t, 1, env.Scopes())

	v, ok := env.Load(inner)
	require.True(t, ok)
	assert.Equal(t, "inner", v)

	require.Equal(t, hostabi.StatusOK, env.CloseScope(scope))
	_, ok = env.Load(inner)
	assert.False(t, ok, "handles die with their scope")
	v, ok = env.Load(outer)
	require.True(t, ok)
	assert.Equal(t, "outer", v)
}

func TestEnv_CloseScopeMismatch(t *testing.T) {
	env := quietEnv()
	first := env.OpenScope()
	second := env.OpenScope()

	assert.Equal(t, hostabi.StatusHandleScopeMismatch, env.CloseScope(first))
	assert.Equal(t, 2, env.Scopes())
	assert.Equal(t, hostabi.StatusOK, env.CloseScope(second))
	assert.Equal(t, hostabi.StatusOK, env.CloseScope(first))
	assert.Equal(t, hostabi.StatusHandleScopeMismatch, env.CloseScope(first))
}

func TestEnv_NullHandle(t *testing.T) {
	env := quietEnv()
	_, ok := env.Load(0)
	assert.False(t, ok)

	_, st := env.TypeOf(0)
	assert.Equal(t, hostabi.StatusInvalidArg, st)
}

func TestEnv_Strings(t *testing.T) {
	env := quietEnv()

	h, st := env.CreateString([]byte("héllo\x00wörld"))
	require.Equal(t, hostabi.StatusOK, st)
	s, st := env.StringValue(h)
	require.Equal(t, hostabi.StatusOK, st)
	assert.Equal(t, "héllo\x00wörld", s)

	t.Run("invalid utf-8 is replaced", func(t *testing.T) {
		h, _ := env.CreateString([]byte{'a', 0xff, 'b'})
		s, _ := env.StringValue(h)
		assert.Equal(t, "a\uFFFDb", s)
	})

	t.Run("not a string", func(t *testing.T) {
		_, st := env.StringValue(env.CreateInt32(1))
		assert.Equal(t, hostabi.StatusStringExpected, st)
	})

	t.Run("limit", func(t *testing.T) {
		small := quietEnv(WithMaxStringBytes(4))
		_, st := small.CreateString([]byte("12345"))
		assert.Equal(t, hostabi.StatusInvalidArg, st)
	})
}

func TestCopyString(t *testing.T) {
	tests := []struct {
		name string
		src  string
		size int
		want string
	}{
		{name: "fits", src: "abc", size: 4, want: "abc"},
		{name: "truncates", src: "abcdef", size: 4, want: "abc"},
		{name: "keeps sequences whole", src: "aé", size: 3, want: "a"},
		{name: "room for terminator only", src: "abc", size: 1, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.size)
			n := CopyString(dst, tt.src)
			assert.Equal(t, tt.want, string(dst[:n]))
			assert.Equal(t, byte(0), dst[n])
		})
	}

	assert.Equal(t, uint32(0), CopyString(nil, "abc"))
}

func TestEnv_Int32Value(t *testing.T) {
	env := quietEnv()
	tests := []struct {
		in   float64
		want int32
	}{
		{in: 42, want: 42},
		{in: -7.9, want: -7},
		{in: 1 << 31, want: math.MinInt32},
		{in: 1<<32 + 5, want: 5},
		{in: math.NaN(), want: 0},
		{in: math.Inf(1), want: 0},
	}
	for _, tt := range tests {
		n, st := env.Int32Value(env.Store(tt.in))
		require.Equal(t, hostabi.StatusOK, st)
		assert.Equal(t, tt.want, n, "Int32Value(%v)", tt.in)
	}

	_, st := env.Int32Value(env.Store("1"))
	assert.Equal(t, hostabi.StatusNumberExpected, st)
}

func TestEnv_Properties(t *testing.T) {
	env := quietEnv()
	obj := env.Store(NewObject())

	require.Equal(t, hostabi.StatusOK, env.SetNamed(obj, "answer", env.CreateInt32(42)))
	h, st := env.GetNamed(obj, "answer")
	require.Equal(t, hostabi.StatusOK, st)
	n, _ := env.Int32Value(h)
	assert.Equal(t, int32(42), n)

	h, st = env.GetNamed(obj, "missing")
	require.Equal(t, hostabi.StatusOK, st)
	typ, _ := env.TypeOf(h)
	assert.Equal(t, hostabi.TypeUndefined, typ)

	st = env.SetNamed(env.Store("str"), "x", h)
	assert.Equal(t, hostabi.StatusObjectExpected, st)
}

func TestEnv_GuestFunction(t *testing.T) {
	var env *Env
	dispatcher := DispatcherFunc(func(ctx context.Context, cb hostabi.Callback, id hostabi.Env, info hostabi.CallbackInfo) (hostabi.Value, error) {
		args, argc, this, data, st := env.CbInfo(info, 3)
		require.Equal(t, hostabi.StatusOK, st)
		assert.Equal(t, uint32(2), argc)
		assert.Equal(t, uint32(7), data)
		typ, _ := env.TypeOf(args[2])
		assert.Equal(t, hostabi.TypeUndefined, typ, "missing arguments are padded with undefined")
		thisVal, _ := env.Load(this)
		assert.Equal(t, "receiver", thisVal)

		a, _ := env.Int32Value(args[0])
		b, _ := env.Int32Value(args[1])
		return env.CreateInt32(a + b), nil
	})
	env = quietEnv(WithDispatcher(dispatcher))

	fn, _ := env.Load(env.CreateFunction("add", nil, 7))
	before := env.Handles()

	got, err := env.Call(context.Background(), fn, "receiver", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, float64(5), got)
	assert.Equal(t, before, env.Handles(), "the call's scope is closed")
	assert.Equal(t, 0, env.Scopes())
}

func TestEnv_GuestFunctionThrows(t *testing.T) {
	var env *Env
	env = quietEnv(WithDispatcher(DispatcherFunc(func(ctx context.Context, cb hostabi.Callback, id hostabi.Env, info hostabi.CallbackInfo) (hostabi.Value, error) {
		env.ThrowError("E_CODE", "went wrong")
		return 0, nil
	})))
	fn, _ := env.Load(env.CreateFunction("fail", nil, 1))

	_, err := env.Call(context.Background(), fn, nil)

	var exc *Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "went wrong", exc.Message())
	assert.Equal(t, "E_CODE", exc.Code())
	assert.False(t, env.IsExceptionPending(), "the exception is handed to the caller")
}

func TestEnv_GuestFunctionTraps(t *testing.T) {
	env := quietEnv(WithDispatcher(DispatcherFunc(func(ctx context.Context, cb hostabi.Callback, id hostabi.Env, info hostabi.CallbackInfo) (hostabi.Value, error) {
		return 0, errors.New("wasm error: unreachable")
	})))
	fn, _ := env.Load(env.CreateFunction("crash", nil, 1))

	_, err := env.Call(context.Background(), fn, nil)

	var trap *TrapError
	require.ErrorAs(t, err, &trap)
	assert.Contains(t, trap.Error(), "unreachable")
	assert.Equal(t, 0, env.Scopes())
}

func TestEnv_CallFunction(t *testing.T) {
	env := quietEnv()
	ctx := context.Background()

	double := NewFunction("double", func(ctx context.Context, inv *Invocation) (any, error) {
		return inv.Args[0].(float64) * 2, nil
	})
	thrower := NewFunction("thrower", func(ctx context.Context, inv *Invocation) (any, error) {
		return nil, &Exception{Value: "thrown"}
	})
	failing := NewFunction("failing", func(ctx context.Context, inv *Invocation) (any, error) {
		return nil, errors.New("plain failure")
	})

	t.Run("returns the result", func(t *testing.T) {
		h, st := env.CallFunction(ctx, env.Store(Undefined{}), env.Store(double), []hostabi.Value{env.CreateInt32(21)})
		require.Equal(t, hostabi.StatusOK, st)
		n, _ := env.Int32Value(h)
		assert.Equal(t, int32(42), n)
	})

	t.Run("thrown value becomes pending", func(t *testing.T) {
		_, st := env.CallFunction(ctx, env.Store(Undefined{}), env.Store(thrower), nil)
		require.Equal(t, hostabi.StatusPendingException, st)
		v, ok := env.TakeException()
		require.True(t, ok)
		assert.Equal(t, "thrown", v)
	})

	t.Run("go error becomes a pending Error", func(t *testing.T) {
		_, st := env.CallFunction(ctx, env.Store(Undefined{}), env.Store(failing), nil)
		require.Equal(t, hostabi.StatusPendingException, st)
		v, _ := env.TakeException()
		assert.Equal(t, "plain failure", (&Exception{Value: v}).Message())
	})

	t.Run("not a function", func(t *testing.T) {
		_, st := env.CallFunction(ctx, env.Store(Undefined{}), env.Store(NewObject()), nil)
		assert.Equal(t, hostabi.StatusFunctionExpected, st)
	})

	t.Run("argument limit", func(t *testing.T) {
		small := quietEnv(WithMaxArgs(1))
		_, st := small.CallFunction(ctx, 0, 0, make([]hostabi.Value, 2))
		assert.Equal(t, hostabi.StatusInvalidArg, st)
	})
}

func TestEnv_GetAndClearException(t *testing.T) {
	env := quietEnv()

	_, st := env.GetAndClearException()
	assert.Equal(t, hostabi.StatusGenericFailure, st)

	require.Equal(t, hostabi.StatusOK, env.Throw(env.Store("oops")))
	assert.True(t, env.IsExceptionPending())

	h, st := env.GetAndClearException()
	require.Equal(t, hostabi.StatusOK, st)
	v, _ := env.Load(h)
	assert.Equal(t, "oops", v)
	assert.False(t, env.IsExceptionPending())
}

func TestEnv_LoadModule(t *testing.T) {
	env := quietEnv()

	t.Run("exports", func(t *testing.T) {
		exports, err := env.LoadModule(context.Background(), func(ctx context.Context, id hostabi.Env, exports hostabi.Value) (hostabi.Value, error) {
			assert.Equal(t, env.ID(), id)
			require.Equal(t, hostabi.StatusOK, env.SetNamed(exports, "hello", env.Store("world")))
			return exports, nil
		})
		require.NoError(t, err)
		obj, ok := exports.(*Object)
		require.True(t, ok)
		assert.Equal(t, "world", obj.Get("hello"))
		assert.Equal(t, 0, env.Scopes())
	})

	t.Run("null handle means the exports object", func(t *testing.T) {
		exports, err := env.LoadModule(context.Background(), func(ctx context.Context, id hostabi.Env, exports hostabi.Value) (hostabi.Value, error) {
			return 0, nil
		})
		require.NoError(t, err)
		assert.IsType(t, &Object{}, exports)
	})

	t.Run("pending exception", func(t *testing.T) {
		_, err := env.LoadModule(context.Background(), func(ctx context.Context, id hostabi.Env, exports hostabi.Value) (hostabi.Value, error) {
			env.ThrowError("", "init failed")
			return exports, nil
		})
		var exc *Exception
		require.ErrorAs(t, err, &exc)
		assert.Equal(t, "init failed", exc.Message())
	})
}
