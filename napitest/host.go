// Package napitest provides an in-process napi host for tests: a
// hostabi.Table backed by a hostfuncs.Env, so native modules run without a
// wasm runtime.
package napitest

import (
	"context"
	"log/slog"
	"unsafe"

	"github.com/reglet-dev/reglet-napi/hostabi"
	"github.com/reglet-dev/reglet-napi/hostfuncs"
)

// EnvID is the environment pointer of every Host.
const EnvID hostabi.Env = 1

// Host is an in-process hostabi.Table. Like the environment it wraps, it is
// not safe for concurrent use.
type Host struct {
	ctx     context.Context
	env     *hostfuncs.Env
	errMsg  []byte
	errInfo hostabi.ExtendedErrorInfo
}

var _ hostabi.Table = (*Host)(nil)

// Option configures a Host.
type Option func(*hostConfig)

type hostConfig struct {
	ctx     context.Context
	logger  *slog.Logger
	envOpts []hostfuncs.EnvOption
}

// WithContext sets the context host calls run under.
func WithContext(ctx context.Context) Option {
	return func(c *hostConfig) {
		c.ctx = ctx
	}
}

// WithLogger sets the environment's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *hostConfig) {
		c.logger = logger
	}
}

// WithEnvOptions passes options through to hostfuncs.NewEnv.
func WithEnvOptions(opts ...hostfuncs.EnvOption) Option {
	return func(c *hostConfig) {
		c.envOpts = append(c.envOpts, opts...)
	}
}

// New creates a Host.
func New(opts ...Option) *Host {
	cfg := hostConfig{ctx: context.Background()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	envOpts := append([]hostfuncs.EnvOption{
		hostfuncs.WithEnvLogger(cfg.logger),
		hostfuncs.WithDispatcher(hostfuncs.DispatcherFunc(dispatch)),
	}, cfg.envOpts...)
	return &Host{
		ctx: cfg.ctx,
		env: hostfuncs.NewEnv(EnvID, envOpts...),
	}
}

// dispatch calls cb directly. A panic in the module is a trap.
func dispatch(_ context.Context, cb hostabi.Callback, env hostabi.Env, info hostabi.CallbackInfo) (v hostabi.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if trap, ok := r.(*hostfuncs.TrapError); ok {
				err = trap
				return
			}
			err = &hostfuncs.TrapError{Err: hostfuncs.PanicError(r)}
		}
	}()
	return cb(env, info), nil
}

// Env returns the wrapped environment.
func (h *Host) Env() *hostfuncs.Env {
	return h.env
}

// Load runs a module entry point and returns its exports.
func (h *Host) Load(register func(env hostabi.Env, exports hostabi.Value) hostabi.Value) (any, error) {
	return h.env.LoadModule(h.ctx, func(_ context.Context, env hostabi.Env, exports hostabi.Value) (v hostabi.Value, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = hostfuncs.AsTrap(hostfuncs.PanicError(r))
			}
		}()
		return register(env, exports), nil
	})
}

// Call calls fn the way host code would.
func (h *Host) Call(fn any, this any, args ...any) (any, error) {
	return h.env.Call(h.ctx, fn, this, args...)
}

// Export returns property name of exports.
func Export(exports any, name string) any {
	if o, ok := exports.(*hostfuncs.Object); ok {
		return o.Get(name)
	}
	return hostfuncs.Undefined{}
}

func (h *Host) invoke(name string, fn hostfuncs.Handler) hostabi.Status {
	return h.env.Invoke(h.ctx, name, fn)
}

func (h *Host) check(env hostabi.Env) hostabi.Status {
	if env != h.env.ID() {
		return hostabi.StatusInvalidArg
	}
	return hostabi.StatusOK
}

func readString(p *byte, length uint32) string {
	if p == nil {
		return ""
	}
	if length == hostabi.AutoLength {
		n := 0
		for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
			n++
		}
		return string(unsafe.Slice(p, n))
	}
	return string(unsafe.Slice(p, length))
}

func cString(p *byte) string {
	return readString(p, hostabi.AutoLength)
}

// GetLastErrorInfo implements hostabi.Table. The record stays valid until
// the next call.
func (h *Host) GetLastErrorInfo(env hostabi.Env, result **hostabi.ExtendedErrorInfo) hostabi.Status {
	if st := h.check(env); !st.OK() {
		return st
	}
	return h.invoke("napi_get_last_error_info", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		last := e.LastError()
		h.errInfo = hostabi.ExtendedErrorInfo{ErrorCode: last.Status}
		if last.Message != "" {
			h.errMsg = append([]byte(last.Message), 0)
			h.errInfo.ErrorMessage = &h.errMsg[0]
		}
		*result = &h.errInfo
		return hostabi.StatusOK
	})
}

// IsExceptionPending implements hostabi.Table.
func (h *Host) IsExceptionPending(env hostabi.Env, result *bool) hostabi.Status {
	return h.invoke("napi_is_exception_pending", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		*result = e.IsExceptionPending()
		return hostabi.StatusOK
	})
}

func (h *Host) store(name string, env hostabi.Env, result *hostabi.Value, v func() any) hostabi.Status {
	return h.invoke(name, func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		*result = e.Store(v())
		return hostabi.StatusOK
	})
}

// GetUndefined implements hostabi.Table.
func (h *Host) GetUndefined(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return h.store("napi_get_undefined", env, result, func() any { return hostfuncs.Undefined{} })
}

// GetNull implements hostabi.Table.
func (h *Host) GetNull(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return h.store("napi_get_null", env, result, func() any { return hostfuncs.Null{} })
}

// GetGlobal implements hostabi.Table.
func (h *Host) GetGlobal(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return h.store("napi_get_global", env, result, func() any { return h.env.Global() })
}

// GetBoolean implements hostabi.Table.
func (h *Host) GetBoolean(env hostabi.Env, value bool, result *hostabi.Value) hostabi.Status {
	return h.store("napi_get_boolean", env, result, func() any { return value })
}

// CreateObject implements hostabi.Table.
func (h *Host) CreateObject(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return h.store("napi_create_object", env, result, func() any { return hostfuncs.NewObject() })
}

// CreateInt32 implements hostabi.Table.
func (h *Host) CreateInt32(env hostabi.Env, value int32, result *hostabi.Value) hostabi.Status {
	return h.store("napi_create_int32", env, result, func() any { return float64(value) })
}

// CreateStringUTF8 implements hostabi.Table.
func (h *Host) CreateStringUTF8(env hostabi.Env, str *byte, length uint32, result *hostabi.Value) hostabi.Status {
	return h.invoke("napi_create_string_utf8", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		v, st := e.CreateString([]byte(readString(str, length)))
		*result = v
		return st
	})
}

// GetValueStringUTF8 implements hostabi.Table.
func (h *Host) GetValueStringUTF8(env hostabi.Env, value hostabi.Value, buf *byte, bufSize uint32, result *uint32) hostabi.Status {
	return h.invoke("napi_get_value_string_utf8", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		s, st := e.StringValue(value)
		if !st.OK() {
			return st
		}
		if buf == nil {
			*result = uint32(len(s))
			return hostabi.StatusOK
		}
		*result = hostfuncs.CopyString(unsafe.Slice(buf, bufSize), s)
		return hostabi.StatusOK
	})
}

// GetValueInt32 implements hostabi.Table.
func (h *Host) GetValueInt32(env hostabi.Env, value hostabi.Value, result *int32) hostabi.Status {
	return h.invoke("napi_get_value_int32", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		n, st := e.Int32Value(value)
		*result = n
		return st
	})
}

// GetValueBool implements hostabi.Table.
func (h *Host) GetValueBool(env hostabi.Env, value hostabi.Value, result *bool) hostabi.Status {
	return h.invoke("napi_get_value_bool", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		b, st := e.BoolValue(value)
		*result = b
		return st
	})
}

// TypeOf implements hostabi.Table.
func (h *Host) TypeOf(env hostabi.Env, value hostabi.Value, result *hostabi.ValueType) hostabi.Status {
	return h.invoke("napi_typeof", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		t, st := e.TypeOf(value)
		*result = t
		return st
	})
}

// SetNamedProperty implements hostabi.Table.
func (h *Host) SetNamedProperty(env hostabi.Env, object hostabi.Value, utf8name *byte, value hostabi.Value) hostabi.Status {
	return h.invoke("napi_set_named_property", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		return e.SetNamed(object, cString(utf8name), value)
	})
}

// GetNamedProperty implements hostabi.Table.
func (h *Host) GetNamedProperty(env hostabi.Env, object hostabi.Value, utf8name *byte, result *hostabi.Value) hostabi.Status {
	return h.invoke("napi_get_named_property", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		v, st := e.GetNamed(object, cString(utf8name))
		*result = v
		return st
	})
}

// CreateFunction implements hostabi.Table. cb is called in-process.
func (h *Host) CreateFunction(env hostabi.Env, utf8name *byte, length uint32, cb hostabi.Callback, data uint32, result *hostabi.Value) hostabi.Status {
	return h.invoke("napi_create_function", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		if cb == nil {
			return hostabi.StatusInvalidArg
		}
		*result = e.CreateFunction(readString(utf8name, length), cb, data)
		return hostabi.StatusOK
	})
}

// GetCbInfo implements hostabi.Table.
func (h *Host) GetCbInfo(env hostabi.Env, info hostabi.CallbackInfo, argc *uint32, argv *hostabi.Value, thisArg *hostabi.Value, data *uint32) hostabi.Status {
	return h.invoke("napi_get_cb_info", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		var capacity uint32
		if argc != nil && argv != nil {
			capacity = *argc
		}
		args, n, this, d, st := e.CbInfo(info, capacity)
		if !st.OK() {
			return st
		}
		if argc != nil {
			*argc = n
		}
		if capacity > 0 {
			copy(unsafe.Slice(argv, capacity), args)
		}
		if thisArg != nil {
			*thisArg = this
		}
		if data != nil {
			*data = d
		}
		return hostabi.StatusOK
	})
}

// GetNewTarget implements hostabi.Table.
func (h *Host) GetNewTarget(env hostabi.Env, info hostabi.CallbackInfo, result *hostabi.Value) hostabi.Status {
	return h.invoke("napi_get_new_target", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		v, st := e.NewTarget(info)
		*result = v
		return st
	})
}

// CallFunction implements hostabi.Table.
func (h *Host) CallFunction(env hostabi.Env, recv hostabi.Value, fn hostabi.Value, argc uint32, argv *hostabi.Value, result *hostabi.Value) hostabi.Status {
	return h.invoke("napi_call_function", func(ctx context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		var args []hostabi.Value
		if argc > 0 {
			args = unsafe.Slice(argv, argc)
		}
		v, st := e.CallFunction(ctx, recv, fn, args)
		*result = v
		return st
	})
}

// Throw implements hostabi.Table.
func (h *Host) Throw(env hostabi.Env, err hostabi.Value) hostabi.Status {
	return h.invoke("napi_throw", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		return e.Throw(err)
	})
}

// ThrowError implements hostabi.Table.
func (h *Host) ThrowError(env hostabi.Env, code *byte, msg *byte) hostabi.Status {
	return h.invoke("napi_throw_error", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		return e.ThrowError(cString(code), cString(msg))
	})
}

// GetAndClearLastException implements hostabi.Table.
func (h *Host) GetAndClearLastException(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return h.invoke("napi_get_and_clear_last_exception", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		v, st := e.GetAndClearException()
		*result = v
		return st
	})
}

// OpenHandleScope implements hostabi.Table.
func (h *Host) OpenHandleScope(env hostabi.Env, result *hostabi.HandleScope) hostabi.Status {
	return h.invoke("napi_open_handle_scope", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		*result = e.OpenScope()
		return hostabi.StatusOK
	})
}

// CloseHandleScope implements hostabi.Table.
func (h *Host) CloseHandleScope(env hostabi.Env, scope hostabi.HandleScope) hostabi.Status {
	return h.invoke("napi_close_handle_scope", func(_ context.Context, e *hostfuncs.Env) hostabi.Status {
		if st := h.check(env); !st.OK() {
			return st
		}
		return e.CloseScope(scope)
	})
}
