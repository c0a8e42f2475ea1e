package hostfuncs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// DefaultMaxStringBytes limits the size of strings a guest may create (1MB).
// This prevents a guest from triggering OOM by claiming a huge length.
const DefaultMaxStringBytes = 1 * 1024 * 1024

// DefaultMaxArgs limits the argument count of napi_call_function.
const DefaultMaxArgs = 1024

// Dispatcher calls into the guest for functions it created with
// napi_create_function. A returned error is a trap: the guest can no longer
// be trusted and the error unwinds the whole host call.
type Dispatcher interface {
	Dispatch(ctx context.Context, cb hostabi.Callback, env hostabi.Env, info hostabi.CallbackInfo) (hostabi.Value, error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, cb hostabi.Callback, env hostabi.Env, info hostabi.CallbackInfo) (hostabi.Value, error)

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(ctx context.Context, cb hostabi.Callback, env hostabi.Env, info hostabi.CallbackInfo) (hostabi.Value, error) {
	return f(ctx, cb, env, info)
}

// LastError is the status and message of the most recent host call.
type LastError struct {
	Message string
	Status  hostabi.Status
}

type callbackRecord struct {
	this      any
	newTarget any
	args      []any
	data      uint32
}

// Env is one host environment. An Env is not safe for concurrent use: the
// host serializes guest calls, and a guest only re-enters it from inside a
// call it is already running.
type Env struct {
	pending    any
	global     *Object
	dispatcher Dispatcher
	logger     *slog.Logger
	infos      map[hostabi.CallbackInfo]*callbackRecord
	handler    Middleware
	detail     string
	handles    []any
	scopes     []int
	last       LastError
	nextInfo   hostabi.CallbackInfo
	maxString  int
	maxArgs    int
	id         hostabi.Env
	hasPending bool
}

// EnvOption configures an Env.
type EnvOption func(*envConfig)

type envConfig struct {
	dispatcher     Dispatcher
	logger         *slog.Logger
	middleware     []Middleware
	maxStringBytes int
	maxArgs        int
}

func defaultEnvConfig() envConfig {
	return envConfig{
		maxStringBytes: DefaultMaxStringBytes,
		maxArgs:        DefaultMaxArgs,
	}
}

// WithDispatcher sets how guest functions are called.
func WithDispatcher(d Dispatcher) EnvOption {
	return func(c *envConfig) {
		c.dispatcher = d
	}
}

// WithEnvLogger sets the logger. The default is slog.Default().
func WithEnvLogger(logger *slog.Logger) EnvOption {
	return func(c *envConfig) {
		c.logger = logger
	}
}

// WithMiddleware appends middleware to the chain every host call runs
// through. Middleware executes in FIFO order: the first registered is the
// outermost layer.
func WithMiddleware(mw ...Middleware) EnvOption {
	return func(c *envConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithMaxStringBytes limits napi_create_string_utf8.
func WithMaxStringBytes(n int) EnvOption {
	return func(c *envConfig) {
		c.maxStringBytes = n
	}
}

// WithMaxArgs limits napi_call_function.
func WithMaxArgs(n int) EnvOption {
	return func(c *envConfig) {
		c.maxArgs = n
	}
}

// DefaultMiddleware is the chain NewEnv installs ahead of any
// WithMiddleware layers.
func DefaultMiddleware(logger *slog.Logger) []Middleware {
	return []Middleware{
		LastErrorMiddleware(),
		LoggingMiddleware(logger),
		PanicRecoveryMiddleware(),
		ExceptionGuardMiddleware(BypassCalls...),
	}
}

// NewEnv creates an environment identified by id.
func NewEnv(id hostabi.Env, opts ...EnvOption) *Env {
	cfg := defaultEnvConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	global := NewObject()
	global.Set("globalThis", global)

	e := &Env{
		id:         id,
		global:     global,
		dispatcher: cfg.dispatcher,
		logger:     cfg.logger,
		infos:      make(map[hostabi.CallbackInfo]*callbackRecord),
		handles:    []any{nil},
		maxString:  cfg.maxStringBytes,
		maxArgs:    cfg.maxArgs,
	}
	e.handler = chain(append(DefaultMiddleware(cfg.logger), cfg.middleware...))
	return e
}

// ID returns the environment pointer guests see.
func (e *Env) ID() hostabi.Env {
	return e.id
}

// Global returns the global object.
func (e *Env) Global() *Object {
	return e.global
}

// Invoke runs one host ABI call through the middleware chain. name is the
// import symbol, e.g. "napi_create_object".
func (e *Env) Invoke(ctx context.Context, name string, h Handler) hostabi.Status {
	return e.handler(h)(NewHostContext(ctx, name, e), e)
}

// Fail records a detailed message for the call in progress and returns
// status.
func (e *Env) Fail(status hostabi.Status, format string, args ...any) hostabi.Status {
	e.detail = fmt.Sprintf(format, args...)
	return status
}

// Store puts v in the handle table of the innermost scope.
func (e *Env) Store(v any) hostabi.Value {
	e.handles = append(e.handles, Normalize(v))
	return hostabi.Value(len(e.handles) - 1)
}

// Load returns the value behind h. The null handle and handles of closed
// scopes do not load.
func (e *Env) Load(h hostabi.Value) (any, bool) {
	if h == 0 || int(h) >= len(e.handles) {
		return nil, false
	}
	return e.handles[h], true
}

func (e *Env) load(h hostabi.Value) (any, hostabi.Status) {
	v, ok := e.Load(h)
	if !ok {
		return nil, e.Fail(hostabi.StatusInvalidArg, "invalid handle %d", h)
	}
	return v, hostabi.StatusOK
}

// Handles returns the number of live handles.
func (e *Env) Handles() int {
	return len(e.handles) - 1
}

// OpenScope opens a handle scope and returns its id.
func (e *Env) OpenScope() hostabi.HandleScope {
	e.scopes = append(e.scopes, len(e.handles))
	return hostabi.HandleScope(len(e.scopes))
}

// CloseScope closes scope, which must be the innermost one, and drops every
// handle created in it.
func (e *Env) CloseScope(scope hostabi.HandleScope) hostabi.Status {
	if n := len(e.scopes); n == 0 || hostabi.HandleScope(n) != scope {
		return e.Fail(hostabi.StatusHandleScopeMismatch, "scope %d is not the innermost open scope", scope)
	}
	e.unwind(scope)
	return hostabi.StatusOK
}

// unwind closes scope and every scope opened inside it.
func (e *Env) unwind(scope hostabi.HandleScope) {
	i := int(scope) - 1
	if i < 0 || i >= len(e.scopes) {
		return
	}
	e.handles = e.handles[:e.scopes[i]]
	e.scopes = e.scopes[:i]
}

// Scopes returns the number of open handle scopes.
func (e *Env) Scopes() int {
	return len(e.scopes)
}

// IsExceptionPending reports whether an exception is waiting to be thrown.
func (e *Env) IsExceptionPending() bool {
	return e.hasPending
}

// Pending returns the pending exception value.
func (e *Env) Pending() (any, bool) {
	return e.pending, e.hasPending
}

func (e *Env) setPending(v any) {
	e.pending = Normalize(v)
	e.hasPending = true
}

// TakeException clears and returns the pending exception.
func (e *Env) TakeException() (any, bool) {
	if !e.hasPending {
		return nil, false
	}
	v := e.pending
	e.pending, e.hasPending = nil, false
	return v, true
}

// LastError returns the status and message of the most recent call other
// than napi_get_last_error_info.
func (e *Env) LastError() LastError {
	return e.last
}
