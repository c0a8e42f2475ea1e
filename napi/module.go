package napi

import (
	"log/slog"
	"sync"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// InitFunc populates the exports object when the host loads the module.
// A returned error is thrown into the host.
type InitFunc func(env Env, exports Value) error

// Module is one native module: the host table it talks through, its
// initialization function and the callbacks registered while it runs.
type Module struct {
	table    hostabi.Table
	init     InitFunc
	logger   *slog.Logger
	registry *registry
	scopes   *scopeStack
	name     string

	mu         sync.Mutex
	registered bool
}

// Option configures a Module.
type Option func(*moduleConfig)

type moduleConfig struct {
	logger *slog.Logger
	name   string
}

func defaultModuleConfig() moduleConfig {
	return moduleConfig{
		name: "napi",
	}
}

// WithName sets the module name used in log records.
func WithName(name string) Option {
	return func(c *moduleConfig) {
		c.name = name
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *moduleConfig) {
		c.logger = logger
	}
}

// NewModule creates a module bound to table. init runs once, from
// RegisterExports.
func NewModule(table hostabi.Table, init InitFunc, opts ...Option) *Module {
	cfg := defaultModuleConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Module{
		table:    table,
		init:     init,
		logger:   cfg.logger.With("module", cfg.name),
		registry: &registry{},
		scopes:   &scopeStack{},
		name:     cfg.name,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Env wraps a raw host environment pointer.
func (m *Module) Env(raw hostabi.Env) Env {
	return Env{m: m, raw: raw}
}

// Callbacks returns the names of every registered callback.
func (m *Module) Callbacks() []string {
	return m.registry.names()
}

// RegisterExports is the module entry point. The host calls it once when it
// loads the module, with the exports object it created; the same handle is
// handed back. Later calls are logged and ignored.
func (m *Module) RegisterExports(rawEnv hostabi.Env, exports hostabi.Value) hostabi.Value {
	m.mu.Lock()
	if m.registered {
		m.mu.Unlock()
		m.logger.Warn("napi: module already registered, ignoring second call")
		return exports
	}
	m.registered = true
	m.mu.Unlock()

	if m.init == nil {
		return exports
	}

	env := m.Env(rawEnv)
	token := m.scopes.push()
	defer m.closeScope(token)

	if err := m.init(env, Value{raw: exports, scope: token}); err != nil {
		m.logger.Error("napi: module initialization failed", "error", err)
		m.raise(env, "init", err)
		return exports
	}
	m.logger.Info("napi: module registered", "callbacks", m.registry.len())
	return exports
}

func (m *Module) closeScope(token uint64) {
	if leaked := m.scopes.unwind(token); leaked > 0 {
		m.logger.Warn("napi: handle scopes left open", "count", leaked)
	}
}
