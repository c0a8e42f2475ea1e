package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/reglet-dev/reglet-napi/hostabi"
	"github.com/reglet-dev/reglet-napi/hostfuncs"
)

// Guest exports the executor relies on.
const (
	exportInitialize = "_initialize"
	exportRegister   = "napi_register_module_v1"
	exportDispatch   = "napi_callback_dispatch"
	exportAllocate   = "allocate"
	exportDeallocate = "deallocate"
)

// Executor owns a wazero runtime with the napi import modules instantiated.
// Each loaded addon gets its own environment.
type Executor struct {
	runtime wazero.Runtime
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
	envOpts []hostfuncs.EnvOption
	config  Config
	nextEnv atomic.Uint32
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.stdout == nil {
		e.stdout = io.Discard
	}
	if e.stderr == nil {
		e.stderr = io.Discard
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	if err := e.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}
	return e, nil
}

// Close releases the runtime and every addon loaded into it.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Load instantiates a reactor module, runs _initialize and then its module
// registration.
func (e *Executor) Load(ctx context.Context, wasm []byte) (*Addon, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	a := e.newAddon(hostabi.Env(e.nextEnv.Add(1)))
	a.compiled = compiled
	ctx = withAddon(ctx, a)

	mod, err := e.runtime.InstantiateModule(ctx, compiled, e.moduleConfig(a))
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}
	a.module = mod

	if init := mod.ExportedFunction(exportInitialize); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("failed to call %s: %w", exportInitialize, err)
		}
	}

	if err := a.register(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.logger.Info("napi-host: addon loaded", "exports", a.Names())
	return a, nil
}

func (e *Executor) newAddon(id hostabi.Env) *Addon {
	a := &Addon{
		logger:  e.logger.With("addon", e.config.ModuleName, "env", uint32(id)),
		maxArgs: e.config.maxArgs(),
	}
	opts := append([]hostfuncs.EnvOption{
		hostfuncs.WithDispatcher(a),
		hostfuncs.WithEnvLogger(a.logger),
	}, e.config.envOptions()...)
	a.env = hostfuncs.NewEnv(id, append(opts, e.envOpts...)...)
	return a
}

func (e *Executor) moduleConfig(a *Addon) wazero.ModuleConfig {
	fsConfig := wazero.NewFSConfig()
	for _, p := range e.config.Preopens {
		if p.ReadOnly {
			fsConfig = fsConfig.WithReadOnlyDirMount(p.Host, p.Guest)
		} else {
			fsConfig = fsConfig.WithDirMount(p.Host, p.Guest)
		}
	}
	return wazero.NewModuleConfig().
		WithName(fmt.Sprintf("%s-%d", e.config.ModuleName, a.env.ID())).
		WithArgs(e.config.ModuleName).
		WithStartFunctions().
		WithStdout(e.stdout).
		WithStderr(e.stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithFSConfig(fsConfig)
}

// exportedFunction looks up a guest export or fails with a message naming
// it.
func exportedFunction(mod api.Module, name string) (api.Function, error) {
	fn := mod.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("guest does not export %q", name)
	}
	return fn, nil
}
