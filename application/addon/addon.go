// Package addon holds the process-wide napi module of a wasip1 addon and
// the exports the host enters it through.
package addon

import (
	"log/slog"
	"sync"

	"github.com/reglet-dev/reglet-napi/hostabi"
	"github.com/reglet-dev/reglet-napi/infrastructure/wasm"
	"github.com/reglet-dev/reglet-napi/napi"
)

var (
	mu      sync.Mutex
	current *napi.Module

	newTable = wasm.NewTable
)

// Register creates the addon's module. Addon authors call it from init():
// a reactor's _initialize runs package initializers but never main.
//
// Only the first call registers; later calls are logged and return the
// module already registered.
func Register(init napi.InitFunc, opts ...napi.Option) *napi.Module {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		slog.Warn("addon: module already registered, ignoring second call", "module", current.Name())
		return current
	}
	current = napi.NewModule(newTable(), init, opts...)
	slog.Info("addon: module registered", "module", current.Name())
	return current
}

// Module returns the registered module, or nil.
func Module() *napi.Module {
	mu.Lock()
	defer mu.Unlock()
	return current
}

func registerExports(env, exports uint32) uint32 {
	m := Module()
	if m == nil {
		slog.Error("addon: host loaded the module but nothing was registered")
		return exports
	}
	return uint32(m.RegisterExports(hostabi.Env(env), hostabi.Value(exports)))
}

func dispatch(env, info uint32) uint32 {
	m := Module()
	if m == nil {
		panic("addon: callback dispatched before a module was registered")
	}
	return uint32(m.Dispatch(hostabi.Env(env), hostabi.CallbackInfo(info)))
}
