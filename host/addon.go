package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-napi/hostabi"
	"github.com/reglet-dev/reglet-napi/hostfuncs"
)

type addonKey struct{}

func withAddon(ctx context.Context, a *Addon) context.Context {
	return context.WithValue(ctx, addonKey{}, a)
}

func addonFrom(ctx context.Context) *Addon {
	a, _ := ctx.Value(addonKey{}).(*Addon)
	return a
}

// Addon is one loaded guest module and its environment. Calls are
// serialized.
type Addon struct {
	mu       sync.Mutex
	compiled wazero.CompiledModule
	module   api.Module
	env      *hostfuncs.Env
	logger   *slog.Logger
	exports  any
	trapped  error
	maxArgs  int

	// extended error record last placed in guest memory
	errRecord     uint32
	errRecordSize uint32
}

// Env returns the addon's environment.
func (a *Addon) Env() *hostfuncs.Env {
	return a.env
}

// Exports returns what the module's registration returned.
func (a *Addon) Exports() any {
	return a.exports
}

// Names lists the exported property names, in definition order.
func (a *Addon) Names() []string {
	if obj, ok := a.exports.(*hostfuncs.Object); ok {
		return obj.Keys()
	}
	return nil
}

// Call calls the exported function name with the exports object as the
// receiver. A value the function throws is returned as *hostfuncs.Exception;
// a guest trap as *hostfuncs.TrapError, after which the addon refuses
// further calls.
func (a *Addon) Call(ctx context.Context, name string, args ...any) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.trapped != nil {
		return nil, fmt.Errorf("addon is unusable after a trap: %w", a.trapped)
	}
	obj, ok := a.exports.(*hostfuncs.Object)
	if !ok || !obj.Has(name) {
		return nil, fmt.Errorf("export %q not found", name)
	}

	result, err := a.env.Call(withAddon(ctx, a), obj.Get(name), obj, args...)
	var trap *hostfuncs.TrapError
	if errors.As(err, &trap) {
		a.trapped = trap
	}
	return result, err
}

// Close releases the guest instance.
func (a *Addon) Close(ctx context.Context) error {
	var errs []error
	if a.module != nil {
		errs = append(errs, a.module.Close(ctx))
	}
	if a.compiled != nil {
		errs = append(errs, a.compiled.Close(ctx))
	}
	return errors.Join(errs...)
}

// Dispatch implements hostfuncs.Dispatcher by calling the guest's
// trampoline export. The callback pointer is meaningless across the wasm
// boundary and is ignored.
func (a *Addon) Dispatch(ctx context.Context, _ hostabi.Callback, env hostabi.Env, info hostabi.CallbackInfo) (hostabi.Value, error) {
	fn, err := exportedFunction(a.module, exportDispatch)
	if err != nil {
		return 0, err
	}
	results, err := fn.Call(ctx, api.EncodeU32(uint32(env)), api.EncodeU32(uint32(info)))
	if err != nil {
		return 0, err
	}
	return hostabi.Value(api.DecodeU32(results[0])), nil
}

func (a *Addon) register(ctx context.Context) error {
	fn, err := exportedFunction(a.module, exportRegister)
	if err != nil {
		return err
	}
	exports, err := a.env.LoadModule(ctx, func(ctx context.Context, env hostabi.Env, exports hostabi.Value) (hostabi.Value, error) {
		results, err := fn.Call(ctx, api.EncodeU32(uint32(env)), api.EncodeU32(uint32(exports)))
		if err != nil {
			return 0, err
		}
		return hostabi.Value(api.DecodeU32(results[0])), nil
	})
	if err != nil {
		return fmt.Errorf("failed to register module: %w", err)
	}
	a.exports = exports
	return nil
}

// writeErrorRecord places the extended error record for last in guest
// memory and returns its address. The previous record is freed first.
func (a *Addon) writeErrorRecord(ctx context.Context, mod api.Module, last hostfuncs.LastError) (uint32, error) {
	if a.errRecord != 0 {
		if free := mod.ExportedFunction(exportDeallocate); free != nil {
			if _, err := free.Call(ctx, api.EncodeU32(a.errRecord), api.EncodeU32(a.errRecordSize)); err != nil {
				return 0, err
			}
		}
		a.errRecord, a.errRecordSize = 0, 0
	}

	alloc, err := exportedFunction(mod, exportAllocate)
	if err != nil {
		return 0, err
	}
	size := uint32(hostabi.ErrorInfoSize + len(last.Message) + 1)
	results, err := alloc.Call(ctx, api.EncodeU32(size))
	if err != nil {
		return 0, err
	}
	ptr := api.DecodeU32(results[0])
	if ptr == 0 {
		return 0, errors.New("guest allocate returned null")
	}

	msgPtr := uint32(0)
	if last.Message != "" {
		msgPtr = ptr + hostabi.ErrorInfoSize
	}
	record := make([]byte, size)
	binary.LittleEndian.PutUint32(record[0:], msgPtr)
	binary.LittleEndian.PutUint32(record[8:], 0)
	binary.LittleEndian.PutUint32(record[12:], uint32(last.Status))
	copy(record[hostabi.ErrorInfoSize:], last.Message)
	if !mod.Memory().Write(ptr, record) {
		return 0, fmt.Errorf("error record at %d is out of range", ptr)
	}
	a.errRecord, a.errRecordSize = ptr, size
	return ptr, nil
}
