//go:build wasip1

package addon

import (
	_ "github.com/reglet-dev/reglet-napi/internal/abi" // allocate/deallocate exports
	_ "github.com/reglet-dev/reglet-napi/log"          // host log handler
)

//go:wasmexport napi_register_module_v1
func napiRegisterModuleV1(env, exports uint32) uint32 {
	return registerExports(env, exports)
}

//go:wasmexport napi_callback_dispatch
func napiCallbackDispatch(env, info uint32) uint32 {
	return dispatch(env, info)
}
