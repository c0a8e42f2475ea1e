// Package host runs napi modules compiled to wasm.
//
// It instantiates a guest with wazero, provides the "napi" import module
// backed by a hostfuncs.Env, runs the guest's napi_register_module_v1 entry
// point and lets Go code call the functions it exported. Calls back into the
// guest go through its napi_callback_dispatch export.
package host
