// Package napi binds Go functions to an N-API style host.
//
// Every host operation goes through an Env, the copyable capability handle
// for one host environment. Host values are referenced through Value
// handles. A Value does not own anything; it is valid only while the handle
// scope that produced it is open, and the package checks that before any
// host call is made with it.
//
// Native functions have a single shape, Callback. They are registered with
// CreateFunction, which stores only a lookup key in the host's data slot.
// The host later calls back into Module.Dispatch, the trampoline, which
// rebuilds a CallbackInfo for the call and runs the registered Callback.
//
// Errors come in two kinds. Host status failures and application failures
// are returned as errors (*Error, *Exception). A failure of a primitive the
// binding itself depends on, such as fetching the last error record or a
// host that changes the argument count between two queries, panics with
// *InvariantError.
package napi
