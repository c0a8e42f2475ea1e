// Package hostfuncs is a pure Go implementation of the host side of the
// napi ABI: the handle table, handle scopes, the pending exception, the
// last error record and a small value model (undefined, null, booleans,
// numbers, strings, objects and functions).
//
// It has NO wasm runtime dependency. The host package adapts it to wazero
// guests and the napitest package to in-process native modules.
package hostfuncs
