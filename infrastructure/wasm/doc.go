// Package wasm binds hostabi.Table to the "napi" wasm import module, for
// napi modules compiled with GOOS=wasip1.
package wasm
