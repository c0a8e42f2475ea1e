//go:build wasip1

package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-napi/internal/abi"
)

// host_log_message is provided by the napi host next to the napi import
// module.
//
//go:wasmimport napi_host log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

// Handle serializes a slog.Record and sends it to the host via a host function.
func (h *WasmLogHandler) Handle(_ context.Context, record slog.Record) error {
	requestBytes, err := json.Marshal(h.wire(record))
	if err != nil {
		fmt.Printf("napi: failed to marshal log message for host: %v, original: %s\n", err, record.Message)
		return nil
	}

	packed := abi.PtrFromBytes(requestBytes)
	defer abi.DeallocatePacked(packed)
	host_log_message(packed)
	return nil
}

// init routes the default slog logger to the host.
func init() {
	slog.SetDefault(slog.New(NewHandler()))
}
