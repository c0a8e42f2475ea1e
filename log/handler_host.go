//go:build !wasip1

package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Output receives the wire JSON of every record in non-wasm builds.
var Output io.Writer = os.Stderr

// Handle writes the wire form of the record to Output. Native builds have
// no host to forward to.
func (h *WasmLogHandler) Handle(_ context.Context, record slog.Record) error {
	data, err := json.Marshal(h.wire(record))
	if err != nil {
		return fmt.Errorf("marshal log message: %w", err)
	}
	_, err = fmt.Fprintf(Output, "%s\n", data)
	return err
}
