// Package log provides structured logging (slog) for napi modules running
// as wasm guests: records are forwarded to the host over the napi_host
// log_message import.
package log

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
)

// WasmLogHandler implements slog.Handler to route logs through a host function.
type WasmLogHandler struct {
	attrs  []slog.Attr
	groups []string
	opts   handlerConfig
}

// HandlerOption configures the WasmLogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level will be filtered on the guest side.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a new WasmLogHandler with the given options.
func NewHandler(opts ...HandlerOption) *WasmLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WasmLogHandler{opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *WasmLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// WithAttrs returns a new WasmLogHandler that includes the given attributes.
func (h *WasmLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newHandler := *h
	newHandler.attrs = append(slices.Clip(h.attrs), h.qualify(attrs)...)
	return &newHandler
}

// WithGroup returns a new WasmLogHandler whose later attributes are
// prefixed with name.
func (h *WasmLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newHandler := *h
	newHandler.groups = append(slices.Clip(h.groups), name)
	return &newHandler
}

// qualify prefixes attribute keys with the open groups, flattening them
// for the wire format.
func (h *WasmLogHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := ""
	for _, g := range h.groups {
		prefix += g + "."
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

// wire builds the wire message for record.
func (h *WasmLogHandler) wire(record slog.Record) LogMessageWire {
	msg := LogMessageWire{
		Level:     record.Level.String(),
		Message:   record.Message,
		Timestamp: record.Time,
	}
	if h.opts.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			msg.Source = src.File + ":" + strconv.Itoa(src.Line)
		}
	}
	for _, attr := range h.attrs {
		msg.Attrs = append(msg.Attrs, toLogAttrWire(attr))
	}
	var own []slog.Attr
	record.Attrs(func(attr slog.Attr) bool {
		own = append(own, attr)
		return true
	})
	for _, attr := range h.qualify(own) {
		msg.Attrs = append(msg.Attrs, toLogAttrWire(attr))
	}
	return msg
}
