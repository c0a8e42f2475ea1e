package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// LogMessageWire is the JSON wire format for a log message from Guest to Host.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Source    string        `json:"source,omitempty"`
}

// LogAttrWire represents a single slog attribute for wire transfer.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "bool", "float64", "time", "error", "any"
	Value string `json:"value"` // String representation of the value
}

// toLogAttrWire converts a slog.Attr to LogAttrWire.
func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{
		Key: attr.Key,
	}
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = attr.Value.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = strconv.FormatBool(attr.Value.Bool())
	case slog.KindFloat64:
		wire.Type = "float64"
		wire.Value = fmt.Sprintf("%f", attr.Value.Float64())
	case slog.KindTime:
		wire.Type = "time"
		wire.Value = attr.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type = "duration"
		wire.Value = attr.Value.Duration().String()
	case slog.KindAny:
		if v := attr.Value.Any(); v != nil {
			if err, isErr := v.(error); isErr {
				wire.Type = "error"
				wire.Value = err.Error()
			} else if data, marshalErr := json.Marshal(v); marshalErr == nil {
				wire.Type = "json"
				wire.Value = string(data)
			} else {
				wire.Type = "any"
				wire.Value = fmt.Sprintf("%v", v)
			}
		} else {
			wire.Type = "any"
			wire.Value = "<nil>"
		}
	case slog.KindGroup:
		wire.Type = "group"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	default:
		wire.Type = "any"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	}
	return wire
}

// attr converts a wire attribute back into a slog.Attr. Values that do not
// parse as their declared type are kept as strings.
func (w LogAttrWire) attr() slog.Attr {
	switch w.Type {
	case "int64":
		if n, err := strconv.ParseInt(w.Value, 10, 64); err == nil {
			return slog.Int64(w.Key, n)
		}
	case "uint64":
		if n, err := strconv.ParseUint(w.Value, 10, 64); err == nil {
			return slog.Uint64(w.Key, n)
		}
	case "bool":
		if b, err := strconv.ParseBool(w.Value); err == nil {
			return slog.Bool(w.Key, b)
		}
	case "float64":
		if f, err := strconv.ParseFloat(w.Value, 64); err == nil {
			return slog.Float64(w.Key, f)
		}
	case "time":
		if t, err := time.Parse(time.RFC3339Nano, w.Value); err == nil {
			return slog.Time(w.Key, t)
		}
	case "duration":
		if d, err := time.ParseDuration(w.Value); err == nil {
			return slog.Duration(w.Key, d)
		}
	case "json":
		return slog.Any(w.Key, json.RawMessage(w.Value))
	}
	return slog.String(w.Key, w.Value)
}

// Replay decodes a wire message sent by a guest and re-emits it through
// logger, keeping the guest's level and timestamp.
func Replay(ctx context.Context, logger *slog.Logger, data []byte) error {
	var msg LogMessageWire
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode guest log message: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(msg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if !logger.Enabled(ctx, level) {
		return nil
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	record := slog.NewRecord(ts, level, msg.Message, 0)
	if msg.Source != "" {
		record.AddAttrs(slog.String("guest_source", msg.Source))
	}
	for _, a := range msg.Attrs {
		record.AddAttrs(a.attr())
	}
	return logger.Handler().Handle(ctx, record)
}
