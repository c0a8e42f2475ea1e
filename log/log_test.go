package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLogAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantType string
		wantVal  string
	}{
		{
			name:     "string",
			attr:     slog.String("key", "value"),
			wantType: "string",
			wantVal:  "value",
		},
		{
			name:     "int64",
			attr:     slog.Int64("key", 123),
			wantType: "int64",
			wantVal:  "123",
		},
		{
			name:     "bool",
			attr:     slog.Bool("key", true),
			wantType: "bool",
			wantVal:  "true",
		},
		{
			name:     "time",
			attr:     slog.Time("key", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantType: "time",
			wantVal:  "2024-01-01T00:00:00Z",
		},
		{
			name:     "duration",
			attr:     slog.Duration("key", 1*time.Hour),
			wantType: "duration",
			wantVal:  "1h0m0s",
		},
		{
			name:     "error",
			attr:     slog.Any("key", errors.New("test error")),
			wantType: "error",
			wantVal:  "test error",
		},
		{
			name:     "nil",
			attr:     slog.Any("key", nil),
			wantType: "any",
			wantVal:  "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toLogAttrWire(tt.attr)
			assert.Equal(t, tt.attr.Key, wire.Key)
			assert.Equal(t, tt.wantType, wire.Type)
			assert.Equal(t, tt.wantVal, wire.Value)
		})
	}
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler()
	assert.True(t, h.Enabled(context.TODO(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.TODO(), slog.LevelDebug))

	h = NewHandler(WithLevel(slog.LevelDebug))
	assert.True(t, h.Enabled(context.TODO(), slog.LevelDebug))
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	prev := Output
	Output = &buf
	t.Cleanup(func() { Output = prev })

	logger := slog.New(NewHandler()).With("module", "demo").WithGroup("call")
	logger.Info("callback threw", "name", "readFile")

	var msg LogMessageWire
	require.NoError(t, json.Unmarshal(buf.Bytes(), &msg))
	assert.Equal(t, "INFO", msg.Level)
	assert.Equal(t, "callback threw", msg.Message)
	require.Len(t, msg.Attrs, 2)
	assert.Equal(t, "module", msg.Attrs[0].Key)
	assert.Equal(t, "call.name", msg.Attrs[1].Key)
	assert.Equal(t, "readFile", msg.Attrs[1].Value)
}

func TestReplay(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(LogMessageWire{
		Timestamp: ts,
		Level:     "WARN",
		Message:   "guest says hi",
		Attrs: []LogAttrWire{
			toLogAttrWire(slog.Int("count", 3)),
			toLogAttrWire(slog.Bool("ok", false)),
		},
	})
	require.NoError(t, err)

	require.NoError(t, Replay(context.Background(), logger, data))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "WARN", got["level"])
	assert.Equal(t, "guest says hi", got["msg"])
	assert.Equal(t, float64(3), got["count"])
	assert.Equal(t, false, got["ok"])
	assert.Equal(t, ts.Format(time.RFC3339), got["time"])
}

func TestReplay_FilteredAndMalformed(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelWarn}))

	require.NoError(t, Replay(context.Background(), logger, []byte(`{"level":"DEBUG","message":"noise"}`)))
	assert.Empty(t, out.String())

	assert.Error(t, Replay(context.Background(), logger, []byte("not json")))
}
