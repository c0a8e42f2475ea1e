package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Schema(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"schema"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), `"module_name"`)
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "usage: napi-host")
}

func TestRun_BadModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wasm")
	require.NoError(t, os.WriteFile(path, []byte("not wasm"), 0o600))
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{path}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "failed to compile module")
}

func TestLoadConfig_Flags(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig("", dir, "debug")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Preopens, 1)
	assert.Equal(t, "/sandbox", cfg.Preopens[0].Guest)
	assert.True(t, cfg.Preopens[0].ReadOnly)

	_, err = loadConfig("", "", "loud")
	assert.Error(t, err)
}

func TestParseArg(t *testing.T) {
	assert.Equal(t, float64(2), parseArg("2"))
	assert.Equal(t, "plain", parseArg("plain"))
	assert.Equal(t, "quoted", parseArg(`"quoted"`))
	assert.Equal(t, map[string]any{"a": true}, parseArg(`{"a": true}`))
}
