// Command napi-host loads a napi module compiled to wasm and calls its
// exports.
//
// Usage:
//
//	napi-host [flags] module.wasm                   # list exports
//	napi-host [flags] module.wasm readFile          # call an export
//	napi-host [flags] module.wasm add 1 2           # arguments are JSON
//	napi-host schema                                # config JSON schema
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/reglet-dev/reglet-napi/host"
	"github.com/reglet-dev/reglet-napi/hostfuncs"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("napi-host", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "YAML config file")
	sandbox := flags.String("sandbox", "", "host directory mounted read-only at /sandbox")
	logLevel := flags.String("log-level", "", "debug, info, warn or error (overrides the config)")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 1 && flags.Arg(0) == "schema" {
		return printSchema(stdout, stderr)
	}
	if flags.NArg() < 1 {
		fmt.Fprintln(stderr, "usage: napi-host [flags] module.wasm [export [json-args...]]")
		return 2
	}

	cfg, err := loadConfig(*configPath, *sandbox, *logLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := newLogger(stderr, cfg.Level())
	slog.SetDefault(logger)

	wasm, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		logger.Error("failed to read module", "path", flags.Arg(0), "error", err)
		return 1
	}

	executor, err := host.NewExecutor(ctx,
		host.WithConfig(cfg),
		host.WithLogger(logger),
		host.WithOutput(stdout, stderr),
	)
	if err != nil {
		logger.Error("failed to create executor", "error", err)
		return 1
	}
	defer executor.Close(ctx)

	addon, err := executor.Load(ctx, wasm)
	if err != nil {
		logger.Error("failed to load module", "error", err)
		return 1
	}

	if flags.NArg() == 1 {
		obj, _ := addon.Exports().(*hostfuncs.Object)
		for _, name := range addon.Names() {
			fmt.Fprintf(stdout, "%s: %s\n", name, hostfuncs.TypeOf(obj.Get(name)))
		}
		return 0
	}

	callArgs := make([]any, 0, flags.NArg()-2)
	for _, raw := range flags.Args()[2:] {
		callArgs = append(callArgs, parseArg(raw))
	}
	result, err := addon.Call(ctx, flags.Arg(1), callArgs...)
	var exc *hostfuncs.Exception
	switch {
	case errors.As(err, &exc):
		fmt.Fprintf(stdout, "Uncaught %s\n", hostfuncs.Describe(exc.Value))
		return 1
	case err != nil:
		logger.Error("call failed", "export", flags.Arg(1), "error", err)
		return 1
	}
	fmt.Fprintf(stdout, "%s(): %s\n", flags.Arg(1), hostfuncs.Describe(result))
	return 0
}

func loadConfig(path, sandbox, level string) (host.Config, error) {
	cfg := host.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = host.LoadConfig(path); err != nil {
			return host.Config{}, err
		}
	}
	if sandbox != "" {
		abs, err := filepath.Abs(sandbox)
		if err != nil {
			return host.Config{}, fmt.Errorf("failed to resolve sandbox: %w", err)
		}
		cfg.Preopens = append(cfg.Preopens, host.Preopen{Host: abs, Guest: "/sandbox", ReadOnly: true})
	}
	if level != "" {
		cfg.LogLevel = level
	}
	return cfg, cfg.Validate()
}

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// parseArg decodes a JSON argument; anything that is not JSON is a string.
func parseArg(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func printSchema(stdout, stderr io.Writer) int {
	schema, err := host.ConfigSchema()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, string(schema))
	return 0
}
