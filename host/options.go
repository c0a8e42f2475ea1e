package host

import (
	"io"
	"log/slog"

	"github.com/reglet-dev/reglet-napi/hostfuncs"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithConfig sets the addon configuration.
func WithConfig(cfg Config) Option {
	return func(e *Executor) {
		e.config = cfg
	}
}

// WithLogger sets the logger for host calls and replayed guest records.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithOutput sets the guest's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// WithEnvOptions passes options to every environment the executor creates,
// after the ones derived from the config.
func WithEnvOptions(opts ...hostfuncs.EnvOption) Option {
	return func(e *Executor) {
		e.envOpts = append(e.envOpts, opts...)
	}
}
