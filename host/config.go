package host

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/reglet-napi/hostfuncs"
)

var validate = validator.New()

// Config describes how an addon is run.
type Config struct {
	ModuleName     string    `yaml:"module_name" json:"module_name" validate:"required,max=64" jsonschema:"description=Name the guest module is instantiated under"`
	LogLevel       string    `yaml:"log_level" json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Preopens       []Preopen `yaml:"preopens" json:"preopens,omitempty" validate:"dive" jsonschema:"description=Host directories visible to the guest through WASI"`
	MaxStringBytes int       `yaml:"max_string_bytes" json:"max_string_bytes,omitempty" validate:"gte=0" jsonschema:"description=Largest string a guest may create; 0 means the default of 1MB"`
	MaxArgs        int       `yaml:"max_args" json:"max_args,omitempty" validate:"gte=0,lte=65536" jsonschema:"description=Largest argument count of a single call; 0 means the default of 1024"`
}

// Preopen mounts a host directory into the guest filesystem.
type Preopen struct {
	Host     string `yaml:"host" json:"host" validate:"required"`
	Guest    string `yaml:"guest" json:"guest" validate:"required,startswith=/"`
	ReadOnly bool   `yaml:"read_only" json:"read_only,omitempty"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		ModuleName:     "addon",
		LogLevel:       "info",
		MaxStringBytes: hostfuncs.DefaultMaxStringBytes,
		MaxArgs:        hostfuncs.DefaultMaxArgs,
	}
}

// Validate checks the struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Level returns the configured log level, Info if unset.
func (c Config) Level() slog.Level {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c Config) envOptions() []hostfuncs.EnvOption {
	var opts []hostfuncs.EnvOption
	if c.MaxStringBytes > 0 {
		opts = append(opts, hostfuncs.WithMaxStringBytes(c.MaxStringBytes))
	}
	if c.MaxArgs > 0 {
		opts = append(opts, hostfuncs.WithMaxArgs(c.MaxArgs))
	}
	return opts
}

func (c Config) maxArgs() int {
	if c.MaxArgs > 0 {
		return c.MaxArgs
	}
	return hostfuncs.DefaultMaxArgs
}

// ParseConfig reads YAML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ConfigSchema returns the JSON schema of Config.
func ConfigSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Config{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
