// Package config loads the command line configuration in layers: built-in
// defaults, then an optional YAML file, then SANDBOX_ environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/arena"
	"github.com/wippyai/wasm-sandbox/engine"
	"github.com/wippyai/wasm-sandbox/errors"
)

const (
	// DefaultPath is read when no configuration file is named and it exists.
	DefaultPath = "sandbox.yaml"

	// EnvPrefix is the prefix for environment variables. The first
	// underscore after it separates section from key:
	// SANDBOX_ENGINE_MAX_PAGES sets engine.max_pages.
	EnvPrefix = "SANDBOX_"
)

// Config holds all configuration for the sandbox CLI.
type Config struct {
	Engine EngineConfig `koanf:"engine"`
	Log    LogConfig    `koanf:"log"`
	Stats  StatsConfig  `koanf:"stats"`
}

// EngineConfig holds engine options.
type EngineConfig struct {
	// Arena floor and ceiling in 64 KiB pages
	MinPages uint32 `koanf:"min_pages" validate:"ltefield=MaxPages"`
	MaxPages uint32 `koanf:"max_pages" validate:"min=1,max=65536"`

	// Use wazero's compiler instead of the interpreter
	Compiler bool `koanf:"compiler"`

	// Per-call time limit; zero means none. A limit stops running guests.
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`

	// Entry function called when a command does not name one
	Entry string `koanf:"entry" validate:"required"`
}

// StatsConfig holds options for the fixture runner.
type StatsConfig struct {
	// Cases run at the same time
	Concurrency int `koanf:"concurrency" validate:"min=1,max=256"`
}

// Default returns the configuration used before any file or variable is
// applied.
func Default() *Config {
	limits := arena.DefaultLimits()
	return &Config{
		Engine: EngineConfig{
			MinPages: limits.MinPages,
			MaxPages: limits.MaxPages,
			Entry:    abi.DefaultEntry,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Stats: StatsConfig{
			Concurrency: 4,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(newStructProvider(Default()), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps SANDBOX_ENGINE_MAX_PAGES to engine.max_pages.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid configuration")
	}
	return nil
}

// Limits returns the arena limits.
func (e EngineConfig) Limits() arena.Limits {
	return arena.Limits{MinPages: e.MinPages, MaxPages: e.MaxPages}
}

// ToEngine converts the options into an engine configuration.
func (e EngineConfig) ToEngine(log *zap.Logger) engine.Config {
	return engine.Config{
		Logger:             log,
		Limits:             e.Limits(),
		Compiler:           e.Compiler,
		CloseOnContextDone: e.Timeout > 0,
	}
}

// structProvider loads configuration from a struct
type structProvider struct {
	cfg any
}

func newStructProvider(cfg any) *structProvider {
	return &structProvider{cfg: cfg}
}

// Read converts the struct to a nested map keyed by koanf tags
func (s *structProvider) Read() (map[string]any, error) {
	var out map[string]any
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "koanf",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(s.cfg); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadBytes is not supported for struct providers
func (s *structProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not supported for struct provider")
}
