package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/screa/vanity-sampler/internal/crypto"
	"github.com/screa/vanity-sampler/pkg/types"
)

// Errors
var (
	ErrEmptySuffix = errors.New("desired suffix must not be empty")
)

// Config holds the application configuration
type Config struct {
	Workers       int    `koanf:"workers" validate:"gte=1"`
	Scheme        string `koanf:"scheme" validate:"required,scheme"`
	ProgressEvery uint64 `koanf:"progress_every"`
	Verbose       bool   `koanf:"verbose"`
	LogInterval   int    `koanf:"log_interval" validate:"gte=1"` // rate logging interval in seconds
	LogLevel      string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
	Env           string `koanf:"env" validate:"required,oneof=dev prod"`
	HistoryDB     string `koanf:"history_db"`

	// positional arguments, never read from the environment
	Suffix     string `koanf:"-"`
	SampleSize uint64 `koanf:"-"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Workers:       runtime.NumCPU(),
		Scheme:        crypto.SchemeEthereum,
		ProgressEvery: 100_000,
		LogInterval:   5,
		LogLevel:      "info",
		Env:           "dev",
	}
}

// envLoader loads VANITY_* variables, lowercased with the prefix stripped.
// Overridable in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "VANITY_",
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, "VANITY_")), strings.TrimSpace(value)
		},
	}), nil)
}

// Load returns the defaults overridden by VANITY_* environment variables.
// Positional arguments are filled in by the caller before Validate.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(NewConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return cfg, nil
}

func validScheme(fl validator.FieldLevel) bool {
	_, err := crypto.NewGenerator(fl.Field().String())
	return err == nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Suffix == "" {
		return ErrEmptySuffix
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("scheme", validScheme); err != nil {
		return fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// GetTargetDescription returns a human-readable description of the target
func (c *Config) GetTargetDescription() string {
	return fmt.Sprintf("suffix %q, %d matches, %s addresses", c.Suffix, c.SampleSize, c.Scheme)
}

// SearchConfig returns the immutable search input of the run
func (c *Config) SearchConfig() types.SearchConfig {
	return types.SearchConfig{Suffix: c.Suffix, SampleSize: c.SampleSize}
}
