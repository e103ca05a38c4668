// Package config loads service configuration from defaults, an optional
// YAML file, a .env file and PSES_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/pses/internal/model"
	"github.com/abhisek/pses/internal/synth"
)

// Config holds all service configuration.
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// ModelConfig controls where the classifier lives and how it is
// bootstrapped on cold start.
type ModelConfig struct {
	// Path is the persisted model artifact. Default: "data/model.json".
	Path string `yaml:"path"`

	Synth SynthConfig      `yaml:"synthetic"`
	Fit   model.FitOptions `yaml:"fit"`
}

// SynthConfig configures the synthetic bootstrap dataset.
type SynthConfig struct {
	Samples    int              `yaml:"samples"` // Default: 4000
	Seed       uint64           `yaml:"seed"`    // Default: 7
	Thresholds synth.Thresholds `yaml:"thresholds"`
}

// Options converts the configuration into generator options.
func (c SynthConfig) Options() synth.Options {
	return synth.Options{Samples: c.Samples, Seed: c.Seed, Thresholds: c.Thresholds}
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`          // Default: ":8000"
	AllowOrigins []string `yaml:"allow_origins"` // Default: ["*"]

	// RateLimit is the sustained requests per second accepted on scoring
	// routes. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// StoreConfig holds prediction history settings.
type StoreConfig struct {
	// Enabled turns on prediction history. Default: true.
	Enabled bool `yaml:"enabled"`

	// Path overrides the database location. Empty means store.DefaultDBPath.
	Path string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error. Default: info
	Format string `yaml:"format"` // json or console. Default: json
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	so := synth.DefaultOptions()
	return Config{
		Model: ModelConfig{
			Path: "data/model.json",
			Synth: SynthConfig{
				Samples:    so.Samples,
				Seed:       so.Seed,
				Thresholds: so.Thresholds,
			},
			Fit: model.DefaultFitOptions(),
		},
		Server: ServerConfig{
			Addr:         ":8000",
			AllowOrigins: []string{"*"},
			RateBurst:    20,
		},
		Store: StoreConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then .env, then environment variables.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// A missing .env file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays PSES_* environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if p := os.Getenv("PSES_MODEL_PATH"); p != "" {
		cfg.Model.Path = p
	}
	if v := os.Getenv("PSES_SYNTH_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PSES_SYNTH_SAMPLES: %w", err)
		}
		cfg.Model.Synth.Samples = n
	}
	if v := os.Getenv("PSES_SYNTH_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PSES_SYNTH_SEED: %w", err)
		}
		cfg.Model.Synth.Seed = n
	}
	if v := os.Getenv("PSES_FIT_MAX_ITER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PSES_FIT_MAX_ITER: %w", err)
		}
		cfg.Model.Fit.MaxIterations = n
	}

	if a := os.Getenv("PSES_ADDR"); a != "" {
		cfg.Server.Addr = a
	}
	if o := os.Getenv("PSES_CORS_ORIGINS"); o != "" {
		cfg.Server.AllowOrigins = splitList(o)
	}
	if v := os.Getenv("PSES_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PSES_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = f
	}
	if v := os.Getenv("PSES_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PSES_RATE_BURST: %w", err)
		}
		cfg.Server.RateBurst = n
	}

	if p := os.Getenv("PSES_DB"); p != "" {
		cfg.Store.Path = p
	}
	if v := os.Getenv("PSES_HISTORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PSES_HISTORY: %w", err)
		}
		cfg.Store.Enabled = b
	}

	if l := os.Getenv("PSES_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}
	if f := os.Getenv("PSES_LOG_FORMAT"); f != "" {
		cfg.Log.Format = f
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Model.Path == "" {
		return fmt.Errorf("model path is required")
	}
	if c.Model.Synth.Samples <= 0 {
		return fmt.Errorf("synthetic sample count must be positive, got %d", c.Model.Synth.Samples)
	}
	if err := c.Model.Synth.Thresholds.Validate(); err != nil {
		return fmt.Errorf("synthetic thresholds: %w", err)
	}
	if c.Model.Fit.MaxIterations <= 0 {
		return fmt.Errorf("fit max_iterations must be positive, got %d", c.Model.Fit.MaxIterations)
	}
	if c.Model.Fit.C <= 0 {
		return fmt.Errorf("fit c must be positive, got %v", c.Model.Fit.C)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive when rate_limit is set, got %d", c.Server.RateBurst)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format: %q", c.Log.Format)
	}
	return nil
}
