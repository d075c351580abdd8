package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config is the server configuration, read from the environment
type Config struct {
	Port     int    `env:"PORT"      envDefault:"9876"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	RoundDuration    time.Duration `env:"TYPERACE_ROUND_DURATION"    envDefault:"60s"`
	ParagraphTimeout time.Duration `env:"TYPERACE_PARAGRAPH_TIMEOUT" envDefault:"20s"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	PoolSize       int    `env:"TYPERACE_POOL_SIZE"         envDefault:"5"`
	CorpusPath     string `env:"TYPERACE_CORPUS_PATH"       envDefault:"data/paragraphs.txt"`
	AnthropicKey   string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel string `env:"TYPERACE_ANTHROPIC_MODEL"`

	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS"              envDefault:"*" envSeparator:","`
	MaxMessageSize    int64         `env:"TYPERACE_MAX_MESSAGE_SIZE"    envDefault:"4096"`
	RateLimitBurst    int           `env:"TYPERACE_RATE_LIMIT_BURST"    envDefault:"20"`
	RateLimitInterval time.Duration `env:"TYPERACE_RATE_LIMIT_INTERVAL" envDefault:"1s"`
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom reads the configuration from the given variables only
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for impossible values
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.RoundDuration <= 0 {
		errs = append(errs, errors.New("TYPERACE_ROUND_DURATION must be positive"))
	}
	if c.ParagraphTimeout <= 0 {
		errs = append(errs, errors.New("TYPERACE_PARAGRAPH_TIMEOUT must be positive"))
	}

	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageTypeMemory, StorageTypeRedis, c.StorageType))
	}

	if c.PoolSize < 0 {
		errs = append(errs, errors.New("TYPERACE_POOL_SIZE must not be negative"))
	}
	if c.MaxMessageSize <= 0 {
		errs = append(errs, errors.New("TYPERACE_MAX_MESSAGE_SIZE must be positive"))
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("TYPERACE_RATE_LIMIT_BURST must be positive"))
	}
	if c.RateLimitInterval <= 0 {
		errs = append(errs, errors.New("TYPERACE_RATE_LIMIT_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address for the configured port
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Level returns the configured log level
func (c Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel converts a level name into a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", name)
	}
}
