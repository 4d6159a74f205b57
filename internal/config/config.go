// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	AppEnv   string `env:"APP_ENV"   envDefault:"production"`

	// LogLevel is parsed from RawLogLevel by Load.
	LogLevel slog.Level

	RawLogLevel   string `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT"       envDefault:"json"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB"  envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS"  envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`

	DefaultAIEndpoint string `env:"DEFAULT_AI_ENDPOINT" envDefault:"https://api.openai.com/v1/chat/completions"`
	DefaultAIKey      string `env:"DEFAULT_AI_KEY"`
	DefaultAIModel    string `env:"DEFAULT_AI_MODEL"    envDefault:"gpt-3.5-turbo"`

	RateLimitHourly        int           `env:"RATE_LIMIT_HOURLY"         envDefault:"10"`
	RateLimitDaily         int           `env:"RATE_LIMIT_DAILY"          envDefault:"30"`
	RateLimitPruneInterval time.Duration `env:"RATE_LIMIT_PRUNE_INTERVAL" envDefault:"10m"`

	AICacheTTL  time.Duration `env:"AI_CACHE_TTL"  envDefault:"1h"`
	AICacheSize int           `env:"AI_CACHE_SIZE" envDefault:"100"`

	LLMTimeout     time.Duration `env:"LLM_TIMEOUT"     envDefault:"45s"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.8"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS"  envDefault:"2000"`
	LLMTopP        float64       `env:"LLM_TOP_P"       envDefault:"0.9"`

	RedisURL    string `env:"REDIS_URL"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"tarot.db"`
	SpreadsFile string `env:"SPREADS_FILE"`
	HistoryKeep int    `env:"HISTORY_KEEP" envDefault:"50"`

	OTelEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Development reports whether debug detail may be exposed to clients.
func (c Config) Development() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// TracingEnabled reports whether spans should be exported.
func (c Config) TracingEnabled() bool {
	return c.OTelEnabled && c.OTelEndpoint != ""
}

func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	level, err := parseLogLevel(c.RawLogLevel)
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	var errs []error
	if c.RateLimitHourly < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_HOURLY must be positive, got %d", c.RateLimitHourly))
	}
	if c.RateLimitDaily < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_DAILY must be positive, got %d", c.RateLimitDaily))
	}
	if c.AICacheSize < 1 {
		errs = append(errs, fmt.Errorf("AI_CACHE_SIZE must be at least 1, got %d", c.AICacheSize))
	}
	if c.AICacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("AI_CACHE_TTL must be positive, got %s", c.AICacheTTL))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout))
	}
	if c.RateLimitPruneInterval <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PRUNE_INTERVAL must be positive, got %s", c.RateLimitPruneInterval))
	}
	if c.LLMMaxTokens < 1 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
