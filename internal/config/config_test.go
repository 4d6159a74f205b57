package config_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/futalk/Tarot-Reading/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DefaultAIEndpoint != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("DefaultAIEndpoint = %q", cfg.DefaultAIEndpoint)
	}
	if cfg.DefaultAIModel != "gpt-3.5-turbo" {
		t.Errorf("DefaultAIModel = %q", cfg.DefaultAIModel)
	}
	if cfg.RateLimitHourly != 10 || cfg.RateLimitDaily != 30 {
		t.Errorf("rate limits = %d/%d", cfg.RateLimitHourly, cfg.RateLimitDaily)
	}
	if cfg.AICacheTTL != time.Hour || cfg.AICacheSize != 100 {
		t.Errorf("cache = %s/%d", cfg.AICacheTTL, cfg.AICacheSize)
	}
	if cfg.LLMTimeout != 45*time.Second {
		t.Errorf("LLMTimeout = %s", cfg.LLMTimeout)
	}
	if cfg.LLMTemperature != 0.8 || cfg.LLMMaxTokens != 2000 || cfg.LLMTopP != 0.9 {
		t.Errorf("sampling = %v/%d/%v", cfg.LLMTemperature, cfg.LLMMaxTokens, cfg.LLMTopP)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.Development() {
		t.Error("expected production by default")
	}
	if cfg.TracingEnabled() {
		t.Error("tracing must be off without an endpoint")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DEFAULT_AI_KEY", "sk-operator")
	t.Setenv("RATE_LIMIT_HOURLY", "2")
	t.Setenv("AI_CACHE_TTL", "5m")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("APP_ENV", "development")
	t.Setenv("OTEL_EXPORTER_ENDPOINT", "http://localhost:4318")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultAIKey != "sk-operator" {
		t.Errorf("DefaultAIKey = %q", cfg.DefaultAIKey)
	}
	if cfg.RateLimitHourly != 2 {
		t.Errorf("RateLimitHourly = %d", cfg.RateLimitHourly)
	}
	if cfg.AICacheTTL != 5*time.Minute {
		t.Errorf("AICacheTTL = %s", cfg.AICacheTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if !cfg.Development() {
		t.Error("expected development")
	}
	if !cfg.TracingEnabled() {
		t.Error("expected tracing enabled")
	}

	t.Setenv("OTEL_ENABLED", "false")
	cfg, err = config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TracingEnabled() {
		t.Error("OTEL_ENABLED=false must disable tracing")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"RATE_LIMIT_HOURLY", "not-an-int", "parse env"},
		{"RATE_LIMIT_DAILY", "0", "RATE_LIMIT_DAILY"},
		{"AI_CACHE_SIZE", "0", "AI_CACHE_SIZE"},
		{"LLM_TIMEOUT", "-1s", "LLM_TIMEOUT"},
		{"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"LOG_FORMAT", "xml", "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %v", tt.want, err)
			}
		})
	}
}
