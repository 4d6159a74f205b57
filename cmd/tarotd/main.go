package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/futalk/Tarot-Reading/internal/adapters/cache/memcache"
	"github.com/futalk/Tarot-Reading/internal/adapters/cache/rediscache"
	"github.com/futalk/Tarot-Reading/internal/adapters/decks"
	"github.com/futalk/Tarot-Reading/internal/adapters/history/sqlstore"
	httpadapter "github.com/futalk/Tarot-Reading/internal/adapters/http"
	"github.com/futalk/Tarot-Reading/internal/adapters/llm/openai"
	"github.com/futalk/Tarot-Reading/internal/adapters/quota/memquota"
	"github.com/futalk/Tarot-Reading/internal/adapters/quota/redisquota"
	"github.com/futalk/Tarot-Reading/internal/adapters/spreads"
	"github.com/futalk/Tarot-Reading/internal/app"
	"github.com/futalk/Tarot-Reading/internal/config"
	"github.com/futalk/Tarot-Reading/internal/domain"
	"github.com/futalk/Tarot-Reading/internal/platform/logging"
	"github.com/futalk/Tarot-Reading/internal/platform/otel"
	"github.com/futalk/Tarot-Reading/internal/ports"
)

const serviceName = "tarotd"

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logCloser.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.OTelEndpoint, cfg.TracingEnabled())
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown", "error", err)
		}
	}()

	var extra []domain.Spread
	if cfg.SpreadsFile != "" {
		extra, err = spreads.LoadFile(cfg.SpreadsFile)
		if err != nil {
			return err
		}
		logger.Info("loaded extra spreads", "file", cfg.SpreadsFile, "count", len(extra))
	}
	catalog := domain.NewSpreadCatalog(extra...)

	db, err := sqlstore.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	history, err := sqlstore.New(db, cfg.HistoryKeep)
	if err != nil {
		return err
	}

	var (
		cache ports.ResultCache
		quota ports.QuotaStore
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		cache = rediscache.New(rdb, cfg.AICacheSize, cfg.AICacheTTL)
		quota = redisquota.New(rdb)
		logger.Info("using redis for cache and rate limits", "addr", opts.Addr)
	} else {
		cache = memcache.New(cfg.AICacheSize, cfg.AICacheTTL)
		quota = memquota.New()
	}

	llmClient := openai.NewClient(
		// The per-call deadline comes from Options.Timeout.
		&http.Client{},
		openai.Options{
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			TopP:        cfg.LLMTopP,
			Timeout:     cfg.LLMTimeout,
		},
		logger,
	)

	if cfg.DefaultAIKey == "" {
		logger.Warn("DEFAULT_AI_KEY is not set; callers must bring their own key")
	}
	ai := app.NewAIReadingService(llmClient, cache, quota, catalog, app.AIReadingConfig{
		DefaultEndpoint: cfg.DefaultAIEndpoint,
		DefaultKey:      cfg.DefaultAIKey,
		DefaultModel:    cfg.DefaultAIModel,
		Policy:          domain.QuotaPolicy{Hourly: cfg.RateLimitHourly, Daily: cfg.RateLimitDaily},
		PruneInterval:   cfg.RateLimitPruneInterval,
	}, logger)

	tarot := app.NewTarotService(
		decks.NewEmbeddedStore(),
		decks.DefaultDeckID,
		catalog,
		history,
		history,
		stdRNG{},
		logger,
	)

	e := httpadapter.NewServer(httpadapter.NewHandler(tarot, ai, logger, cfg.Development()))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
