// Command tarot draws readings from the terminal using the same services as
// the HTTP daemon. Readings are kept in the DATABASE_DSN history.
package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/futalk/Tarot-Reading/internal/adapters/decks"
	"github.com/futalk/Tarot-Reading/internal/adapters/history/sqlstore"
	"github.com/futalk/Tarot-Reading/internal/adapters/spreads"
	"github.com/futalk/Tarot-Reading/internal/app"
	"github.com/futalk/Tarot-Reading/internal/config"
	"github.com/futalk/Tarot-Reading/internal/domain"
	"github.com/futalk/Tarot-Reading/internal/platform/logging"
)

type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	if err := newRootCmd(newService).Execute(); err != nil {
		os.Exit(1)
	}
}

// newService wires the tarot service from the environment. Logs go to
// stderr so command output stays clean.
func newService() (*app.TarotService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(logging.NewHandler(os.Stderr, cfg.LogFormat, cfg.LogLevel))

	var extra []domain.Spread
	if cfg.SpreadsFile != "" {
		if extra, err = spreads.LoadFile(cfg.SpreadsFile); err != nil {
			return nil, err
		}
	}

	db, err := sqlstore.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	history, err := sqlstore.New(db, cfg.HistoryKeep)
	if err != nil {
		return nil, err
	}

	return app.NewTarotService(
		decks.NewEmbeddedStore(),
		decks.DefaultDeckID,
		domain.NewSpreadCatalog(extra...),
		history,
		history,
		stdRNG{},
		logger,
	), nil
}
