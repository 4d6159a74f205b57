package ports

import (
	"context"
	"time"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

// ResultCache stores AI interpretations by reading fingerprint. Expired
// entries must read as misses.
type ResultCache interface {
	Get(ctx context.Context, key string) (domain.Interpretation, bool, error)
	Set(ctx context.Context, key string, v domain.Interpretation) error
}

// QuotaStore holds per-client rate-limit records. Update runs fn atomically
// with respect to other updates of the same key; fn may be called more than
// once when the backend retries.
type QuotaStore interface {
	Update(ctx context.Context, key string, fn func(rec domain.QuotaRecord, found bool) domain.QuotaRecord) error
	Prune(ctx context.Context, now time.Time) (int, error)
}

// HistoryStore is the append-only reading history.
type HistoryStore interface {
	Append(ctx context.Context, r domain.Reading) error
	List(ctx context.Context, limit int) ([]domain.Reading, error)
	Clear(ctx context.Context) error
}

// DailyStore remembers the card of the day per user.
type DailyStore interface {
	GetDaily(ctx context.Context, userID, day string) (domain.DailyCard, bool, error)
	SaveDaily(ctx context.Context, d domain.DailyCard) error
}
