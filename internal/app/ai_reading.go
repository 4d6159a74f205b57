package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/futalk/Tarot-Reading/internal/domain"
	"github.com/futalk/Tarot-Reading/internal/ports"
)

const (
	fallbackEndpoint = "https://api.openai.com/v1/chat/completions"
	fallbackModel    = "gpt-3.5-turbo"

	// questionFingerprintLen is how many characters of the question take
	// part in the cache fingerprint.
	questionFingerprintLen = 50
	unknownClient          = "unknown"
)

// ReadingCard is one card of a client-assembled reading.
type ReadingCard struct {
	Name       string
	IsReversed bool
	Position   string
}

// AIReadingRequest is the application-level input of the AI proxy.
type AIReadingRequest struct {
	Cards       []ReadingCard
	Spread      string
	Question    string
	APIEndpoint string
	APIKey      string
	Model       string
	// ClientIP keys the rate limiter for operator-credential requests.
	ClientIP string
}

// AIReadingResult is an interpretation plus whether it came from the cache.
type AIReadingResult struct {
	domain.Interpretation
	Cached bool
	// Quota is set when the request was charged to the operator key.
	Quota *domain.QuotaDecision
}

// AIReadingConfig holds the operator defaults.
type AIReadingConfig struct {
	DefaultEndpoint string
	DefaultKey      string
	DefaultModel    string
	Policy          domain.QuotaPolicy
	// PruneInterval is the minimum gap between sweeps of stale rate-limit
	// records.
	PruneInterval time.Duration
	Now           func() time.Time
}

// AIReadingService resolves credentials, rate-limits operator-credential
// callers, and serves interpretations through the fingerprint cache.
type AIReadingService struct {
	interpreter ports.Interpreter
	cache       ports.ResultCache
	quota       ports.QuotaStore
	catalog     *domain.SpreadCatalog
	cfg         AIReadingConfig
	logger      *slog.Logger
	now         func() time.Time

	flights singleflight.Group

	pruneMu   sync.Mutex
	lastPrune time.Time
}

func NewAIReadingService(
	interp ports.Interpreter,
	cache ports.ResultCache,
	quota ports.QuotaStore,
	catalog *domain.SpreadCatalog,
	cfg AIReadingConfig,
	logger *slog.Logger,
) *AIReadingService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AIReadingService{
		interpreter: interp,
		cache:       cache,
		quota:       quota,
		catalog:     catalog,
		cfg:         cfg,
		logger:      logger,
		now:         now,
	}
}

// Interpret answers one AI reading request. A cache hit is returned without
// consuming quota or calling upstream.
func (s *AIReadingService) Interpret(ctx context.Context, req AIReadingRequest) (AIReadingResult, error) {
	if len(req.Cards) == 0 {
		return AIReadingResult{}, domain.ErrMissingCards
	}

	endpoint := firstNonEmpty(req.APIEndpoint, s.cfg.DefaultEndpoint, fallbackEndpoint)
	model := firstNonEmpty(req.Model, s.cfg.DefaultModel, fallbackModel)
	key := firstNonEmpty(req.APIKey, s.cfg.DefaultKey)
	if key == "" {
		return AIReadingResult{}, domain.ErrMissingCredential
	}
	// The operator key only ever goes to the operator endpoint.
	if req.APIKey == "" && req.APIEndpoint != "" && req.APIEndpoint != s.cfg.DefaultEndpoint {
		return AIReadingResult{}, domain.ErrEndpointNeedsKey
	}
	usingDefaultKey := req.APIKey == "" && s.cfg.DefaultKey != ""

	fp := Fingerprint(req.Spread, req.Cards, req.Question)

	cached, ok, err := s.cache.Get(ctx, fp)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed, treating as miss", "error", err)
	}
	if ok {
		cached.UsingDefaultKey = usingDefaultKey
		return AIReadingResult{Interpretation: cached, Cached: true}, nil
	}

	var quota *domain.QuotaDecision
	if usingDefaultKey {
		d, err := s.checkQuota(ctx, req.ClientIP)
		if err != nil {
			return AIReadingResult{}, err
		}
		quota = &d
	}

	s.logger.InfoContext(ctx, "requesting interpretation",
		"spread", req.Spread,
		"cards", len(req.Cards),
		"model", model,
		"using_default_key", usingDefaultKey,
		"api_key", MaskKey(key),
	)

	in := ports.InterpretInput{
		Endpoint:   endpoint,
		APIKey:     key,
		Model:      model,
		Spread:     req.Spread,
		SpreadName: s.catalog.Title(req.Spread),
		Question:   req.Question,
		Cards:      toCardInputs(req.Cards),
	}

	// Identical concurrent misses share one upstream call. The flight key
	// includes the upstream target so different providers never merge.
	// The shared call outlives any single caller, so it runs detached from
	// the caller's cancellation and each caller stops waiting on its own.
	flightKey := strings.Join([]string{fp, endpoint, model, MaskKey(key)}, "\x00")
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(flightKey, func() (any, error) {
		start := time.Now()
		out, err := s.interpreter.Interpret(flightCtx, in)
		if err != nil {
			return nil, err
		}
		result := domain.Interpretation{
			Text:  out.Text,
			Model: firstNonEmpty(out.Model, model),
			Usage: out.Usage,
		}
		if err := s.cache.Set(flightCtx, fp, result); err != nil {
			s.logger.WarnContext(flightCtx, "cache write failed", "error", err)
		}
		s.logger.InfoContext(flightCtx, "interpretation ready",
			"model", result.Model,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return result, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return AIReadingResult{}, ctx.Err()
	}
	if res.Err != nil {
		return AIReadingResult{}, withCredentialKind(res.Err, usingDefaultKey)
	}

	result := res.Val.(domain.Interpretation)
	result.UsingDefaultKey = usingDefaultKey
	return AIReadingResult{Interpretation: result, Quota: quota}, nil
}

// Providers lists the chat-completion presets clients can configure.
func (s *AIReadingService) Providers() []domain.ProviderPreset {
	return domain.ProviderPresets()
}

func (s *AIReadingService) checkQuota(ctx context.Context, clientIP string) (domain.QuotaDecision, error) {
	if clientIP == "" {
		clientIP = unknownClient
	}
	now := s.now()
	s.maybePrune(ctx, now)

	var decision domain.QuotaDecision
	err := s.quota.Update(ctx, clientIP, func(rec domain.QuotaRecord, found bool) domain.QuotaRecord {
		next, d := s.cfg.Policy.Apply(rec, found, now)
		decision = d
		return next
	})
	if err != nil {
		return decision, fmt.Errorf("rate limit: %w", err)
	}
	if !decision.Allowed {
		s.logger.InfoContext(ctx, "rate limited",
			"client", clientIP,
			"window", decision.Window,
			"retry_after", decision.RetryAfter,
		)
		return decision, &domain.RateLimitError{
			Window:     decision.Window,
			Limit:      decision.Limit,
			RetryAfter: decision.RetryAfter,
		}
	}
	return decision, nil
}

// maybePrune drops stale rate-limit records at most once per PruneInterval.
func (s *AIReadingService) maybePrune(ctx context.Context, now time.Time) {
	if s.cfg.PruneInterval <= 0 {
		return
	}
	s.pruneMu.Lock()
	if now.Sub(s.lastPrune) < s.cfg.PruneInterval {
		s.pruneMu.Unlock()
		return
	}
	s.lastPrune = now
	s.pruneMu.Unlock()

	n, err := s.quota.Prune(ctx, now)
	if err != nil {
		s.logger.WarnContext(ctx, "prune rate-limit records", "error", err)
		return
	}
	if n > 0 {
		s.logger.DebugContext(ctx, "pruned rate-limit records", "count", n)
	}
}

// withCredentialKind tags upstream failures with the kind of key used, so
// quota failures on operator credentials can be told apart.
func withCredentialKind(err error, defaultKey bool) error {
	var upErr *domain.UpstreamError
	if !errors.As(err, &upErr) {
		return err
	}
	tagged := *upErr
	tagged.DefaultKey = defaultKey
	return &tagged
}

// Fingerprint is the cache key of a reading: spread, the ordered
// name+orientation list and the first 50 characters of the question.
func Fingerprint(spread string, cards []ReadingCard, question string) string {
	sig := make([]string, len(cards))
	for i, c := range cards {
		o := "U"
		if c.IsReversed {
			o = "R"
		}
		sig[i] = c.Name + "-" + o
	}

	q := "no-question"
	if question != "" {
		runes := []rune(question)
		if len(runes) > questionFingerprintLen {
			runes = runes[:questionFingerprintLen]
		}
		q = string(runes)
	}
	return spread + ":" + strings.Join(sig, "|") + ":" + q
}

// MaskKey keeps only the first and last four characters of a credential.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func toCardInputs(cards []ReadingCard) []ports.CardInput {
	out := make([]ports.CardInput, len(cards))
	for i, c := range cards {
		out[i] = ports.CardInput{
			Name:        c.Name,
			Position:    c.Position,
			Orientation: string(domain.OrientationOf(c.IsReversed)),
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
