package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/futalk/Tarot-Reading/internal/analysis"
	"github.com/futalk/Tarot-Reading/internal/domain"
	"github.com/futalk/Tarot-Reading/internal/ports"
	"github.com/futalk/Tarot-Reading/internal/session"
)

// DrawRequest is the application-level input for a server-side draw.
type DrawRequest struct {
	Spread string
	// CustomCount sizes the custom spread; ignored otherwise.
	CustomCount int
	Question    string
	Cut         domain.CutPosition
	// Picks are candidate indexes chosen by the caller, in order. Missing
	// picks are chosen at random.
	Picks []int
}

// DrawResult is a completed reading plus its evaluation.
type DrawResult struct {
	Reading  domain.Reading  `json:"reading"`
	Analysis analysis.Result `json:"analysis"`
}

// AnalyzeRequest evaluates a reading assembled elsewhere.
type AnalyzeRequest struct {
	Spread   string
	Question string
	Cards    []ReadingCard
}

// TarotService draws readings, evaluates them and keeps the history.
type TarotService struct {
	deckStore ports.DeckStore
	deckID    string
	catalog   *domain.SpreadCatalog
	history   ports.HistoryStore
	daily     ports.DailyStore
	rng       domain.RNG
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewTarotService(
	ds ports.DeckStore,
	deckID string,
	catalog *domain.SpreadCatalog,
	history ports.HistoryStore,
	daily ports.DailyStore,
	rng domain.RNG,
	logger *slog.Logger,
) *TarotService {
	return &TarotService{
		deckStore: ds,
		deckID:    deckID,
		catalog:   catalog,
		history:   history,
		daily:     daily,
		rng:       rng,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger,
		tracer:    otel.Tracer("github.com/futalk/Tarot-Reading/internal/app"),
	}
}

// WithClock replaces the time source. It is meant for tests.
func (s *TarotService) WithClock(now func() time.Time) *TarotService {
	s.now = now
	return s
}

func (s *TarotService) deck(ctx context.Context) (domain.Deck, error) {
	deck, err := s.deckStore.GetDeck(ctx, s.deckID)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("get deck: %w", err)
	}
	return deck, nil
}

// Spreads lists every known spread.
func (s *TarotService) Spreads() []domain.Spread {
	return s.catalog.List()
}

// ResolveSpread returns the spread for id. The custom spread is sized by n.
func (s *TarotService) ResolveSpread(id string, n int) (domain.Spread, error) {
	if id == domain.SpreadCustom {
		return domain.CustomSpread(n)
	}
	spread, ok := s.catalog.Lookup(id)
	if !ok {
		return domain.Spread{}, fmt.Errorf("%w: %q", domain.ErrUnknownSpread, id)
	}
	return spread, nil
}

// Card looks a card up by its name.
func (s *TarotService) Card(ctx context.Context, name string) (domain.Card, error) {
	deck, err := s.deck(ctx)
	if err != nil {
		return domain.Card{}, err
	}
	card, ok := deck.Find(name)
	if !ok {
		return domain.Card{}, fmt.Errorf("%w: %q", domain.ErrCardNotFound, name)
	}
	return card, nil
}

// Draw runs a full reading flow: shuffle, cut, select and reveal. The
// completed reading is evaluated and appended to history.
func (s *TarotService) Draw(ctx context.Context, req DrawRequest) (DrawResult, error) {
	spread, err := s.ResolveSpread(req.Spread, req.CustomCount)
	if err != nil {
		return DrawResult{}, err
	}
	deck, err := s.deck(ctx)
	if err != nil {
		return DrawResult{}, err
	}

	cut := req.Cut
	if cut == "" {
		cut = domain.CutMiddle
	}

	sess := session.New(deck, s.rng)
	if err := sess.Start(spread, req.Question); err != nil {
		return DrawResult{}, err
	}
	if err := sess.FinishShuffle(); err != nil {
		return DrawResult{}, err
	}
	if err := sess.Cut(cut); err != nil {
		return DrawResult{}, err
	}
	for _, i := range s.picks(req.Picks, spread.Size(), sess.Candidates()) {
		if _, err := sess.Select(i); err != nil {
			return DrawResult{}, fmt.Errorf("select candidate %d: %w", i, err)
		}
	}

	reading, err := sess.Reveal(s.newID(), s.now().UTC())
	if err != nil {
		return DrawResult{}, err
	}

	result, err := s.evaluate(ctx, reading.Spread, reading.Question, reading.Cards)
	if err != nil {
		return DrawResult{}, err
	}

	if err := s.history.Append(ctx, reading); err != nil {
		return DrawResult{}, fmt.Errorf("append history: %w", err)
	}
	s.logger.InfoContext(ctx, "reading drawn",
		"reading_id", reading.ID,
		"spread", reading.Spread,
		"cards", len(reading.Cards),
	)
	return DrawResult{Reading: reading, Analysis: result}, nil
}

// picks completes the caller's picks with random distinct candidates.
func (s *TarotService) picks(chosen []int, need, candidates int) []int {
	out := make([]int, 0, need)
	used := make(map[int]bool, need)
	for _, i := range chosen {
		if len(out) == need {
			break
		}
		out = append(out, i)
		used[i] = true
	}

	var free []int
	for i := range candidates {
		if !used[i] {
			free = append(free, i)
		}
	}
	for len(out) < need && len(free) > 0 {
		j := s.rng.Intn(len(free))
		out = append(out, free[j])
		free = append(free[:j], free[j+1:]...)
	}
	return out
}

// Analyze evaluates a client-supplied reading without drawing.
func (s *TarotService) Analyze(ctx context.Context, req AnalyzeRequest) (analysis.Result, error) {
	if len(req.Cards) == 0 {
		return analysis.Result{}, domain.ErrMissingCards
	}
	if len(req.Cards) > domain.MaxSpreadSize {
		return analysis.Result{}, fmt.Errorf("%w: got %d", domain.ErrTooManyCards, len(req.Cards))
	}
	seen := make(map[string]bool, len(req.Cards))
	for _, rc := range req.Cards {
		if seen[rc.Name] {
			return analysis.Result{}, fmt.Errorf("%w: %q", domain.ErrDuplicateCard, rc.Name)
		}
		seen[rc.Name] = true
	}
	deck, err := s.deck(ctx)
	if err != nil {
		return analysis.Result{}, err
	}
	spread, known := s.catalog.Lookup(req.Spread)

	cards := make([]domain.DrawnCard, len(req.Cards))
	for i, rc := range req.Cards {
		card, ok := deck.Find(rc.Name)
		if !ok {
			return analysis.Result{}, fmt.Errorf("%w: %q", domain.ErrCardNotFound, rc.Name)
		}
		dc := domain.DrawnCard{
			Card:         card,
			Position:     i + 1,
			PositionName: rc.Position,
			Aspect:       domain.AspectFuture,
			Orientation:  domain.OrientationOf(rc.IsReversed),
		}
		if known && i < spread.Size() {
			if p := spread.Positions[i]; p.Aspect != "" {
				dc.Aspect = p.Aspect
			}
			if dc.PositionName == "" {
				dc.PositionName = spread.Positions[i].Name
			}
		}
		cards[i] = dc
	}
	return s.evaluate(ctx, req.Spread, req.Question, cards)
}

func (s *TarotService) evaluate(ctx context.Context, spreadID, question string, cards []domain.DrawnCard) (analysis.Result, error) {
	_, span := s.tracer.Start(ctx, "analysis.evaluate", trace.WithAttributes(
		attribute.String("tarot.spread", spreadID),
		attribute.Int("tarot.cards", len(cards)),
	))
	defer span.End()

	result, err := analysis.Evaluate(spreadID, question, cards)
	if err != nil {
		span.RecordError(err)
		return analysis.Result{}, err
	}
	span.SetAttributes(attribute.Int("tarot.combinations", len(result.Combinations)))
	return result, nil
}

// Daily returns the user's card of the day, drawing and storing it on the
// first request of the day.
func (s *TarotService) Daily(ctx context.Context, userID string) (domain.DailyCard, error) {
	if userID == "" {
		userID = "anonymous"
	}
	now := s.now()
	day := now.UTC().Format(domain.DayLayout)

	stored, ok, err := s.daily.GetDaily(ctx, userID, day)
	if err != nil {
		return domain.DailyCard{}, fmt.Errorf("get daily card: %w", err)
	}
	if ok {
		return stored, nil
	}

	deck, err := s.deck(ctx)
	if err != nil {
		return domain.DailyCard{}, err
	}
	d, err := domain.DrawDaily(deck, userID, now)
	if err != nil {
		return domain.DailyCard{}, err
	}
	if err := s.daily.SaveDaily(ctx, d); err != nil {
		return domain.DailyCard{}, fmt.Errorf("save daily card: %w", err)
	}
	return d, nil
}

// YesNo answers a question with a single card.
func (s *TarotService) YesNo(ctx context.Context, question string) (domain.YesNoResult, error) {
	if question == "" {
		return domain.YesNoResult{}, domain.ErrMissingQuestion
	}
	deck, err := s.deck(ctx)
	if err != nil {
		return domain.YesNoResult{}, err
	}
	return domain.DrawYesNo(deck, question, s.rng)
}

// History lists past readings, newest first.
func (s *TarotService) History(ctx context.Context, limit int) ([]domain.Reading, error) {
	readings, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return readings, nil
}

// ClearHistory removes every stored reading.
func (s *TarotService) ClearHistory(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// IsClientError reports whether err stems from bad input rather than a
// failing dependency.
func IsClientError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidN,
		domain.ErrNExceedsDeck,
		domain.ErrUnknownSpread,
		domain.ErrInvalidCut,
		domain.ErrMissingCards,
		domain.ErrMissingQuestion,
		domain.ErrCardNotFound,
		domain.ErrInvalidTransition,
		domain.ErrEndpointNeedsKey,
		domain.ErrTooManyCards,
		domain.ErrDuplicateCard,
		session.ErrCandidateRange,
		session.ErrCandidateTaken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
