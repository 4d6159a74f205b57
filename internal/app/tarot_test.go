package app_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/futalk/Tarot-Reading/internal/adapters/decks"
	"github.com/futalk/Tarot-Reading/internal/app"
	"github.com/futalk/Tarot-Reading/internal/domain"
	"github.com/futalk/Tarot-Reading/internal/session"
)

type mockDeckStore struct {
	deck domain.Deck
	err  error
}

func (m *mockDeckStore) GetDeck(_ context.Context, _ string) (domain.Deck, error) {
	return m.deck, m.err
}

type mockHistory struct {
	readings []domain.Reading
	err      error
}

func (m *mockHistory) Append(_ context.Context, r domain.Reading) error {
	if m.err != nil {
		return m.err
	}
	m.readings = append(m.readings, r)
	return nil
}

func (m *mockHistory) List(_ context.Context, limit int) ([]domain.Reading, error) {
	out := make([]domain.Reading, 0, len(m.readings))
	for i := len(m.readings) - 1; i >= 0; i-- {
		out = append(out, m.readings[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, m.err
}

func (m *mockHistory) Clear(_ context.Context) error {
	m.readings = nil
	return m.err
}

type mockDaily struct {
	cards map[string]domain.DailyCard
	saves int
}

func (m *mockDaily) GetDaily(_ context.Context, userID, day string) (domain.DailyCard, bool, error) {
	d, ok := m.cards[userID+"/"+day]
	return d, ok, nil
}

func (m *mockDaily) SaveDaily(_ context.Context, d domain.DailyCard) error {
	if m.cards == nil {
		m.cards = make(map[string]domain.DailyCard)
	}
	m.saves++
	m.cards[d.UserID+"/"+d.Day] = d
	return nil
}

type fixedRNG struct{ val int }

func (r fixedRNG) Intn(n int) int { return r.val % n }

func riderWaite(t *testing.T) domain.Deck {
	t.Helper()
	deck, err := decks.NewEmbeddedStore().GetDeck(context.Background(), decks.DefaultDeckID)
	if err != nil {
		t.Fatalf("load deck: %v", err)
	}
	return deck
}

func newTarotService(t *testing.T, history *mockHistory, daily *mockDaily) *app.TarotService {
	t.Helper()
	return app.NewTarotService(
		&mockDeckStore{deck: riderWaite(t)},
		decks.DefaultDeckID,
		domain.NewSpreadCatalog(),
		history,
		daily,
		fixedRNG{val: 0},
		slog.Default(),
	)
}

func TestDraw_Success(t *testing.T) {
	history := &mockHistory{}
	svc := newTarotService(t, history, &mockDaily{})

	res, err := svc.Draw(context.Background(), app.DrawRequest{
		Spread:   domain.SpreadTriangle,
		Question: "我的事业会怎样？",
		Cut:      domain.CutLeft,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := res.Reading
	if len(r.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(r.Cards))
	}
	if r.ID == "" {
		t.Error("expected a reading id")
	}
	if r.Cut == nil {
		t.Error("expected a cut card")
	}
	seen := make(map[string]bool)
	for i, c := range r.Cards {
		if seen[c.Name] {
			t.Errorf("duplicate card %s", c.Name)
		}
		seen[c.Name] = true
		if c.Position != i+1 {
			t.Errorf("card %d: expected position %d, got %d", i, i+1, c.Position)
		}
	}
	if r.Cards[0].PositionName != "过去" || r.Cards[2].PositionName != "未来" {
		t.Errorf("unexpected position names: %s, %s", r.Cards[0].PositionName, r.Cards[2].PositionName)
	}
	if res.Analysis.Context != "career" {
		t.Errorf("expected career context, got %s", res.Analysis.Context)
	}
	if res.Analysis.Story.Opening == "" {
		t.Error("expected a story opening")
	}
	if len(history.readings) != 1 || history.readings[0].ID != r.ID {
		t.Errorf("expected reading appended to history, got %+v", history.readings)
	}
}

func TestDraw_CustomSpread(t *testing.T) {
	svc := newTarotService(t, &mockHistory{}, &mockDaily{})

	res, err := svc.Draw(context.Background(), app.DrawRequest{Spread: domain.SpreadCustom, CustomCount: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Reading.Cards) != 5 {
		t.Fatalf("expected 5 cards, got %d", len(res.Reading.Cards))
	}
	for _, c := range res.Reading.Cards {
		if c.Aspect != domain.AspectFuture {
			t.Errorf("%s: expected future aspect, got %s", c.Name, c.Aspect)
		}
	}
}

func TestDraw_CallerPicks(t *testing.T) {
	deck := riderWaite(t)
	svc := newTarotService(t, &mockHistory{}, &mockDaily{})

	res, err := svc.Draw(context.Background(), app.DrawRequest{Spread: domain.SpreadRandom, Picks: []int{4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := deck.Find(res.Reading.Cards[0].Name); !ok {
		t.Errorf("picked card %s not in deck", res.Reading.Cards[0].Name)
	}
}

func TestDraw_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  app.DrawRequest
		want error
	}{
		{"unknown spread", app.DrawRequest{Spread: "pentagram"}, domain.ErrUnknownSpread},
		{"custom too large", app.DrawRequest{Spread: domain.SpreadCustom, CustomCount: 11}, domain.ErrInvalidN},
		{"bad cut", app.DrawRequest{Spread: domain.SpreadLove, Cut: "top"}, domain.ErrInvalidCut},
		{"repeated pick", app.DrawRequest{Spread: domain.SpreadLove, Picks: []int{2, 2}}, session.ErrCandidateTaken},
		{"pick out of range", app.DrawRequest{Spread: domain.SpreadLove, Picks: []int{12}}, session.ErrCandidateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &mockHistory{}
			svc := newTarotService(t, history, &mockDaily{})

			_, err := svc.Draw(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !app.IsClientError(err) {
				t.Errorf("expected %v to be a client error", err)
			}
			if len(history.readings) != 0 {
				t.Error("failed draws must not reach history")
			}
		})
	}
}

func TestDraw_DeckNotFound(t *testing.T) {
	svc := app.NewTarotService(
		&mockDeckStore{err: domain.ErrDeckNotFound},
		"nonexistent",
		domain.NewSpreadCatalog(),
		&mockHistory{},
		&mockDaily{},
		fixedRNG{},
		slog.Default(),
	)

	_, err := svc.Draw(context.Background(), app.DrawRequest{Spread: domain.SpreadLove})
	if !errors.Is(err, domain.ErrDeckNotFound) {
		t.Fatalf("expected ErrDeckNotFound, got %v", err)
	}
	if app.IsClientError(err) {
		t.Error("a missing deck is not a client error")
	}
}

func TestDraw_HistoryFailure(t *testing.T) {
	svc := newTarotService(t, &mockHistory{err: errors.New("disk full")}, &mockDaily{})

	if _, err := svc.Draw(context.Background(), app.DrawRequest{Spread: domain.SpreadLove}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestAnalyze(t *testing.T) {
	svc := newTarotService(t, &mockHistory{}, &mockDaily{})

	res, err := svc.Analyze(context.Background(), app.AnalyzeRequest{
		Spread: domain.SpreadLove,
		Cards: []app.ReadingCard{
			{Name: "死神"},
			{Name: "隐士", IsReversed: true},
			{Name: "太阳"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Combinations) != 1 || res.Combinations[0].Theme != "重生的光明" {
		t.Errorf("unexpected combinations: %+v", res.Combinations)
	}
	if res.Story.Climax == "" {
		t.Error("expected a climax")
	}
}

func TestAnalyze_UnknownCard(t *testing.T) {
	svc := newTarotService(t, &mockHistory{}, &mockDaily{})

	_, err := svc.Analyze(context.Background(), app.AnalyzeRequest{Cards: []app.ReadingCard{{Name: "不存在的牌"}}})
	if !errors.Is(err, domain.ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}

	_, err = svc.Analyze(context.Background(), app.AnalyzeRequest{})
	if !errors.Is(err, domain.ErrMissingCards) {
		t.Fatalf("expected ErrMissingCards, got %v", err)
	}
}

func TestAnalyze_RejectsOversizeAndRepeatedCards(t *testing.T) {
	svc := newTarotService(t, &mockHistory{}, &mockDaily{})

	var eleven []app.ReadingCard
	for _, name := range []string{
		"愚者", "魔术师", "女祭司", "皇后", "皇帝", "教皇",
		"恋人", "战车", "力量", "隐士", "命运之轮",
	} {
		eleven = append(eleven, app.ReadingCard{Name: name})
	}

	tests := []struct {
		name  string
		cards []app.ReadingCard
		want  error
	}{
		{"eleven cards", eleven, domain.ErrTooManyCards},
		{"same card twice", []app.ReadingCard{{Name: "太阳"}, {Name: "月亮"}, {Name: "太阳", IsReversed: true}}, domain.ErrDuplicateCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Analyze(context.Background(), app.AnalyzeRequest{Spread: domain.SpreadRandom, Cards: tt.cards})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !app.IsClientError(err) {
				t.Errorf("expected %v to be a client error", err)
			}
		})
	}

	if _, err := svc.Analyze(context.Background(), app.AnalyzeRequest{Cards: eleven[:10]}); err != nil {
		t.Fatalf("ten distinct cards must be accepted, got %v", err)
	}
}

func TestDaily_StoredOncePerDay(t *testing.T) {
	daily := &mockDaily{}
	svc := newTarotService(t, &mockHistory{}, daily)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	first, err := svc.Daily(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	now = now.Add(10 * time.Hour)
	second, err := svc.Daily(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Card.Name != second.Card.Name || !second.DrawnAt.Equal(first.DrawnAt) {
		t.Errorf("expected the stored card back, got %s then %s", first.Card.Name, second.Card.Name)
	}
	if daily.saves != 1 {
		t.Errorf("expected one save, got %d", daily.saves)
	}
	if first.Day != "2025-03-01" {
		t.Errorf("unexpected day: %s", first.Day)
	}
}

func TestYesNo(t *testing.T) {
	svc := newTarotService(t, &mockHistory{}, &mockDaily{})

	if _, err := svc.YesNo(context.Background(), ""); !errors.Is(err, domain.ErrMissingQuestion) {
		t.Fatalf("expected ErrMissingQuestion, got %v", err)
	}

	res, err := svc.YesNo(context.Background(), "我该换工作吗？")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	switch res.Answer {
	case domain.AnswerYes, domain.AnswerNo, domain.AnswerMaybe:
	default:
		t.Errorf("unexpected answer %q", res.Answer)
	}
}

func TestHistory_ListAndClear(t *testing.T) {
	history := &mockHistory{}
	svc := newTarotService(t, history, &mockDaily{})
	ctx := context.Background()

	for range 3 {
		if _, err := svc.Draw(ctx, app.DrawRequest{Spread: domain.SpreadRandom}); err != nil {
			t.Fatalf("draw: %v", err)
		}
	}
	got, err := svc.History(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != history.readings[2].ID {
		t.Errorf("expected newest two readings, got %d", len(got))
	}

	if err := svc.ClearHistory(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := svc.History(ctx, 0); len(got) != 0 {
		t.Errorf("expected empty history, got %d", len(got))
	}
}

func TestCard(t *testing.T) {
	svc := newTarotService(t, &mockHistory{}, &mockDaily{})

	card, err := svc.Card(context.Background(), "星星")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.EnglishName != "The Star" {
		t.Errorf("unexpected english name %q", card.EnglishName)
	}
	if _, err := svc.Card(context.Background(), "Star"); !errors.Is(err, domain.ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}
