package domain_test

import (
	"errors"
	"testing"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

func TestAnswerFor(t *testing.T) {
	tests := []struct {
		name string
		o    domain.Orientation
		want domain.Answer
	}{
		{"太阳", domain.Upright, domain.AnswerYes},
		{"太阳", domain.Reversed, domain.AnswerMaybe},
		{"高塔", domain.Upright, domain.AnswerNo},
		{"高塔", domain.Reversed, domain.AnswerYes},
		{"隐士", domain.Upright, domain.AnswerMaybe},
		{"隐士", domain.Reversed, domain.AnswerNo},
	}
	for _, tt := range tests {
		got, explanation := domain.AnswerFor(domain.Card{Name: tt.name}, tt.o)
		if got != tt.want {
			t.Errorf("%s %s: expected %s, got %s", tt.name, tt.o, tt.want, got)
		}
		if explanation == "" {
			t.Errorf("%s %s: empty explanation", tt.name, tt.o)
		}
	}
}

func TestDrawYesNo(t *testing.T) {
	deck := domain.Deck{Cards: []domain.Card{{ID: "sun", Name: "太阳", Suit: domain.SuitMajor}}}
	rng := &deterministicRNG{values: []int{0}}

	res, err := domain.DrawYesNo(deck, "会成功吗？", rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != domain.AnswerYes {
		t.Errorf("expected yes, got %s", res.Answer)
	}
	if res.Card.Position != 1 {
		t.Errorf("expected position 1, got %d", res.Card.Position)
	}
}

func TestDrawYesNo_RequiresQuestion(t *testing.T) {
	_, err := domain.DrawYesNo(testDeck(3), "", &deterministicRNG{values: []int{0}})
	if !errors.Is(err, domain.ErrMissingQuestion) {
		t.Errorf("expected ErrMissingQuestion, got %v", err)
	}
}
