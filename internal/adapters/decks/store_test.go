package decks_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/futalk/Tarot-Reading/internal/adapters/decks"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

func TestEmbeddedStore_FullDeck(t *testing.T) {
	store := decks.NewEmbeddedStore()
	deck, err := store.GetDeck(context.Background(), decks.DefaultDeckID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deck.Cards) != 78 {
		t.Fatalf("expected 78 cards, got %d", len(deck.Cards))
	}

	majors, court, aces := 0, 0, 0
	for _, c := range deck.Cards {
		if c.IsMajor() {
			majors++
		}
		if c.IsCourt() {
			court++
		}
		if c.IsAce() {
			aces++
		}
	}
	if majors != 22 || court != 16 || aces != 4 {
		t.Errorf("unexpected composition: majors=%d court=%d aces=%d", majors, court, aces)
	}
}

func TestEmbeddedStore_Meanings(t *testing.T) {
	deck, err := decks.NewEmbeddedStore().GetDeck(context.Background(), decks.DefaultDeckID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fool, ok := deck.Find("愚者")
	if !ok {
		t.Fatal("愚者 not found")
	}
	for _, o := range []domain.Orientation{domain.Upright, domain.Reversed} {
		for _, a := range domain.Aspects {
			m := fool.Meaning(o, a)
			if !strings.Contains(m, "愚者") {
				t.Errorf("%s/%s: meaning %q does not name the card", o, a, m)
			}
		}
	}

	knight, ok := deck.Find("宝剑骑士")
	if !ok {
		t.Fatal("宝剑骑士 not found")
	}
	if knight.Suit != domain.SuitSwords || knight.Rank != domain.RankKnight {
		t.Errorf("unexpected knight: %+v", knight)
	}
}

func TestEmbeddedStore_UnknownDeck(t *testing.T) {
	_, err := decks.NewEmbeddedStore().GetDeck(context.Background(), "nope")
	if !errors.Is(err, domain.ErrDeckNotFound) {
		t.Errorf("expected ErrDeckNotFound, got %v", err)
	}
}
