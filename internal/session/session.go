// Package session drives one reading from shuffle to reveal as an explicit
// state machine. A Session is not safe for concurrent use.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

// State is a step of the reading flow.
type State string

const (
	Idle      State = "idle"
	Shuffling State = "shuffling"
	Cutting   State = "cutting"
	Selecting State = "selecting"
	Revealing State = "revealing"
	Complete  State = "complete"
)

// CandidateCount is how many face-down cards are offered for selection.
const CandidateCount = 10

var (
	ErrCandidateRange = errors.New("candidate index out of range")
	ErrCandidateTaken = errors.New("candidate already selected")
)

type Session struct {
	deck domain.Deck
	rng  domain.RNG

	state      State
	spread     domain.Spread
	question   string
	shuffled   []domain.Card
	candidates []domain.Card
	taken      map[int]bool
	drawn      []domain.DrawnCard
	cut        *domain.DrawnCard
}

func New(deck domain.Deck, rng domain.RNG) *Session {
	return &Session{deck: deck, rng: rng, state: Idle}
}

func (s *Session) State() State { return s.state }

func (s *Session) Spread() domain.Spread { return s.spread }

// Candidates returns the number of face-down cards on offer.
func (s *Session) Candidates() int { return len(s.candidates) }

// Drawn returns the cards selected so far.
func (s *Session) Drawn() []domain.DrawnCard {
	out := make([]domain.DrawnCard, len(s.drawn))
	copy(out, s.drawn)
	return out
}

// CutCard returns the revealed cut card, if the deck has been cut.
func (s *Session) CutCard() (domain.DrawnCard, bool) {
	if s.cut == nil {
		return domain.DrawnCard{}, false
	}
	return *s.cut, true
}

func (s *Session) expect(want State, action string) error {
	if s.state != want {
		return fmt.Errorf("%s in state %s: %w", action, s.state, domain.ErrInvalidTransition)
	}
	return nil
}

// Start picks the spread and question. Idle -> Shuffling.
func (s *Session) Start(spread domain.Spread, question string) error {
	if err := s.expect(Idle, "start"); err != nil {
		return err
	}
	n := spread.Size()
	if n < 1 || n > domain.MaxSpreadSize {
		return domain.ErrInvalidN
	}
	if n > len(s.deck.Cards) {
		return domain.ErrNExceedsDeck
	}
	s.spread = spread
	s.question = question
	s.state = Shuffling
	return nil
}

// FinishShuffle shuffles the full deck. Shuffling -> Cutting.
func (s *Session) FinishShuffle() error {
	if err := s.expect(Shuffling, "finish shuffle"); err != nil {
		return err
	}
	s.shuffled = domain.Shuffle(s.deck.Cards, s.rng)
	s.state = Cutting
	return nil
}

// Cut reveals the cut card and lays out the candidates. The cut card stays
// in the pool. Cutting -> Selecting.
func (s *Session) Cut(p domain.CutPosition) error {
	if err := s.expect(Cutting, "cut"); err != nil {
		return err
	}
	cut, err := domain.CutCard(s.shuffled, p, s.spread.ID, s.rng)
	if err != nil {
		return err
	}
	s.cut = &cut
	s.candidates = s.shuffled[:min(CandidateCount, len(s.shuffled))]
	s.taken = make(map[int]bool, s.spread.Size())
	s.state = Selecting
	return nil
}

// Select turns candidate i face up into the next spread position. The pick
// that completes the spread moves to Revealing.
func (s *Session) Select(i int) (domain.DrawnCard, error) {
	if err := s.expect(Selecting, "select"); err != nil {
		return domain.DrawnCard{}, err
	}
	if i < 0 || i >= len(s.candidates) {
		return domain.DrawnCard{}, ErrCandidateRange
	}
	if s.taken[i] {
		return domain.DrawnCard{}, ErrCandidateTaken
	}

	pos := len(s.drawn)
	dc := domain.Place(s.candidates[i], s.spread, pos, domain.RandomOrientation(s.rng), s.rng)
	s.taken[i] = true
	s.drawn = append(s.drawn, dc)
	if len(s.drawn) == s.spread.Size() {
		s.state = Revealing
	}
	return dc, nil
}

// Reveal completes the reading. Revealing -> Complete.
func (s *Session) Reveal(id string, at time.Time) (domain.Reading, error) {
	if err := s.expect(Revealing, "reveal"); err != nil {
		return domain.Reading{}, err
	}
	s.state = Complete

	r := domain.Reading{
		ID:        id,
		Spread:    s.spread.ID,
		Question:  s.question,
		Cards:     s.Drawn(),
		CreatedAt: at,
	}
	if s.cut != nil {
		cut := *s.cut
		r.Cut = &cut
	}
	return r, nil
}

// Restart discards the current reading from any state.
func (s *Session) Restart() {
	*s = Session{deck: s.deck, rng: s.rng, state: Idle}
}
