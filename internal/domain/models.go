package domain

import (
	"encoding/json"
	"time"
)

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Orientation represents the orientation of a drawn tarot card.
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

// OrientationOf converts the wire-level isReversed flag.
func OrientationOf(reversed bool) Orientation {
	if reversed {
		return Reversed
	}
	return Upright
}

// Suit classifies a card. Major arcana cards use SuitMajor.
type Suit string

const (
	SuitMajor     Suit = "major"
	SuitWands     Suit = "wands"
	SuitCups      Suit = "cups"
	SuitSwords    Suit = "swords"
	SuitPentacles Suit = "pentacles"
)

// MinorSuits lists the minor suits in their fixed iteration order.
// Dominant-suit ties resolve to the earliest suit in this list.
var MinorSuits = []Suit{SuitWands, SuitCups, SuitSwords, SuitPentacles}

// Aspect is the life area a card meaning is keyed by.
type Aspect string

const (
	AspectLove         Aspect = "love"
	AspectCareer       Aspect = "career"
	AspectWealth       Aspect = "wealth"
	AspectHealth       Aspect = "health"
	AspectRelationship Aspect = "relationship"
	AspectFuture       Aspect = "future"
)

// Aspects lists every aspect in display order.
var Aspects = []Aspect{AspectLove, AspectCareer, AspectWealth, AspectHealth, AspectRelationship, AspectFuture}

// Court ranks for minor arcana.
const (
	RankAce    = 1
	RankPage   = 11
	RankKnight = 12
	RankQueen  = 13
	RankKing   = 14
)

// Card represents a single tarot card in a deck. Cards are built once at
// load time and never mutated.
type Card struct {
	ID          string                            `json:"id"`
	Name        string                            `json:"name"`
	EnglishName string                            `json:"english_name"`
	Suit        Suit                              `json:"suit"`
	Rank        int                               `json:"rank"`
	Keywords    map[Orientation][]string          `json:"keywords"`
	Meanings    map[Orientation]map[Aspect]string `json:"meanings"`
}

// IsMajor reports whether the card belongs to the major arcana.
func (c Card) IsMajor() bool { return c.Suit == SuitMajor }

// IsCourt reports whether the card is a page, knight, queen or king.
func (c Card) IsCourt() bool {
	return !c.IsMajor() && c.Rank >= RankPage && c.Rank <= RankKing
}

// IsAce reports whether the card is a minor arcana ace.
func (c Card) IsAce() bool { return !c.IsMajor() && c.Rank == RankAce }

// Number returns the numerological value of a minor pip card (ace = 1 to
// ten = 10). Major arcana and court cards carry no number.
func (c Card) Number() (int, bool) {
	if c.IsMajor() || c.Rank < RankAce || c.Rank > 10 {
		return 0, false
	}
	return c.Rank, true
}

// Meaning returns the meaning text for an orientation and aspect.
func (c Card) Meaning(o Orientation, a Aspect) string {
	return c.Meanings[o][a]
}

// DrawnCard is a card that has been drawn as part of a spread.
type DrawnCard struct {
	Card
	Position     int         `json:"position"`
	PositionName string      `json:"position_name"`
	Aspect       Aspect      `json:"aspect"`
	Orientation  Orientation `json:"orientation"`
}

// IsReversed reports whether the card was drawn reversed.
func (d DrawnCard) IsReversed() bool { return d.Orientation == Reversed }

// Interpretation returns the meaning for the aspect of the card's position.
func (d DrawnCard) Interpretation() string {
	return d.Card.Meaning(d.Orientation, d.Aspect)
}

// Deck is a collection of tarot cards.
type Deck struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// Find returns the card with the given name.
func (d Deck) Find(name string) (Card, bool) {
	for _, c := range d.Cards {
		if c.Name == name {
			return c, true
		}
	}
	return Card{}, false
}

// Reading is a completed draw. It is appended to history and never mutated.
type Reading struct {
	ID        string      `json:"id"`
	Spread    string      `json:"spread"`
	Question  string      `json:"question,omitempty"`
	Cards     []DrawnCard `json:"cards"`
	Cut       *DrawnCard  `json:"cut,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Interpretation is a normalized AI reading as returned and cached by the
// AI proxy.
type Interpretation struct {
	Text            string          `json:"interpretation"`
	Model           string          `json:"model"`
	Usage           json.RawMessage `json:"usage,omitempty"`
	UsingDefaultKey bool            `json:"usingDefaultKey"`
}
