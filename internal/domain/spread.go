package domain

// Shuffle returns a Fisher-Yates permutation of cards. The input slice is
// left untouched.
func Shuffle(cards []Card, rng RNG) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// GenerateSpread draws one unique card per spread position using the
// provided RNG. Positions are 1-based. Orientation is 50/50 upright/reversed.
func GenerateSpread(deck Deck, spread Spread, rng RNG) ([]DrawnCard, error) {
	n := spread.Size()
	if n < 1 || n > MaxSpreadSize {
		return nil, ErrInvalidN
	}
	if n > len(deck.Cards) {
		return nil, ErrNExceedsDeck
	}

	shuffled := Shuffle(deck.Cards, rng)

	cards := make([]DrawnCard, n)
	for i := range n {
		cards[i] = Place(shuffled[i], spread, i, RandomOrientation(rng), rng)
	}
	return cards, nil
}

// RandomOrientation flips a fair coin.
func RandomOrientation(rng RNG) Orientation {
	return OrientationOf(rng.Intn(2) == 1)
}

// Place binds card to the i-th (0-based) position of spread. Positions
// without an aspect get one picked at random.
func Place(card Card, spread Spread, i int, o Orientation, rng RNG) DrawnCard {
	p := spread.Positions[i]
	aspect := p.Aspect
	if aspect == "" {
		aspect = Aspects[rng.Intn(len(Aspects))]
	}
	return DrawnCard{
		Card:         card,
		Position:     i + 1,
		PositionName: p.Name,
		Aspect:       aspect,
		Orientation:  o,
	}
}

// CutPosition is where the querent splits the shuffled deck.
type CutPosition string

const (
	CutLeft   CutPosition = "left"
	CutMiddle CutPosition = "middle"
	CutRight  CutPosition = "right"
)

// Index returns the deck index revealed by cutting at p.
func (p CutPosition) Index(deckSize int) (int, error) {
	switch p {
	case CutLeft:
		return deckSize / 4, nil
	case CutMiddle:
		return deckSize / 2, nil
	case CutRight:
		return deckSize * 3 / 4, nil
	default:
		return 0, ErrInvalidCut
	}
}

// CutCard reveals the card at the cut point with its own random orientation.
// The cut card's aspect follows the spread theme, falling back to love.
func CutCard(shuffled []Card, p CutPosition, spreadID string, rng RNG) (DrawnCard, error) {
	if len(shuffled) == 0 {
		return DrawnCard{}, ErrNExceedsDeck
	}
	idx, err := p.Index(len(shuffled))
	if err != nil {
		return DrawnCard{}, err
	}
	return DrawnCard{
		Card:         shuffled[idx],
		PositionName: "切牌",
		Aspect:       cutAspect(spreadID),
		Orientation:  RandomOrientation(rng),
	}, nil
}

func cutAspect(spreadID string) Aspect {
	for _, a := range Aspects {
		if string(a) == spreadID {
			return a
		}
	}
	return AspectLove
}
