package domain

import (
	"time"
	"unicode/utf16"
)

// DayLayout formats the calendar day a daily card belongs to.
const DayLayout = "2006-01-02"

// DailyCard is the card of the day for one user.
type DailyCard struct {
	UserID  string    `json:"user_id"`
	Day     string    `json:"day"`
	Card    DrawnCard `json:"card"`
	DrawnAt time.Time `json:"drawn_at"`
}

// DrawDaily picks the card of the day for userID on the UTC date of now.
// The pick is a pure function of (userID, date): the same user always gets
// the same card on the same day, and different users usually differ.
func DrawDaily(deck Deck, userID string, now time.Time) (DailyCard, error) {
	if len(deck.Cards) == 0 {
		return DailyCard{}, ErrNExceedsDeck
	}
	day := now.UTC().Format(DayLayout)
	seed := seedHash(userID + day)

	card := deck.Cards[seed%int64(len(deck.Cards))]
	return DailyCard{
		UserID: userID,
		Day:    day,
		Card: DrawnCard{
			Card:         card,
			Position:     1,
			PositionName: "每日一牌",
			Aspect:       AspectFuture,
			Orientation:  OrientationOf(seed%2 == 0),
		},
		DrawnAt: now,
	}, nil
}

// seedHash is the classic 31-multiplier string hash over UTF-16 code units,
// truncated to 32 bits, returned as an absolute value.
func seedHash(s string) int64 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
