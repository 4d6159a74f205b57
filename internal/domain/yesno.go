package domain

import "slices"

// Answer is the outcome of a yes/no reading.
type Answer string

const (
	AnswerYes   Answer = "yes"
	AnswerNo    Answer = "no"
	AnswerMaybe Answer = "maybe"
)

// YesNoResult is a single-card yes/no reading.
type YesNoResult struct {
	Question    string    `json:"question"`
	Card        DrawnCard `json:"card"`
	Answer      Answer    `json:"answer"`
	Explanation string    `json:"explanation"`
}

var (
	yesCards = []string{"愚者", "魔术师", "皇后", "皇帝", "恋人", "战车", "力量", "命运之轮", "太阳", "世界"}
	noCards  = []string{"死神", "恶魔", "高塔", "月亮"}
)

// AnswerFor maps a card and orientation to an answer. Upright cards lean
// toward their own polarity; reversal softens a yes into maybe, turns a no
// into yes, and turns neutral cards into no.
func AnswerFor(card Card, o Orientation) (Answer, string) {
	yes := slices.Contains(yesCards, card.Name)
	no := slices.Contains(noCards, card.Name)

	if o == Upright {
		switch {
		case yes:
			return AnswerYes, "塔罗牌显示积极的能量，答案倾向于肯定。"
		case no:
			return AnswerNo, "塔罗牌显示需要谨慎，答案倾向于否定。"
		default:
			return AnswerMaybe, "塔罗牌显示情况复杂，需要更多思考和准备。"
		}
	}

	switch {
	case yes:
		return AnswerMaybe, "正面的牌逆位，表示有阻碍但并非完全否定，需要克服困难。"
	case no:
		return AnswerYes, "负面的牌逆位，表示困难正在消退，答案倾向于肯定。"
	default:
		return AnswerNo, "塔罗牌逆位显示能量受阻，现在不是好时机。"
	}
}

// DrawYesNo draws one card from deck and answers question with it.
func DrawYesNo(deck Deck, question string, rng RNG) (YesNoResult, error) {
	if question == "" {
		return YesNoResult{}, ErrMissingQuestion
	}
	if len(deck.Cards) == 0 {
		return YesNoResult{}, ErrNExceedsDeck
	}
	card := deck.Cards[rng.Intn(len(deck.Cards))]
	o := RandomOrientation(rng)
	answer, explanation := AnswerFor(card, o)
	return YesNoResult{
		Question: question,
		Card: DrawnCard{
			Card:         card,
			Position:     1,
			PositionName: "是/否",
			Aspect:       AspectFuture,
			Orientation:  o,
		},
		Answer:      answer,
		Explanation: explanation,
	}, nil
}
