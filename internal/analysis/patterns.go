// Package analysis evaluates a completed reading: it detects structural
// patterns, looks up card combinations and assembles a narrative. Everything
// here is pure and deterministic.
package analysis

import (
	"slices"
	"sort"
	"strconv"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

// Energy is the coarse polarity of a drawn card.
type Energy string

const (
	Positive Energy = "positive"
	Negative Energy = "negative"
	Neutral  Energy = "neutral"
)

var (
	positiveCards = []string{"太阳", "星星", "世界", "圣杯十", "星币十", "权杖六", "魔术师", "皇后"}
	negativeCards = []string{"高塔", "宝剑十", "宝剑三", "圣杯五", "恶魔", "月亮", "宝剑九"}
)

// EnergyOf classifies a drawn card. Reversal degrades a polarized card to
// neutral; it never flips positive to negative or back.
func EnergyOf(c domain.DrawnCard) Energy {
	switch {
	case slices.Contains(positiveCards, c.Name):
		if c.IsReversed() {
			return Neutral
		}
		return Positive
	case slices.Contains(negativeCards, c.Name):
		if c.IsReversed() {
			return Neutral
		}
		return Negative
	default:
		return Neutral
	}
}

// EnergyBalance counts cards per energy class.
type EnergyBalance struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (b *EnergyBalance) add(e Energy) {
	switch e {
	case Positive:
		b.Positive++
	case Negative:
		b.Negative++
	default:
		b.Neutral++
	}
}

// Significance ranks a theme.
type Significance string

const (
	SignificanceHigh   Significance = "high"
	SignificanceMedium Significance = "medium"
)

// Theme is a recurring motif detected across the spread.
type Theme struct {
	Name         string       `json:"theme"`
	Description  string       `json:"description"`
	Cards        []string     `json:"cards,omitempty"`
	Significance Significance `json:"significance"`
}

// Patterns is the single-pass summary of a spread.
type Patterns struct {
	Total       int                 `json:"total"`
	MajorArcana []string            `json:"major_arcana"`
	Suits       map[domain.Suit]int `json:"suits"`
	Numbers     map[int]int         `json:"numbers"`
	Aces        []string            `json:"aces"`
	Court       []string            `json:"court"`
	Reversed    int                 `json:"reversed"`
	Energy      EnergyBalance       `json:"energy"`
	Themes      []Theme             `json:"themes"`
}

// DominantSuit returns the suit with the highest count. Ties go to the
// earliest suit in domain.MinorSuits.
func (p Patterns) DominantSuit() (domain.Suit, int) {
	best, bestCount := domain.MinorSuits[0], p.Suits[domain.MinorSuits[0]]
	for _, s := range domain.MinorSuits[1:] {
		if p.Suits[s] > bestCount {
			best, bestCount = s, p.Suits[s]
		}
	}
	return best, bestCount
}

// MajorRatio is the share of major arcana among all cards.
func (p Patterns) MajorRatio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(len(p.MajorArcana)) / float64(p.Total)
}

// ReversedRatio is the share of reversed cards.
func (p Patterns) ReversedRatio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Reversed) / float64(p.Total)
}

// RepeatedNumbers returns the pip numbers seen at least twice, ascending.
func (p Patterns) RepeatedNumbers() []int {
	var out []int
	for n, count := range p.Numbers {
		if count >= 2 {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// DetectPatterns scans cards once.
func DetectPatterns(cards []domain.DrawnCard) Patterns {
	p := Patterns{
		Total:   len(cards),
		Suits:   make(map[domain.Suit]int, len(domain.MinorSuits)),
		Numbers: make(map[int]int),
	}
	for _, s := range domain.MinorSuits {
		p.Suits[s] = 0
	}

	for _, c := range cards {
		if c.IsMajor() {
			p.MajorArcana = append(p.MajorArcana, c.Name)
		} else {
			p.Suits[c.Suit]++
		}
		if n, ok := c.Number(); ok {
			p.Numbers[n]++
		}
		if c.IsAce() {
			p.Aces = append(p.Aces, c.Name)
		}
		if c.IsCourt() {
			p.Court = append(p.Court, c.Name)
		}
		if c.IsReversed() {
			p.Reversed++
		}
		p.Energy.add(EnergyOf(c))
	}

	p.Themes = identifyThemes(p, cards)
	return p
}

var suitThemes = map[domain.Suit]string{
	domain.SuitWands:     "行动与激情",
	domain.SuitCups:      "情感与关系",
	domain.SuitSwords:    "思考与真相",
	domain.SuitPentacles: "物质与稳定",
}

var numberThemes = map[int]string{
	2:  "选择、平衡、伙伴关系",
	3:  "创造、成长、表达",
	4:  "稳定、结构、基础",
	5:  "冲突、挑战、变化",
	6:  "和谐、调整、进展",
	7:  "评估、反思、选择",
	8:  "行动、掌控、力量",
	9:  "接近完成、智慧、成就",
	10: "完成、圆满、新周期",
}

func identifyThemes(p Patterns, cards []domain.DrawnCard) []Theme {
	var themes []Theme

	if len(p.MajorArcana) >= 2 {
		themes = append(themes, Theme{
			Name:         "重大人生课题",
			Description:  "多张大阿尔卡纳的出现表明这是一个重要的人生转折点或深刻的灵性课题。",
			Cards:        p.MajorArcana,
			Significance: SignificanceHigh,
		})
	}
	if len(p.Aces) >= 2 {
		themes = append(themes, Theme{
			Name:         "新的开始",
			Description:  "多张王牌预示着生活多个领域的新开始和新机会。",
			Cards:        p.Aces,
			Significance: SignificanceHigh,
		})
	}
	if len(p.Court) >= 2 {
		themes = append(themes, Theme{
			Name:         "人际关系",
			Description:  "多张宫廷牌表明人际关系和他人的影响在当前情况中很重要。",
			Cards:        p.Court,
			Significance: SignificanceMedium,
		})
	}

	// Aces already have their own theme.
	for _, n := range p.RepeatedNumbers() {
		if n == domain.RankAce {
			continue
		}
		var named []string
		for _, c := range cards {
			if v, ok := c.Number(); ok && v == n {
				named = append(named, c.Name)
			}
		}
		themes = append(themes, Theme{
			Name:         "数字" + strconv.Itoa(n) + "的能量",
			Description:  "多张" + strconv.Itoa(n) + "号牌强调了" + numberThemes[n] + "的主题。",
			Cards:        named,
			Significance: SignificanceMedium,
		})
	}

	for _, s := range domain.MinorSuits {
		if p.Suits[s] >= 3 {
			themes = append(themes, Theme{
				Name:         suitThemes[s],
				Description:  "同一花色的牌多次出现，" + suitThemes[s] + "是当前的主旋律。",
				Significance: SignificanceMedium,
			})
		}
	}

	if p.Total > 0 && p.ReversedRatio() >= 0.5 {
		themes = append(themes, Theme{
			Name:         "内在阻碍",
			Description:  "超过半数的逆位牌表明存在内在的阻碍、延迟或需要重新审视的领域。",
			Significance: SignificanceHigh,
		})
	}
	return themes
}
