package analysis

import (
	"fmt"
	"strings"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

// Element is the classical element a suit stands for. Major arcana form
// their own group.
type Element string

const (
	ElementFire  Element = "fire"
	ElementWater Element = "water"
	ElementAir   Element = "air"
	ElementEarth Element = "earth"
	ElementMajor Element = "major"
)

// ElementCount is one row of the element distribution.
type ElementCount struct {
	Element Element  `json:"element"`
	Name    string   `json:"name"`
	Meaning string   `json:"meaning"`
	Count   int      `json:"count"`
	Cards   []string `json:"cards,omitempty"`
}

var elementRows = []struct {
	element Element
	suit    domain.Suit
	name    string
	meaning string
}{
	{ElementFire, domain.SuitWands, "火（权杖）", "激情、行动、创造力"},
	{ElementWater, domain.SuitCups, "水（圣杯）", "情感、直觉、关系"},
	{ElementAir, domain.SuitSwords, "风（宝剑）", "思维、沟通、真相"},
	{ElementEarth, domain.SuitPentacles, "土（星币）", "物质、实际、稳定"},
	{ElementMajor, domain.SuitMajor, "大阿尔卡纳", "重大课题、灵性成长"},
}

// ElementDistribution counts cards per element, always in the order fire,
// water, air, earth, major.
func ElementDistribution(cards []domain.DrawnCard) []ElementCount {
	out := make([]ElementCount, len(elementRows))
	idx := make(map[domain.Suit]int, len(elementRows))
	for i, r := range elementRows {
		out[i] = ElementCount{Element: r.element, Name: r.name, Meaning: r.meaning}
		idx[r.suit] = i
	}
	for _, c := range cards {
		i, ok := idx[c.Suit]
		if !ok {
			i = len(out) - 1
		}
		out[i].Count++
		out[i].Cards = append(out[i].Cards, c.Name)
	}
	return out
}

// InsightKind groups insights by their source.
type InsightKind string

const (
	InsightElement     InsightKind = "元素能量"
	InsightImbalance   InsightKind = "能量失衡"
	InsightTheme       InsightKind = "核心主题"
	InsightCombination InsightKind = "牌组合洞察"
	InsightSpiritual   InsightKind = "灵性课题"
)

// Insight is one observation drawn from the distribution, themes and
// combinations.
type Insight struct {
	Kind     InsightKind `json:"type"`
	Text     string      `json:"insight"`
	Theme    string      `json:"theme,omitempty"`
	Priority Priority    `json:"priority"`
}

// Insights derives observations in a fixed order: dominant element, element
// imbalance, high-significance themes, combinations, then the spiritual
// lesson when at least half the cards are major arcana.
func Insights(cards []domain.DrawnCard, elements []ElementCount, p Patterns, hits []Hit) []Insight {
	var out []Insight

	suits := elements[:4]
	dominant := suits[0]
	lo, hi := suits[0].Count, suits[0].Count
	for _, e := range suits[1:] {
		if e.Count > dominant.Count {
			dominant = e
		}
		lo, hi = min(lo, e.Count), max(hi, e.Count)
	}
	if dominant.Count >= 2 {
		out = append(out, Insight{
			Kind:     InsightElement,
			Text:     fmt.Sprintf("%s元素占主导，强调%s的重要性。", dominant.Name, dominant.Meaning),
			Priority: PriorityHigh,
		})
	}
	if hi-lo >= 3 {
		out = append(out, Insight{
			Kind:     InsightImbalance,
			Text:     "元素分布不均衡，建议在生活中寻求更多的平衡，关注被忽视的领域。",
			Priority: PriorityMedium,
		})
	}

	for _, th := range p.Themes {
		if th.Significance != SignificanceHigh {
			continue
		}
		out = append(out, Insight{
			Kind:     InsightTheme,
			Text:     th.Name + "：" + th.Description,
			Priority: PriorityHigh,
		})
	}

	for _, h := range hits {
		names := make([]string, len(h.Indexes))
		for i, idx := range h.Indexes {
			names[i] = cards[idx].Name
		}
		out = append(out, Insight{
			Kind:     InsightCombination,
			Text:     strings.Join(names, " + ") + "：" + h.Meaning,
			Theme:    h.Theme,
			Priority: PriorityHigh,
		})
	}

	if 2*elements[len(elements)-1].Count >= len(cards) {
		out = append(out, Insight{
			Kind:     InsightSpiritual,
			Text:     "大量大阿尔卡纳表明这是一个深刻的灵性成长时期，宇宙正在引导你经历重要的人生课题。",
			Priority: PriorityHigh,
		})
	}
	return out
}

type spreadFramework struct {
	name      string
	summary   string
	questions []string
}

var (
	singleFramework = spreadFramework{
		name:    "单张牌",
		summary: "这张牌代表了当前情况的核心能量和主要信息。",
	}

	frameworks = map[string]spreadFramework{
		domain.SpreadTriangle: {
			name:    "过去-现在-未来",
			summary: "这个牌阵展示了情况的时间线发展。",
			questions: []string{
				"过去的经验如何影响现在的状况？",
				"现在的选择将如何影响未来的发展？",
				"从过去到未来的整体趋势是什么？",
			},
		},
		domain.SpreadCeltic: {
			name:    "凯尔特十字",
			summary: "这是最全面的牌阵，提供了情况的多维度分析。",
			questions: []string{
				"当前状况和挑战如何相互作用？",
				"过去和潜意识如何影响现在？",
				"你的态度和外界影响如何塑造结果？",
				"希望和恐惧如何影响最终结果？",
			},
		},
		domain.SpreadRelation:     relationFramework,
		domain.SpreadRelationship: relationFramework,
		domain.SpreadCareer: {
			name:    "职业道路",
			summary: "这个牌阵专注于职业发展的各个方面。",
			questions: []string{
				"你的职业优势如何帮助克服挑战？",
				"当前有什么机会可以把握？",
				"如何利用优势实现未来发展？",
			},
		},
	}

	relationFramework = spreadFramework{
		name:    "关系牌阵",
		summary: "这个牌阵深入分析关系的动态。",
		questions: []string{
			"你和对方的状态如何影响关系？",
			"当前的挑战是什么？",
			"关系有什么潜力？",
			"如何改善和发展这段关系？",
		},
	}
)

// ContextSummary frames a reading by the question's life area and the
// spread's reading method.
type ContextSummary struct {
	Context      Context  `json:"context"`
	Name         string   `json:"name"`
	Framework    string   `json:"framework"`
	Summary      string   `json:"summary"`
	KeyQuestions []string `json:"key_questions,omitempty"`
	Focus        []string `json:"focus"`
}

// Contextualize builds the summary for a context and spread. Spreads without
// a dedicated framework are read as a single core message.
func Contextualize(ctx Context, spreadID string) ContextSummary {
	fw, ok := frameworks[spreadID]
	if !ok {
		fw = singleFramework
	}
	return ContextSummary{
		Context:      ctx,
		Name:         ctx.Name(),
		Framework:    fw.name,
		Summary:      fw.summary,
		KeyQuestions: fw.questions,
		Focus:        ctx.Focus(),
	}
}

// Text renders the summary the way it is shown to the reader.
func (s ContextSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "【%s情境解读】\n\n牌阵：%s\n\n%s\n\n", s.Name, s.Framework, s.Summary)
	if len(s.KeyQuestions) > 0 {
		b.WriteString("关键问题：\n")
		for i, q := range s.KeyQuestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "在%s方面，重点关注：\n", s.Name)
	for _, f := range s.Focus {
		fmt.Fprintf(&b, "• %s\n", f)
	}
	return b.String()
}
