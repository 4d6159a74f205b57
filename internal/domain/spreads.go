package domain

import (
	"sort"
	"strconv"
)

// Built-in spread identifiers.
const (
	SpreadRandom       = "random"
	SpreadLove         = "love"
	SpreadCareer       = "career"
	SpreadFuture       = "future"
	SpreadWealth       = "wealth"
	SpreadHealth       = "health"
	SpreadRelationship = "relationship"
	SpreadTriangle     = "triangle"
	SpreadElements     = "elements"
	SpreadRelation     = "relation"
	SpreadCeltic       = "celtic"
	SpreadTree         = "tree"
	SpreadCustom       = "custom"
)

const customTitle = "自定义牌阵"

// MaxSpreadSize bounds every spread, custom ones included.
const MaxSpreadSize = 10

// Position is one slot of a spread. An empty Aspect means the aspect is
// chosen at random when the card is drawn.
type Position struct {
	Name   string `json:"name"`
	Aspect Aspect `json:"aspect,omitempty"`
}

// Spread is a named layout of positions.
type Spread struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Positions []Position `json:"positions"`
}

// Size returns the number of cards the spread draws.
func (s Spread) Size() int { return len(s.Positions) }

func pos(name string, a Aspect) Position { return Position{Name: name, Aspect: a} }

var builtinSpreads = []Spread{
	{ID: SpreadRandom, Title: "每日指引（单张牌）", Positions: []Position{pos("今日指引", "")}},
	{ID: SpreadLove, Title: "爱情运势", Positions: []Position{
		pos("爱情运势", AspectLove), pos("事业影响", AspectCareer), pos("未来发展", AspectFuture),
	}},
	{ID: SpreadCareer, Title: "事业发展", Positions: []Position{
		pos("事业运势", AspectCareer), pos("感情影响", AspectLove), pos("未来发展", AspectFuture),
	}},
	{ID: SpreadFuture, Title: "未来展望", Positions: []Position{
		pos("即将发生", AspectFuture), pos("爱情方面", AspectLove), pos("事业方面", AspectCareer),
	}},
	{ID: SpreadWealth, Title: "财富运势", Positions: []Position{
		pos("财运状况", AspectWealth), pos("事业影响", AspectCareer), pos("未来趋势", AspectFuture),
	}},
	{ID: SpreadHealth, Title: "健康能量", Positions: []Position{
		pos("健康状况", AspectHealth), pos("情绪影响", AspectLove), pos("未来建议", AspectFuture),
	}},
	{ID: SpreadRelationship, Title: "人际关系", Positions: []Position{
		pos("人际运势", AspectRelationship), pos("工作关系", AspectCareer), pos("未来发展", AspectFuture),
	}},
	{ID: SpreadTriangle, Title: "时光三角（过去-现在-未来）", Positions: []Position{
		pos("过去", AspectFuture), pos("现在", AspectFuture), pos("未来", AspectFuture),
	}},
	{ID: SpreadElements, Title: "四元素", Positions: []Position{
		pos("火·行动", AspectCareer), pos("水·情感", AspectLove), pos("风·思想", AspectFuture), pos("土·物质", AspectWealth),
	}},
	{ID: SpreadRelation, Title: "关系透视", Positions: []Position{
		pos("你的状态", AspectLove), pos("对方的状态", AspectLove), pos("关系走向", AspectRelationship),
	}},
	{ID: SpreadCeltic, Title: "凯尔特十字", Positions: []Position{
		pos("现状 - 当前处境", AspectFuture),
		pos("挑战 - 面临的障碍", AspectCareer),
		pos("根源 - 问题的起因", AspectLove),
		pos("过去 - 已经发生的", AspectFuture),
		pos("可能 - 最好的结果", AspectFuture),
		pos("未来 - 即将发生的", AspectFuture),
		pos("态度 - 你的立场", AspectRelationship),
		pos("环境 - 外部影响", AspectCareer),
		pos("希望/恐惧 - 内心期待与担忧", AspectLove),
		pos("结果 - 最终走向", AspectFuture),
	}},
	{ID: SpreadTree, Title: "生命之树", Positions: []Position{
		pos("王冠 - 最高目标", AspectFuture),
		pos("智慧 - 创造动力", AspectCareer),
		pos("理解 - 内在结构", AspectFuture),
		pos("慈悲 - 给予与接纳", AspectLove),
		pos("严厉 - 需要的纪律", AspectHealth),
		pos("美 - 内心核心", AspectRelationship),
		pos("胜利 - 情感驱力", AspectCareer),
		pos("荣耀 - 理性思考", AspectWealth),
		pos("根基 - 潜意识", AspectHealth),
		pos("王国 - 现实结果", AspectFuture),
	}},
}

// CustomSpread builds an n-position custom spread. Every position uses the
// future aspect.
func CustomSpread(n int) (Spread, error) {
	if n < 1 || n > MaxSpreadSize {
		return Spread{}, ErrInvalidN
	}
	positions := make([]Position, n)
	for i := range positions {
		positions[i] = Position{Name: "位置" + strconv.Itoa(i+1), Aspect: AspectFuture}
	}
	return Spread{ID: SpreadCustom, Title: customTitle, Positions: positions}, nil
}

// SpreadCatalog is an immutable registry of spreads keyed by id.
type SpreadCatalog struct {
	byID map[string]Spread
}

// NewSpreadCatalog returns the built-in spreads plus extra ones. Extra
// spreads replace built-ins with the same id.
func NewSpreadCatalog(extra ...Spread) *SpreadCatalog {
	c := &SpreadCatalog{byID: make(map[string]Spread, len(builtinSpreads)+len(extra))}
	for _, s := range builtinSpreads {
		c.byID[s.ID] = s
	}
	for _, s := range extra {
		c.byID[s.ID] = s
	}
	return c
}

// Lookup returns the spread with the given id.
func (c *SpreadCatalog) Lookup(id string) (Spread, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Title returns the display title for id, or id itself when unknown.
func (c *SpreadCatalog) Title(id string) string {
	if s, ok := c.byID[id]; ok {
		return s.Title
	}
	if id == SpreadCustom {
		return customTitle
	}
	return id
}

// List returns every spread sorted by id.
func (c *SpreadCatalog) List() []Spread {
	out := make([]Spread, 0, len(c.byID))
	for _, s := range c.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
