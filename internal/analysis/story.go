package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

// RelationKind labels a development entry.
type RelationKind string

const (
	KindCombination RelationKind = "combination"
	KindSequence    RelationKind = "sequence"
	KindBalance     RelationKind = "balance"
	KindTimeline    RelationKind = "timeline"
	KindCelticCross RelationKind = "celtic_cross"
)

// Relationship is one line of the development section. Cards are listed in
// drawn order.
type Relationship struct {
	Kind    RelationKind `json:"type"`
	Cards   []string     `json:"cards"`
	Theme   string       `json:"theme,omitempty"`
	Message string       `json:"message"`
	Advice  string       `json:"advice,omitempty"`
}

// Priority orders action steps.
type Priority string

const (
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLongTerm Priority = "long-term"
)

type ActionStep struct {
	Priority Priority `json:"priority"`
	Action   string   `json:"action"`
}

// Story is the assembled narrative, in reading order.
type Story struct {
	Opening     string         `json:"opening"`
	Development []Relationship `json:"development"`
	Climax      string         `json:"climax"`
	Resolution  string         `json:"resolution"`
	DeepInsight string         `json:"deep_insight"`
	ActionSteps []ActionStep   `json:"action_steps"`
}

// WeaveStory assembles the narrative for cards drawn in spreadID. hits are
// the combination matches for the same cards. cards must not be empty.
func WeaveStory(cards []domain.DrawnCard, spreadID string, p Patterns, hits []Hit) Story {
	return Story{
		Opening:     opening(p),
		Development: development(cards, spreadID, hits),
		Climax:      climax(cards),
		Resolution:  resolution(cards[len(cards)-1]),
		DeepInsight: deepInsight(cards, p),
		ActionSteps: actionSteps(cards, p),
	}
}

var suitOpenings = map[domain.Suit]string{
	domain.SuitWands:     "行动、激情和创造力是当前的主题。你需要勇敢地追求目标，展现你的热情和决心。",
	domain.SuitCups:      "情感、关系和内在感受占据中心位置。这是一个需要倾听内心、重视情感连接的时期。",
	domain.SuitSwords:    "思考、沟通和真相是核心议题。你需要理性分析，清晰表达，勇敢面对真相。",
	domain.SuitPentacles: "物质、实际和稳定是关键所在。专注于具体事务，脚踏实地地建设你的未来。",
}

func opening(p Patterns) string {
	var b strings.Builder

	switch ratio := p.MajorRatio(); {
	case ratio > 0.6:
		b.WriteString("这次占卜显示出强烈的命运力量在运作。你正处于人生的重要转折点，许多事情超出个人控制，但这正是灵魂成长的关键时刻。")
	case ratio > 0.3:
		b.WriteString("你的生活正在经历重要的变化，既有命运的安排，也有个人选择的空间。这是一个需要平衡外在环境和内在意志的时期。")
	default:
		b.WriteString("这次占卜聚焦于日常生活的具体事务。你拥有很大的主动权，通过实际行动可以改变现状。")
	}

	if suit, count := p.DominantSuit(); count >= 3 {
		b.WriteString(" ")
		b.WriteString(suitOpenings[suit])
	}

	e := p.Energy
	switch {
	case float64(e.Positive) > float64(e.Negative)*1.5:
		b.WriteString(" 整体能量积极向上，前景光明。")
	case float64(e.Negative) > float64(e.Positive)*1.5:
		b.WriteString(" 当前面临一些挑战，但这些都是成长的机会。")
	default:
		b.WriteString(" 能量处于平衡状态，需要你做出明智的选择。")
	}
	return b.String()
}

// opposites drives the balance narration for adjacent cards that no
// combination rule covers.
var opposites = map[string]string{
	combinationKey("愚者", "世界"):   "从开始到完成的完整旅程",
	combinationKey("魔术师", "女祭司"): "行动与直觉的平衡",
	combinationKey("皇后", "皇帝"):   "滋养与结构的结合",
	combinationKey("恶魔", "恋人"):   "束缚与自由的对比",
	combinationKey("高塔", "星星"):   "破坏与希望的转换",

	// The pairs above all have combination rules, so these keep the
	// balance path reachable.
	combinationKey("恋人", "隐士"):  "亲密与独处的拉扯",
	combinationKey("战车", "倒吊人"): "前进与暂停的张力",
	combinationKey("皇帝", "愚者"):  "秩序与自由的碰撞",
	combinationKey("力量", "恶魔"):  "自控与放纵的较量",
	combinationKey("节制", "高塔"):  "平衡与剧变的对照",
}

func development(cards []domain.DrawnCard, spreadID string, hits []Hit) []Relationship {
	var out []Relationship
	covered := make(map[string]bool, len(hits))

	for _, h := range hits {
		names := make([]string, len(h.Indexes))
		for i, idx := range h.Indexes {
			names[i] = cards[idx].Name
		}
		covered[combinationKey(names...)] = true
		out = append(out, Relationship{
			Kind:    KindCombination,
			Cards:   names,
			Theme:   h.Theme,
			Message: h.Meaning,
			Advice:  h.Advice,
		})
	}

	for i := 0; i+1 < len(cards); i++ {
		a, b := cards[i], cards[i+1]
		if covered[combinationKey(a.Name, b.Name)] {
			continue
		}
		if r, ok := adjacentPair(a, b); ok {
			out = append(out, r)
		}
	}

	switch {
	case spreadID == domain.SpreadTriangle && len(cards) == 3:
		out = append(out, timeline(cards))
	case spreadID == domain.SpreadCeltic && len(cards) == 10:
		out = append(out, celticCross(cards))
	}
	return out
}

func adjacentPair(a, b domain.DrawnCard) (Relationship, bool) {
	na, okA := a.Number()
	nb, okB := b.Number()
	if okA && okB && (na-nb == 1 || nb-na == 1) {
		return Relationship{
			Kind:    KindSequence,
			Cards:   []string{a.Name, b.Name},
			Message: fmt.Sprintf("从%s到%s，显示出一个自然的进展过程。事情正在按部就班地发展。", a.Name, b.Name),
		}, true
	}
	if desc, ok := opposites[combinationKey(a.Name, b.Name)]; ok {
		return Relationship{
			Kind:    KindBalance,
			Cards:   []string{a.Name, b.Name},
			Message: fmt.Sprintf("%s和%s形成对比，提醒你需要在两个极端之间找到平衡。%s。", a.Name, b.Name, desc),
		}, true
	}
	return Relationship{}, false
}

func cardNames(cards []domain.DrawnCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name
	}
	return out
}

func timeline(cards []domain.DrawnCard) Relationship {
	past, present, future := EnergyOf(cards[0]), EnergyOf(cards[1]), EnergyOf(cards[2])

	msg := "从过去到未来的能量流动显示："
	switch {
	case past == Negative && present == Neutral && future == Positive:
		msg += "你正在从困难中走出，情况逐步改善。过去的挑战正在转化为未来的力量。"
	case past == Positive && present == Negative:
		msg += "当前面临挑战，但这是暂时的。过去的积累会帮助你度过难关。"
	case future == Negative && present == Positive:
		msg += "需要警惕，当前的顺利可能掩盖了潜在的问题。提前做好准备。"
	default:
		msg += "能量保持相对稳定，你的选择将决定最终走向。"
	}
	return Relationship{Kind: KindTimeline, Cards: cardNames(cards), Message: msg}
}

func celticCross(cards []domain.DrawnCard) Relationship {
	n := cardNames(cards)
	lines := []string{
		fmt.Sprintf("当前的%s面临%s的挑战，这显示出你需要在%s的能量中找到应对%s的方法。", n[0], n[1], n[0], n[1]),
		fmt.Sprintf("问题的根源（%s）与过去的经历（%s）相互关联，理解这个连接是解决当前问题的关键。", n[2], n[3]),
		fmt.Sprintf("最好的可能性（%s）正在引导你走向%s的未来。保持对%s能量的专注。", n[4], n[5], n[4]),
		fmt.Sprintf("你的态度（%s）与外在环境（%s）之间的互动，决定了事情的发展方向。", n[6], n[7]),
		fmt.Sprintf("你内心的希望或恐惧（%s）正在影响最终的结果（%s）。觉察这个影响，你就能改变结局。", n[8], n[9]),
	}
	return Relationship{Kind: KindCelticCross, Cards: n, Message: strings.Join(lines, "\n\n")}
}

var powerfulCards = []string{"死神", "高塔", "审判", "世界", "恶魔", "太阳", "月亮"}

var climaxMessages = map[string]string{
	"死神": "关键的转折点在于彻底的结束和转变。你必须放下过去，才能迎接新生。这不是选择，而是必然的蜕变。",
	"高塔": "突然的崩塌是这次占卜的核心。虽然震撼，但这是清除虚假、回归真实的必经之路。拥抱这个过程。",
	"审判": "觉醒和重生是关键时刻。你正在被召唤去审视过去，宽恕自己和他人，以全新的自己重新开始。",
	"世界": "圆满和完成是核心主题。一个重要的周期即将结束，你已经学到了所需的一切，准备好迎接新的开始。",
	"恶魔": "束缚和觉察是转折点。认清什么在限制你，这个觉察本身就是解脱的开始。",
	"太阳": "光明和成功是高潮。经历了黑暗后，你终于迎来了真正的喜悦和成就。享受这个时刻。",
	"月亮": "面对不确定和恐惧是关键。在迷雾中前行需要勇气，但这个过程会带来深刻的自我认识。",
}

func climax(cards []domain.DrawnCard) string {
	for _, c := range cards {
		if slices.Contains(powerfulCards, c.Name) {
			return climaxMessages[c.Name]
		}
	}
	middle := cards[len(cards)/2]
	return middle.Name + "位于中心位置，代表当前最需要关注的焦点。"
}

var (
	resolutionPositive       = []string{"太阳", "星星", "世界", "圣杯十", "星币十", "权杖六"}
	resolutionChallenging    = []string{"高塔", "宝剑十", "宝剑三", "圣杯五", "恶魔"}
	resolutionTransformative = []string{"死神", "审判", "倒吊人", "隐士"}
)

func resolution(last domain.DrawnCard) string {
	var b strings.Builder
	b.WriteString("最终，")
	b.WriteString(last.Name)
	if last.IsReversed() {
		b.WriteString("（逆位）")
	}
	b.WriteString("指向了")

	reversed := last.IsReversed()
	switch {
	case slices.Contains(resolutionPositive, last.Name) && !reversed:
		b.WriteString("一个积极的结局。你的努力会得到回报，前方充满希望和成功。")
	case slices.Contains(resolutionChallenging, last.Name) && !reversed:
		b.WriteString("一个需要面对的挑战。这不是终点，而是新的开始前的考验。")
	case slices.Contains(resolutionTransformative, last.Name):
		b.WriteString("一个深刻的转化。结局不是简单的好坏，而是你将成为一个全新的自己。")
	case reversed:
		b.WriteString("一个需要调整的方向。结局尚未确定，你的选择将改变最终走向。")
	default:
		b.WriteString("一个开放的可能性。未来掌握在你手中，保持觉察和主动。")
	}
	return b.String()
}

var shadowCards = []string{"恶魔", "月亮", "宝剑九", "宝剑八"}

var numberMeanings = map[int]string{
	1:  "新的开始和独立性",
	2:  "平衡和选择",
	3:  "创造和表达",
	4:  "稳定和结构",
	5:  "变化和挑战",
	6:  "和谐和责任",
	7:  "反思和评估",
	8:  "力量和掌控",
	9:  "完成和智慧",
	10: "循环和圆满",
}

func deepInsight(cards []domain.DrawnCard, p Patterns) string {
	var b strings.Builder
	b.WriteString("**深层洞察：**\n\n")

	if len(p.MajorArcana) >= 2 {
		b.WriteString("这次占卜触及了你的灵魂课题。")
		fmt.Fprintf(&b, "%s的出现表明，你正在经历重要的灵性成长。这些不是偶然的事件，而是你灵魂选择的体验。\n\n",
			strings.Join(p.MajorArcana, "、"))
	}

	if repeated := p.RepeatedNumbers(); len(repeated) > 0 {
		n := repeated[0]
		fmt.Fprintf(&b, "数字%d重复出现%d次，强调了%s的主题。这是你当前生活的核心模式。\n\n",
			n, p.Numbers[n], numberMeanings[n])
	}

	for _, c := range cards {
		if c.IsReversed() && slices.Contains(shadowCards, c.Name) {
			b.WriteString("逆位的阴影牌提醒你，有些内在的恐惧或限制需要被看见和疗愈。不要逃避这些黑暗面，它们是你成长的钥匙。\n\n")
			break
		}
	}

	e := p.Energy
	switch diff := e.Positive - e.Negative; {
	case diff >= -1 && diff <= 1:
		b.WriteString("能量的平衡状态显示，你正处于一个关键的选择点。没有绝对的好坏，只有不同的道路。倾听内心，选择与你灵魂共鸣的方向。")
	case diff > 0:
		b.WriteString("积极的能量占主导，但不要因此而掉以轻心。真正的成长来自于在顺境中保持谦逊和觉察。")
	default:
		b.WriteString("挑战性的能量占主导，但请记住：最深刻的智慧往往诞生于最黑暗的时刻。这些困难是你灵魂选择的成长机会。")
	}
	return b.String()
}

var immediateActions = map[string]string{
	"愚者":   "勇敢迈出第一步，不要被恐惧阻止",
	"魔术师":  "运用你已有的资源和技能，开始创造",
	"女祭司":  "静下来倾听内在的声音，相信你的直觉",
	"皇后":   "滋养自己和他人，创造美好的环境",
	"皇帝":   "建立清晰的结构和计划，掌控局面",
	"教皇":   "寻求智慧的指引，学习传统的智慧",
	"恋人":   "做出重要的选择，跟随你的心",
	"战车":   "全力以赴，克服障碍前进",
	"力量":   "以温柔和耐心对待挑战",
	"隐士":   "给自己独处的时间，深入反思",
	"命运之轮": "顺应变化，抓住机遇",
	"正义":   "做正确的事，承担责任",
	"倒吊人":  "换个角度看问题，暂时放慢脚步",
	"死神":   "放下必须结束的事物，拥抱转变",
	"节制":   "寻找平衡，避免极端",
	"恶魔":   "觉察你的束缚，开始解脱的过程",
	"高塔":   "接受必要的改变，不要抗拒",
	"星星":   "保持希望，相信美好的未来",
	"月亮":   "面对你的恐惧，探索潜意识",
	"太阳":   "享受当下的喜悦，分享你的光芒",
	"审判":   "反思过去，宽恕并重新开始",
	"世界":   "庆祝你的成就，准备新的旅程",
}

func immediateAction(c domain.DrawnCard) string {
	action, ok := immediateActions[c.Name]
	if !ok {
		return "跟随这张牌的能量，采取相应的行动"
	}
	if c.IsReversed() {
		return action + "，同时留意逆位提示的阻力"
	}
	return action
}

var suitActions = []struct {
	suit     domain.Suit
	priority Priority
	action   string
}{
	{domain.SuitCups, PriorityMedium, "情感照顾：花时间处理你的情感，写日记、冥想或与信任的人交流。"},
	{domain.SuitSwords, PriorityMedium, "清晰思考：列出你需要做的决定，理性分析每个选项的利弊。"},
	{domain.SuitWands, PriorityHigh, "积极行动：不要再等待，现在就开始采取具体步骤。"},
	{domain.SuitPentacles, PriorityMedium, "实际规划：制定具体的计划和时间表，脚踏实地地执行。"},
}

func actionSteps(cards []domain.DrawnCard, p Patterns) []ActionStep {
	first := cards[0]
	steps := []ActionStep{{
		Priority: PriorityHigh,
		Action:   fmt.Sprintf("立即行动：基于%s的能量，%s", first.Name, immediateAction(first)),
	}}

	if len(cards) >= 3 {
		middle := cards[len(cards)/2]
		steps = append(steps, ActionStep{
			Priority: PriorityMedium,
			Action:   fmt.Sprintf("持续关注：%s提醒你将它所代表的能量融入日常生活中", middle.Name),
		})
	}

	// A single card has no first-to-last arc.
	if len(cards) >= 2 {
		last := cards[len(cards)-1]
		steps = append(steps, ActionStep{
			Priority: PriorityLongTerm,
			Action:   fmt.Sprintf("长期目标：朝着%s所指引的方向努力，这是你的最终目标", last.Name),
		})
	}

	for _, sa := range suitActions {
		if p.Suits[sa.suit] >= 3 {
			steps = append(steps, ActionStep{Priority: sa.priority, Action: sa.action})
		}
	}
	return steps
}
