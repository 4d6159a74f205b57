package analysis

import (
	"slices"
	"strings"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

// Combination is a rule from the static combination table. Cards lists the
// rule's members in table order.
type Combination struct {
	Cards   []string `json:"cards"`
	Theme   string   `json:"theme"`
	Meaning string   `json:"meaning"`
	Advice  string   `json:"advice"`
}

// combinationKey canonicalizes an unordered name set.
func combinationKey(names ...string) string {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	return strings.Join(sorted, "|")
}

var combinationRules = []Combination{
	// Major arcana pairs.
	{Cards: []string{"愚者", "魔术师"}, Theme: "从天真到掌握",
		Meaning: "从纯真的开始到掌握技能，这是一个快速学习和成长的过程。你的天真和好奇心会转化为实际的能力。",
		Advice:  "保持好奇，同时把灵感落实为具体的技能练习。"},
	{Cards: []string{"愚者", "恋人"}, Theme: "冒险中的爱",
		Meaning: "一段充满冒险的新恋情，或是在爱情中重新找回自我。这段关系会让你重新认识什么是真正的爱。",
		Advice:  "敞开心扉，但在承诺之前认清自己真正想要的。"},
	{Cards: []string{"愚者", "世界"}, Theme: "完整的旅程",
		Meaning: "从开始到完成的完整旅程。一个周期的终点正是下一个周期的起点。",
		Advice:  "回顾一路走来的收获，然后轻装踏上新的旅程。"},
	{Cards: []string{"死神", "太阳"}, Theme: "重生的光明",
		Meaning: "经历深刻的转变后，迎来光明和成功。黑暗已过，新生的喜悦即将到来。",
		Advice:  "放下已经结束的事物，迎接正在到来的好运。"},
	{Cards: []string{"死神", "审判"}, Theme: "觉醒与重生",
		Meaning: "彻底的结束带来觉醒和重生。这是一个深刻的灵性转化过程，你将以全新的自己重新开始。",
		Advice:  "诚实面对过去，宽恕自己，允许新的身份诞生。"},
	{Cards: []string{"高塔", "星星"}, Theme: "崩塌后的希望",
		Meaning: "突然的崩塌后，希望之光出现。虽然经历了震撼，但这为真正的疗愈和重建铺平了道路。",
		Advice:  "不要急于重建旧的结构，先让自己休息和疗愈。"},
	{Cards: []string{"月亮", "太阳"}, Theme: "拨云见日",
		Meaning: "从迷雾和不确定中走向清晰和光明。真相即将揭示，困惑将被解答。",
		Advice:  "耐心等待真相浮现，不要在迷雾中仓促决定。"},
	{Cards: []string{"恶魔", "恋人"}, Theme: "诱惑与真爱",
		Meaning: "在诱惑和真爱之间的选择。需要警惕不健康的依赖，寻找真正基于自由和尊重的关系。",
		Advice:  "分辨依恋与爱，选择让你感到自由的那一方。"},
	{Cards: []string{"力量", "战车"}, Theme: "刚柔并济",
		Meaning: "内在力量与外在行动的完美结合。温柔的坚持加上果断的行动，将带来胜利。",
		Advice:  "以耐心稳住内心，再以决心推动事情前进。"},
	{Cards: []string{"隐士", "星星"}, Theme: "独处中的指引",
		Meaning: "在独处和内省中找到希望和方向。孤独的探索会带来深刻的洞见和疗愈。",
		Advice:  "给自己留出安静的时间，答案会在沉静中出现。"},
	{Cards: []string{"正义", "审判"}, Theme: "因果清算",
		Meaning: "因果循环的完整显现。过去的行为得到公正的评判，这是清算和重新开始的时刻。",
		Advice:  "承担应负的责任，然后放下，重新出发。"},
	{Cards: []string{"皇后", "皇帝"}, Theme: "滋养与结构",
		Meaning: "滋养与结构的结合。感性的包容与理性的秩序互相成就，带来稳固的发展。",
		Advice:  "在关怀与规则之间找到平衡，两者缺一不可。"},
	{Cards: []string{"魔术师", "女祭司"}, Theme: "行动与直觉",
		Meaning: "行动与直觉的平衡。外在的创造力需要内在的智慧来引导。",
		Advice:  "行动之前先倾听直觉，让两者同步。"},
	{Cards: []string{"太阳", "星星"}, Theme: "希望成真",
		Meaning: "希望正在转化为现实，长期的信念终于迎来回报。",
		Advice:  "继续保持乐观，同时大方地分享你的喜悦。"},
	{Cards: []string{"魔术师", "世界"}, Theme: "圆满成就",
		Meaning: "你拥有实现目标所需的一切资源，努力将迎来圆满的成果。",
		Advice:  "充分运用手中的资源，把计划推进到完成。"},
	{Cards: []string{"命运之轮", "世界"}, Theme: "周期的完成",
		Meaning: "命运的转动将你带到一个重要周期的终点，成果与新的机遇同时出现。",
		Advice:  "顺势而为，抓住周期转换时出现的机会。"},
	{Cards: []string{"女祭司", "月亮"}, Theme: "直觉深化",
		Meaning: "潜意识正在发出强烈的信号，梦境与直觉中藏着重要的信息。",
		Advice:  "记录梦境与直觉，但在行动前与现实核对。"},
	{Cards: []string{"教皇", "恋人"}, Theme: "承诺与结合",
		Meaning: "关系正走向正式的承诺，可能涉及婚姻或得到传统的认可。",
		Advice:  "坦诚讨论彼此的价值观，为长期承诺打好基础。"},
	{Cards: []string{"倒吊人", "死神"}, Theme: "臣服与转化",
		Meaning: "放下控制、接受暂停之后，旧的阶段自然结束，转化随之而来。",
		Advice:  "不要强求结果，允许事情按自己的节奏结束。"},
	{Cards: []string{"高塔", "死神"}, Theme: "彻底重建",
		Meaning: "旧的结构正在彻底瓦解，这是一次无法回避的根本性改变。",
		Advice:  "接受改变的不可逆，把精力放在重建上。"},
	{Cards: []string{"节制", "星星"}, Theme: "疗愈与平衡",
		Meaning: "身心正在逐步恢复平衡，希望与耐心共同带来疗愈。",
		Advice:  "保持规律的节奏，让疗愈自然发生。"},
	{Cards: []string{"恶魔", "宝剑八"}, Theme: "自我束缚",
		Meaning: "限制你的枷锁大多来自自己的信念，出口其实一直存在。",
		Advice:  "写下困住你的想法，逐一检验它们是否真实。"},
	{Cards: []string{"月亮", "宝剑九"}, Theme: "焦虑的迷雾",
		Meaning: "恐惧被想象放大，焦虑让你看不清真实的处境。",
		Advice:  "与信任的人谈谈你的担忧，让事实取代想象。"},

	// Pairs involving the minor arcana.
	{Cards: []string{"恋人", "圣杯二"}, Theme: "灵魂伴侣",
		Meaning: "深刻的情感连接与相互吸引，一段真诚平等的关系正在形成。",
		Advice:  "珍惜这份连接，用真诚的沟通让它更加稳固。"},
	{Cards: []string{"圣杯二", "圣杯十"}, Theme: "美满关系",
		Meaning: "从两个人的相互吸引发展为家庭般的幸福与圆满。",
		Advice:  "把对彼此的承诺转化为共同的生活计划。"},
	{Cards: []string{"恋人", "圣杯十"}, Theme: "幸福家庭",
		Meaning: "爱情与家庭的和谐圆满，情感生活迎来稳定的幸福。",
		Advice:  "用心经营日常的相处，幸福来自细节。"},
	{Cards: []string{"皇帝", "星币十"}, Theme: "稳固的财富",
		Meaning: "稳健的规划与长期积累带来持久的物质保障。",
		Advice:  "坚持长期计划，避免为短期诱惑改变方向。"},
	{Cards: []string{"宝剑三", "圣杯五"}, Theme: "心碎与失落",
		Meaning: "情感上的伤痛与失落需要被正视，这是疗愈的开始。",
		Advice:  "允许自己悲伤，同时留意身边仍然存在的支持。"},
	{Cards: []string{"权杖王牌", "魔术师"}, Theme: "创造力爆发",
		Meaning: "新的灵感与行动力同时出现，是启动新项目的最佳时机。",
		Advice:  "立刻把想法写成计划，并迈出第一步。"},
	{Cards: []string{"圣杯王牌", "恋人"}, Theme: "新恋情",
		Meaning: "新的情感正在萌芽，心门打开迎接一段真挚的关系。",
		Advice:  "以开放的心接受爱，也要诚实表达自己。"},
	{Cards: []string{"星币王牌", "命运之轮"}, Theme: "财富机遇",
		Meaning: "一个实际的财务机会随着时运转动而出现。",
		Advice:  "认真评估机会，及时而稳妥地把握。"},
	{Cards: []string{"宝剑王牌", "正义"}, Theme: "真相与公正",
		Meaning: "清晰的洞察带来公正的判断，真相将帮助你做出正确决定。",
		Advice:  "以事实为依据，坚持公平的立场。"},
	{Cards: []string{"战车", "权杖六"}, Theme: "凯旋",
		Meaning: "坚定的推进带来公开的胜利与认可。",
		Advice:  "乘胜前进，同时记得感谢一路支持你的人。"},
	{Cards: []string{"魔术师", "星币八"}, Theme: "技艺精进",
		Meaning: "专注的练习让才华转化为扎实的专业能力。",
		Advice:  "持续投入时间打磨技能，成果会随之而来。"},

	// Triples.
	{Cards: []string{"愚者", "魔术师", "世界"}, Theme: "英雄之旅",
		Meaning: "从懵懂出发，获得能力，最终抵达圆满。你正在走完一段完整的成长旅程。",
		Advice:  "相信这段旅程的每一步都有意义，坚持走到终点。"},
	{Cards: []string{"太阳", "月亮", "星星"}, Theme: "天体指引",
		Meaning: "希望、迷惘与光明同时出现，你正被更大的力量引导着穿越不确定。",
		Advice:  "跟随星星的希望穿过月亮的迷雾，太阳终会升起。"},
	{Cards: []string{"恋人", "圣杯二", "圣杯十"}, Theme: "圆满爱情",
		Meaning: "从相遇、相知到组成家庭，爱情的每个阶段都得到了祝福。",
		Advice:  "珍惜眼前人，把爱落实到长久的承诺中。"},
	{Cards: []string{"死神", "高塔", "审判"}, Theme: "彻底蜕变",
		Meaning: "结束、崩塌与觉醒接连发生，这是一次深刻而完整的生命转化。",
		Advice:  "不要抗拒改变，让旧的自己退场，新的自己才能登场。"},
	{Cards: []string{"皇后", "皇帝", "教皇"}, Theme: "传统与秩序",
		Meaning: "家庭、权威与传统的力量同时作用，稳定的结构正在支撑你。",
		Advice:  "尊重既有的规则，同时找到属于自己的位置。"},
}

var combinationTable = buildCombinationTable(combinationRules)

func buildCombinationTable(rules []Combination) map[string]Combination {
	m := make(map[string]Combination, len(rules))
	for _, r := range rules {
		m[combinationKey(r.Cards...)] = r
	}
	return m
}

// LookupCombination matches names against the table as an unordered set.
func LookupCombination(names ...string) (Combination, bool) {
	c, ok := combinationTable[combinationKey(names...)]
	return c, ok
}

// Hit is a matched combination together with the drawn positions (0-based)
// of its members.
type Hit struct {
	Combination
	Indexes []int `json:"indexes"`
}

// FindCombinations checks every 2-subset and, with three or more cards,
// every 3-subset of cards against the table. A single card yields nothing.
func FindCombinations(cards []domain.DrawnCard) []Hit {
	var hits []Hit
	n := len(cards)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			if c, ok := LookupCombination(cards[i].Name, cards[j].Name); ok {
				hits = append(hits, Hit{Combination: c, Indexes: []int{i, j}})
			}
		}
	}
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				if c, ok := LookupCombination(cards[i].Name, cards[j].Name, cards[k].Name); ok {
					hits = append(hits, Hit{Combination: c, Indexes: []int{i, j, k}})
				}
			}
		}
	}
	return hits
}
