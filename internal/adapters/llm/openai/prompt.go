package openai

import (
	"fmt"
	"strings"

	"github.com/futalk/Tarot-Reading/internal/ports"
)

const systemPrompt = `你是一位经验丰富、备受尊敬的塔罗牌占卜师，拥有20年以上的实践经验。

【你的专业特点】
- 深谙塔罗牌的象征意义、历史渊源和心理学内涵
- 擅长将神秘学智慧与现代心理学相结合
- 能够提供既有深度又实用的解读
- 语言温暖、专业，富有同理心

【解读原则】
1. 准确性：严格基于传统塔罗牌义，不编造或夸大
2. 深度性：挖掘牌面背后的深层象征和心理意义
3. 实用性：提供具体、可操作的建议，而非空泛的鸡汤
4. 平衡性：既指出机遇也提醒挑战，保持客观
5. 尊重性：尊重求问者的自由意志，强调选择权在自己手中

【输出要求】
1. 结构清晰：使用明确的章节标题（用###标记）
2. 语言风格：温暖、专业、易懂，避免过于玄学或晦涩
3. 长度适中：每个部分详细但不冗长，总字数800-1200字
4. 格式规范：使用Markdown格式，便于阅读
5. 避免重复：不要重复用户已知的基础牌义

【禁止事项】
❌ 不要做出绝对化的预言（如"一定会"、"必然"等）
❌ 不要涉及医疗、法律等专业建议
❌ 不要使用过于消极或恐吓性的语言
❌ 不要偏离塔罗牌的传统含义
❌ 不要添加无关的个人观点或哲学说教

【语气示例】
✅ 好："这张牌提示你可能需要..."
✅ 好："从塔罗的角度来看，这暗示着..."
✅ 好："建议你考虑..."
❌ 差："你一定会..."
❌ 差："命运注定..."
❌ 差："你必须..."

记住：你的目标是帮助求问者获得洞察和启发，而非替他们做决定。`

// sections are the parts the completion is asked to produce, in order.
var sections = []struct {
	title string
	items []string
}{
	{"### 1. 整体解读（200-300字）", []string{
		"分析这次占卜的核心主题和能量走向",
		"从宏观角度把握整体局势",
		"点明关键的转折点或重要信息",
	}},
	{"### 2. 逐牌解析（每张牌100-150字）", []string{
		"详细解读每张牌在当前位置的深层含义",
		"结合正逆位说明具体的象征意义",
		"联系求问者的问题（如有）进行针对性分析",
	}},
	{"### 3. 牌组互动（150-200字）", []string{
		"分析牌与牌之间的关联和相互影响",
		"指出牌组中的模式、对比或呼应",
		"说明整体牌组传递的完整信息",
	}},
	{"### 4. 实用建议（3-5条）", []string{
		"提供具体、可操作的行动建议",
		"每条建议要明确、实际，避免空泛",
		"建议应该基于牌面信息，而非泛泛而谈",
	}},
	{"### 5. 注意事项（2-3条）", []string{
		"指出需要警惕的潜在问题或挑战",
		"提醒可能的陷阱或误区",
		"保持客观，不要过度消极",
	}},
}

var reminders = []string{
	"请使用Markdown格式，便于阅读",
	"语言要温暖、专业、易懂",
	"总字数控制在800-1200字",
	"避免绝对化表述，强调选择权在求问者手中",
	"如果求问者提供了具体问题，请紧密围绕问题展开解读",
}

func orientationLabel(o string) string {
	if o == "reversed" {
		return "逆位"
	}
	return "正位"
}

func buildUserPrompt(in ports.InterpretInput) string {
	var b strings.Builder
	b.WriteString("请为以下塔罗牌占卜提供专业、深入的解读。\n\n")

	if q := strings.TrimSpace(in.Question); q != "" {
		fmt.Fprintf(&b, "## 求问者的问题\n%s\n\n", in.Question)
	} else {
		b.WriteString("## 占卜类型\n通用占卜（求问者未指定具体问题）\n\n")
	}

	name := in.SpreadName
	if name == "" {
		name = in.Spread
	}
	fmt.Fprintf(&b, "## 使用的牌阵\n%s\n（共%d张牌）\n\n", name, len(in.Cards))

	b.WriteString("## 抽到的塔罗牌\n")
	for i, card := range in.Cards {
		position := card.Position
		if position == "" {
			position = fmt.Sprintf("位置%d", i+1)
		}
		fmt.Fprintf(&b, "**%s**：%s（%s）\n", position, card.Name, orientationLabel(card.Orientation))
	}

	b.WriteString("\n## 请按以下结构提供解读\n\n")
	for _, s := range sections {
		b.WriteString(s.title + "\n")
		for _, item := range s.items {
			b.WriteString("- " + item + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n**重要提醒**：\n")
	for _, r := range reminders {
		b.WriteString("- " + r + "\n")
	}
	return b.String()
}
