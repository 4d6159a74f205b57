package analysis

import "strings"

// Context is the life area a question is about.
type Context string

const (
	ContextLove      Context = "love"
	ContextCareer    Context = "career"
	ContextFinance   Context = "finance"
	ContextHealth    Context = "health"
	ContextSpiritual Context = "spiritual"
	ContextPersonal  Context = "personal"
	ContextFamily    Context = "family"
	ContextGeneral   Context = "general"
)

type contextKeywords struct {
	context  Context
	name     string
	keywords []string
	focus    []string
}

// Checked in order; the first keyword hit wins.
var contexts = []contextKeywords{
	{ContextLove, "爱情", []string{"爱情", "恋爱", "感情", "关系", "伴侣", "婚姻", "约会", "分手", "复合"}, []string{"情感连接", "沟通", "信任", "承诺", "亲密关系"}},
	{ContextCareer, "事业", []string{"工作", "事业", "职业", "升职", "跳槽", "面试", "项目", "同事", "老板"}, []string{"职业发展", "技能", "机会", "挑战", "团队合作"}},
	{ContextFinance, "财富", []string{"金钱", "财富", "财务", "投资", "理财", "收入", "支出", "债务", "储蓄"}, []string{"财务状况", "投资机会", "收入来源", "支出管理", "长期规划"}},
	{ContextHealth, "健康", []string{"健康", "身体", "疾病", "治疗", "康复", "养生", "锻炼", "饮食"}, []string{"身体状况", "心理健康", "生活方式", "疗愈", "预防"}},
	{ContextSpiritual, "灵性", []string{"灵性", "成长", "修行", "冥想", "觉醒", "意义", "目的", "使命"}, []string{"灵性成长", "内在探索", "人生意义", "觉醒", "转化"}},
	{ContextPersonal, "个人成长", []string{"成长", "学习", "自我", "改变", "习惯", "性格", "潜力"}, []string{"自我认知", "个人发展", "习惯养成", "潜能开发", "性格完善"}},
	{ContextFamily, "家庭", []string{"家庭", "父母", "孩子", "亲子", "家人", "亲情", "家族"}, []string{"家庭关系", "亲子互动", "家庭和谐", "代际沟通", "家族传承"}},
	{ContextGeneral, "综合", []string{"整体", "综合", "全面", "未来", "运势"}, []string{"整体趋势", "主要挑战", "机会", "建议", "未来发展"}},
}

// DetectContext classifies a question by keyword. An empty or unmatched
// question is general.
func DetectContext(question string) Context {
	q := strings.ToLower(question)
	if q == "" {
		return ContextGeneral
	}
	for _, c := range contexts {
		for _, kw := range c.keywords {
			if strings.Contains(q, kw) {
				return c.context
			}
		}
	}
	return ContextGeneral
}

// Name returns the display name of the context.
func (c Context) Name() string {
	for _, ck := range contexts {
		if ck.context == c {
			return ck.name
		}
	}
	return "综合"
}

// Focus lists what a reading in this context should pay attention to.
func (c Context) Focus() []string {
	for _, ck := range contexts {
		if ck.context == c {
			return ck.focus
		}
	}
	return contexts[len(contexts)-1].focus
}
