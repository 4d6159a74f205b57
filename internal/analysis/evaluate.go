package analysis

import "github.com/futalk/Tarot-Reading/internal/domain"

// Result is the full evaluation of one reading.
type Result struct {
	Context      Context        `json:"context"`
	ContextName  string         `json:"context_name"`
	Contextual   ContextSummary `json:"contextual"`
	Patterns     Patterns       `json:"patterns"`
	Elements     []ElementCount `json:"elements"`
	Combinations []Hit          `json:"combinations"`
	Insights     []Insight      `json:"insights"`
	Story        Story          `json:"story"`
}

// Evaluate runs pattern detection, combination lookup and story assembly
// over cards. It returns domain.ErrMissingCards for an empty reading.
func Evaluate(spreadID, question string, cards []domain.DrawnCard) (Result, error) {
	if len(cards) == 0 {
		return Result{}, domain.ErrMissingCards
	}
	ctx := DetectContext(question)
	p := DetectPatterns(cards)
	hits := FindCombinations(cards)
	elements := ElementDistribution(cards)
	return Result{
		Context:      ctx,
		ContextName:  ctx.Name(),
		Contextual:   Contextualize(ctx, spreadID),
		Patterns:     p,
		Elements:     elements,
		Combinations: hits,
		Insights:     Insights(cards, elements, p, hits),
		Story:        WeaveStory(cards, spreadID, p, hits),
	}, nil
}
