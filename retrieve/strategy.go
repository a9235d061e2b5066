package retrieve

import "github.com/poiesic/recallit/classify"

// Strategy names the retrieval approach selected for a query.
type Strategy string

const (
	// StrategySkip bypasses retrieval entirely. Selected for greetings and
	// unsafe queries.
	StrategySkip Strategy = "skip"

	// StrategyComprehensive casts a wide net for complex queries.
	StrategyComprehensive Strategy = "comprehensive"

	// StrategyFocused narrows results for instructional queries.
	StrategyFocused Strategy = "focused"

	// StrategyBalanced is the default for everything else.
	StrategyBalanced Strategy = "balanced"
)

// Passage limits per strategy.
const (
	ComprehensiveLimit = 5
	FocusedLimit       = 2
	BalancedLimit      = 3
)

// selectStrategy maps a query analysis to a strategy and passage limit.
// Complexity takes precedence over intent: a complex how-to query still
// gets the comprehensive treatment.
func selectStrategy(analysis classify.QueryAnalysis) (Strategy, int) {
	switch {
	case analysis.ShouldSkip():
		return StrategySkip, 0
	case analysis.Complexity == classify.ComplexityComplex:
		return StrategyComprehensive, ComprehensiveLimit
	case analysis.Intent == classify.IntentHowTo:
		return StrategyFocused, FocusedLimit
	default:
		return StrategyBalanced, BalancedLimit
	}
}
