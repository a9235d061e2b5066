package classify

import (
	"context"
	"regexp"
	"strings"
)

// greetings are matched against the whole query, not as substrings.
var greetings = map[string]struct{}{
	"hi":       {},
	"hello":    {},
	"hey":      {},
	"namaste":  {},
	"hola":     {},
	"kaise ho": {},
}

// unsafeKeywords trigger the inappropriate verdict on any substring match.
// Deliberately blunt: a false positive skips retrieval, a false negative
// serves content that should have been refused.
var unsafeKeywords = []string{
	"sex", "sext", "sexting", "porn", "adult", "nsfw", "nude", "naked",
}

var instructionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`how (to|do|can|should)`),
	regexp.MustCompile(`steps? to`),
	regexp.MustCompile(`ways? to`),
	regexp.MustCompile(`guide`),
	regexp.MustCompile(`tutorial`),
	regexp.MustCompile(`kaise`),
	regexp.MustCompile(`tarika`),
}

var conjunctionWords = map[string]struct{}{
	"and": {},
	"aur": {},
}

// HeuristicClassifier classifies queries with pattern matching only.
// It is deterministic, allocation-light and never fails, which makes it
// both the default classifier and the fallback for the model-backed one.
type HeuristicClassifier struct{}

// NewHeuristicClassifier creates a pattern-matching classifier.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Classify analyzes the query with the heuristic rule set.
func (c *HeuristicClassifier) Classify(_ context.Context, query string) QueryAnalysis {
	lowered := strings.ToLower(strings.TrimSpace(query))

	analysis := QueryAnalysis{
		Intent:     IntentQuestion,
		Complexity: ComplexitySimple,
		Confidence: 0.7,
	}

	if isGreeting(lowered) {
		analysis.Intent = IntentGreeting
		analysis.IsGreeting = true
		analysis.Confidence = 0.9
		return analysis
	}

	if containsUnsafeKeyword(lowered) {
		analysis.Intent = IntentInappropriate
		analysis.IsUnsafe = true
		analysis.Confidence = 0.9
		return analysis
	}

	if isInstructional(lowered) {
		analysis.Intent = IntentHowTo
		analysis.IsInstructional = true
		analysis.Confidence = 0.8
	}

	if isComplex(lowered) {
		analysis.Complexity = ComplexityComplex
	}

	return analysis
}

func isGreeting(lowered string) bool {
	trimmed := strings.TrimRight(lowered, "!?. ")
	_, ok := greetings[trimmed]
	return ok
}

func containsUnsafeKeyword(lowered string) bool {
	for _, keyword := range unsafeKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func isInstructional(lowered string) bool {
	for _, pattern := range instructionalPatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

// isComplex flags queries that ask several things at once: multiple
// question marks, multiple conjunctions, multiple clause separators, or
// simply a long query.
func isComplex(lowered string) bool {
	if strings.Count(lowered, "?") > 1 {
		return true
	}

	words := strings.Fields(lowered)
	if len(words) > 20 {
		return true
	}

	conjunctions := 0
	for _, word := range words {
		if _, ok := conjunctionWords[strings.Trim(word, ",.;!?")]; ok {
			conjunctions++
		}
	}
	if conjunctions > 1 {
		return true
	}

	separators := strings.Count(lowered, ",") + strings.Count(lowered, ";")
	return separators > 1
}
