// Package router scores request complexity and picks a generation backend
// tier. Scoring is deterministic and side-effect-free; identical text always
// yields the identical category.
package router

import (
	"fmt"
	"strings"
)

// Category buckets a complexity score.
type Category string

const (
	CategorySimple     Category = "simple"
	CategoryComplex    Category = "complex"
	CategoryAnalytical Category = "analytical"
)

// Analysis is the complexity breakdown for one request.
type Analysis struct {
	Score      float64        `json:"score"`
	Category   Category       `json:"category"`
	Indicators map[string]int `json:"indicators"`
}

// Selection names the backend chosen for a request and why.
type Selection struct {
	Backend   string   `json:"selected_backend"`
	Reasoning string   `json:"reasoning"`
	Analysis  Analysis `json:"analysis"`
}

// Backend tiers, ordered by capability. Callers may override with any
// available backend name.
const (
	TierFast     = "claude-haiku"
	TierBalanced = "claude-sonnet"
	TierCapable  = "claude-opus"
)

// Indicator families. Each contributes its weight once when at least one of
// its keywords appears in the request.
var (
	simpleKeywords = []string{"show", "list", "get", "find", "select"}

	complexKeywords = []string{
		"analyze", "compare", "calculate", "aggregate", "join", "relationship",
	}

	analyticalKeywords = []string{
		"trend", "pattern", "correlation", "statistical", "forecast", "insight",
	}

	multiTableIndicators = []string{
		"between", "across", "related", "associated", "linked",
	}

	temporalIndicators = []string{
		"over time", "historical", "trend", "period", "quarter", "year",
	}

	aggregationIndicators = []string{
		"total", "sum", "average", "count", "maximum", "minimum", "group",
	}
)

// Analyze scores the request text. Weights are additive per indicator
// family, with length bonuses past 20 and 40 words, clamped to [0,1].
func Analyze(text string) Analysis {
	lower := strings.ToLower(text)
	wordCount := len(strings.Fields(text))

	indicators := map[string]int{
		"simple_keywords":        countMatches(lower, simpleKeywords),
		"complex_keywords":       countMatches(lower, complexKeywords),
		"analytical_keywords":    countMatches(lower, analyticalKeywords),
		"multi_table_indicators": countMatches(lower, multiTableIndicators),
		"temporal_indicators":    countMatches(lower, temporalIndicators),
		"aggregation_indicators": countMatches(lower, aggregationIndicators),
		"word_count":             wordCount,
	}

	score := 0.0

	if indicators["simple_keywords"] > 0 && wordCount < 15 {
		score += 0.1
	}

	if indicators["complex_keywords"] > 0 {
		score += 0.3
	}

	if indicators["multi_table_indicators"] > 0 {
		score += 0.2
	}

	if indicators["aggregation_indicators"] > 0 {
		score += 0.2
	}

	if indicators["analytical_keywords"] > 0 {
		score += 0.4
	}

	if indicators["temporal_indicators"] > 0 {
		score += 0.3
	}

	if wordCount > 20 {
		score += 0.1
	}

	if wordCount > 40 {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}

	return Analysis{
		Score:      score,
		Category:   categorize(score),
		Indicators: indicators,
	}
}

func categorize(score float64) Category {
	switch {
	case score < 0.3:
		return CategorySimple
	case score < 0.7:
		return CategoryComplex
	default:
		return CategoryAnalytical
	}
}

// Select picks a backend for the request. An explicit preference that names
// an available backend always wins over the computed category.
func Select(text string, available []string, preference string) Selection {
	analysis := Analyze(text)

	if preference != "" && (len(available) == 0 || contains(available, preference)) {
		return Selection{
			Backend:   preference,
			Reasoning: fmt.Sprintf("caller preference overrides %s categorization", analysis.Category),
			Analysis:  analysis,
		}
	}

	var backend, reasoning string

	switch analysis.Category {
	case CategorySimple:
		backend = TierFast
		reasoning = "simple request; using the fast, cost-effective tier"
	case CategoryComplex:
		backend = TierBalanced
		reasoning = "complex request; using the balanced tier"
	default:
		backend = TierCapable
		reasoning = "analytical request; using the most capable tier"
	}

	if len(available) > 0 && !contains(available, backend) {
		// Fall back to the first available backend rather than failing.
		backend = available[0]
		reasoning += " (preferred tier unavailable, using " + backend + ")"
	}

	return Selection{
		Backend:   backend,
		Reasoning: reasoning,
		Analysis:  analysis,
	}
}

func countMatches(lower string, keywords []string) int {
	count := 0

	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}

	return count
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}

	return false
}
