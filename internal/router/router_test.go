package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSimple(t *testing.T) {
	a := Analyze("show me all invoices")

	assert.Equal(t, CategorySimple, a.Category)
	assert.Less(t, a.Score, 0.3)
	assert.Positive(t, a.Indicators["simple_keywords"])
}

func TestAnalyzeComplex(t *testing.T) {
	a := Analyze("compare supplier spend against budget")

	assert.Equal(t, CategoryComplex, a.Category)
	assert.GreaterOrEqual(t, a.Score, 0.3)
	assert.Less(t, a.Score, 0.7)
}

func TestAnalyzeAnalytical(t *testing.T) {
	a := Analyze("forecast the payment trend over time by quarter")

	assert.Equal(t, CategoryAnalytical, a.Category)
	assert.GreaterOrEqual(t, a.Score, 0.7)
}

func TestAnalyzeScoreClamped(t *testing.T) {
	a := Analyze("analyze and compare the statistical correlation trend across related " +
		"accounts with total sum average count grouped over time by historical period " +
		"quarter and year with forecast insight and pattern detection between all linked " +
		"suppliers and associated invoices for maximum and minimum values")

	assert.LessOrEqual(t, a.Score, 1.0)
	assert.Equal(t, CategoryAnalytical, a.Category)
}

func TestAnalyzeMonotonicity(t *testing.T) {
	base := Analyze("show supplier payments by month")
	withAnalytical := Analyze("show supplier payments trend by month")

	assert.GreaterOrEqual(t, withAnalytical.Score, base.Score)
}

func TestAnalyzeDeterministic(t *testing.T) {
	first := Analyze("compare totals across regions")
	second := Analyze("compare totals across regions")

	assert.Equal(t, first, second)
}

func TestSelectByCategory(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"simple request", "list invoices", TierFast},
		{"complex request", "compare supplier spend against budget", TierBalanced},
		{"analytical request", "forecast the payment trend over time by quarter", TierCapable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Select(tt.text, nil, "")
			assert.Equal(t, tt.expected, sel.Backend)
			assert.NotEmpty(t, sel.Reasoning)
		})
	}
}

func TestSelectPreferenceOverrides(t *testing.T) {
	sel := Select("list invoices", []string{TierFast, TierCapable}, TierCapable)

	assert.Equal(t, TierCapable, sel.Backend)
	assert.Contains(t, sel.Reasoning, "preference")
}

func TestSelectFallsBackToAvailable(t *testing.T) {
	sel := Select("list invoices", []string{"gpt-4o-mini"}, "")

	assert.Equal(t, "gpt-4o-mini", sel.Backend)
}

func TestSelectUnavailablePreferenceIgnored(t *testing.T) {
	sel := Select("list invoices", []string{TierFast}, "nonexistent-model")

	assert.Equal(t, TierFast, sel.Backend)
}
