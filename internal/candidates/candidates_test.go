package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCandidatesAliases(t *testing.T) {
	extractor := NewLexicalExtractor(nil, nil)

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "invoice vocabulary",
			text:     "Show me all unpaid invoices due in August 2025",
			expected: []string{"AP_INVOICES_ALL", "AP_INVOICE_DISTRIBUTIONS_ALL"},
		},
		{
			name:     "supplier vocabulary",
			text:     "total spend by vendor this quarter",
			expected: []string{"AP_SUPPLIERS"},
		},
		{
			name:     "no match",
			text:     "what is the weather today",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractor.ExtractCandidates(tt.text))
		})
	}
}

func TestExtractCandidatesDirectMention(t *testing.T) {
	extractor := NewLexicalExtractor(nil, nil)

	result := extractor.ExtractCandidates("sum amounts in ap_invoices_all by month")

	assert.Equal(t, []string{"AP_INVOICES_ALL"}, result)
}

func TestExtractCandidatesAuditMention(t *testing.T) {
	extractor := NewLexicalExtractor(nil, nil)

	result := extractor.ExtractCandidates("compare GL_JE_HEADERS_ against current entries")

	assert.Contains(t, result, "GL_JE_HEADERS")
}

func TestExtractCandidatesDeduplicates(t *testing.T) {
	extractor := NewLexicalExtractor(nil, nil)

	result := extractor.ExtractCandidates("invoices and more invoices from AP_INVOICES_ALL")

	assert.Equal(t, []string{"AP_INVOICES_ALL", "AP_INVOICE_DISTRIBUTIONS_ALL"}, result)
}

func TestExtractCandidatesCustomCatalog(t *testing.T) {
	extractor := NewLexicalExtractor([]string{"ORDERS"}, map[string][]string{
		"SALE": {"ORDERS"},
	})

	assert.Equal(t, []string{"ORDERS"}, extractor.ExtractCandidates("every sale last week"))
	assert.Equal(t, []string{"ORDERS"}, extractor.ExtractCandidates("rows in orders"))
}

func TestExtractCandidatesOrderStable(t *testing.T) {
	extractor := NewLexicalExtractor(nil, nil)

	first := extractor.ExtractCandidates("supplier invoices and journal entries")
	second := extractor.ExtractCandidates("supplier invoices and journal entries")

	assert.Equal(t, first, second)
}
