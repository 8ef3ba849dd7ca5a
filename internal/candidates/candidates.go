// Package candidates narrows retrieval to the tables a request is likely
// about. Extraction is best-effort; an empty result degrades retrieval to an
// unfiltered search rather than failing it.
package candidates

import (
	"regexp"
	"strings"
)

// Extractor identifies candidate tables for a natural-language request.
type Extractor interface {
	ExtractCandidates(text string) []string
}

// LexicalExtractor matches request text against a catalog of known table
// names and a keyword-to-table alias map.
type LexicalExtractor struct {
	catalog []string
	aliases map[string][]string
}

// DefaultAliases maps request vocabulary to the financial tables it usually
// refers to.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		"INVOICE":      {"AP_INVOICES_ALL", "AP_INVOICE_DISTRIBUTIONS_ALL"},
		"INVOICES":     {"AP_INVOICES_ALL", "AP_INVOICE_DISTRIBUTIONS_ALL"},
		"PAYABLE":      {"AP_INVOICES_ALL"},
		"PAYABLES":     {"AP_INVOICES_ALL"},
		"DISTRIBUTION": {"AP_INVOICE_DISTRIBUTIONS_ALL"},
		"SUPPLIER":     {"AP_SUPPLIERS"},
		"SUPPLIERS":    {"AP_SUPPLIERS"},
		"VENDOR":       {"AP_SUPPLIERS"},
		"VENDORS":      {"AP_SUPPLIERS"},
		"RECEIPT":      {"AR_CASH_RECEIPTS_ALL"},
		"RECEIPTS":     {"AR_CASH_RECEIPTS_ALL"},
		"PAYMENT":      {"AR_CASH_RECEIPTS_ALL"},
		"PAYMENTS":     {"AR_CASH_RECEIPTS_ALL"},
		"CUSTOMER":     {"AR_CUSTOMERS"},
		"CUSTOMERS":    {"AR_CUSTOMERS"},
		"JOURNAL":      {"GL_JE_HEADERS", "GL_JE_LINES"},
		"JOURNALS":     {"GL_JE_HEADERS", "GL_JE_LINES"},
		"LEDGER":       {"GL_JE_HEADERS", "GL_JE_LINES"},
		"ACCOUNT":      {"GL_CODE_COMBINATIONS"},
		"ACCOUNTS":     {"GL_CODE_COMBINATIONS"},
	}
}

// DefaultCatalog lists the table names recognized by direct mention.
func DefaultCatalog() []string {
	return []string{
		"AP_INVOICES_ALL",
		"AP_INVOICE_DISTRIBUTIONS_ALL",
		"AP_SUPPLIERS",
		"AR_CASH_RECEIPTS_ALL",
		"AR_CUSTOMERS",
		"GL_JE_HEADERS",
		"GL_JE_LINES",
		"GL_CODE_COMBINATIONS",
	}
}

// NewLexicalExtractor builds an extractor over the given table catalog and
// alias map. Nil arguments fall back to the defaults.
func NewLexicalExtractor(catalog []string, aliases map[string][]string) *LexicalExtractor {
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	if aliases == nil {
		aliases = DefaultAliases()
	}

	normalized := make([]string, 0, len(catalog))
	for _, table := range catalog {
		normalized = append(normalized, strings.ToUpper(strings.TrimSpace(table)))
	}

	return &LexicalExtractor{catalog: normalized, aliases: aliases}
}

var wordRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// ExtractCandidates returns the tables judged relevant to the request, in
// order of discovery: direct table-name mentions first, then alias hits.
func (e *LexicalExtractor) ExtractCandidates(text string) []string {
	upper := strings.ToUpper(text)
	words := wordRe.FindAllString(upper, -1)

	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	var result []string

	seen := make(map[string]bool)

	add := func(table string) {
		if !seen[table] {
			seen[table] = true

			result = append(result, table)
		}
	}

	for _, table := range e.catalog {
		if wordSet[table] || wordSet[table+"_"] {
			add(table)
		}
	}

	for _, w := range words {
		for _, table := range e.aliases[w] {
			add(table)
		}
	}

	return result
}
