package schema

import (
	"regexp"
	"strings"
)

// AvailableColumns maps an upper-cased table name to the columns discovered
// for it across all retrieved documents. Each table appears under both its
// base name and its audit variant (trailing underscore) so either spelling
// in a statement resolves to the same inventory.
type AvailableColumns map[string][]string

var (
	columnsLineRe   = regexp.MustCompile(`(?im)^\s*COLUMNS:\s*(.+)$`)
	inlineColumnRe  = regexp.MustCompile(`(?i)COLUMN:\s*([A-Za-z_][A-Za-z0-9_]*)`)
	createTableRe   = regexp.MustCompile(`(?is)CREATE\s+TABLE\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]+)\)`)
	tableContainsRe = regexp.MustCompile(`(?i)TABLE\s+CONTAINS?:\s*([^.\n]+)`)
	identifierRe    = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)
)

// constraintKeywords are tokens that open a table-level clause rather than a
// column definition inside CREATE TABLE bodies.
var constraintKeywords = map[string]bool{
	"CONSTRAINT": true,
	"PRIMARY":    true,
	"FOREIGN":    true,
	"UNIQUE":     true,
	"CHECK":      true,
}

// NormalizeTable upper-cases a table name and strips a single trailing
// underscore, collapsing an audit-variant name onto its base table.
func NormalizeTable(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))

	return strings.TrimSuffix(name, "_")
}

// AuditVariant returns the audit-namespace spelling of a base table name.
func AuditVariant(base string) string {
	return base + "_"
}

// Assemble derives the column inventory from a set of retrieved documents.
// It rebuilds the inventory from scratch on every call, so assembling the
// same documents twice yields the same result. Extraction strategies are
// additive: structured column metadata first, then the text patterns that
// older index builds rely on.
func Assemble(docs []Document) AvailableColumns {
	b := newBuilder()

	for _, doc := range docs {
		table := strings.TrimSpace(doc.Meta.Table)
		text := doc.Text
		if text == "" {
			text = doc.Meta.Document
		}

		if doc.Meta.Column != "" && table != "" {
			b.add(table, doc.Meta.Column)
		}

		// CREATE TABLE bodies carry their own table name, which wins over
		// missing metadata.
		if m := createTableRe.FindStringSubmatch(text); m != nil {
			ddlTable := table
			if ddlTable == "" {
				ddlTable = m[1]
			}

			for _, entry := range strings.Split(m[2], ",") {
				fields := strings.Fields(strings.TrimSpace(entry))
				if len(fields) == 0 {
					continue
				}

				first := strings.ToUpper(fields[0])
				if constraintKeywords[first] {
					continue
				}

				b.add(ddlTable, first)
			}
		}

		if table == "" {
			continue
		}

		for _, m := range columnsLineRe.FindAllStringSubmatch(text, -1) {
			b.addList(table, m[1])
		}

		for _, m := range inlineColumnRe.FindAllStringSubmatch(text, -1) {
			b.add(table, m[1])
		}

		for _, m := range tableContainsRe.FindAllStringSubmatch(text, -1) {
			b.addList(table, m[1])
		}
	}

	return b.result()
}

// Summarize groups the retrieved documents into per-table summaries ordered
// by first appearance. Table-level documents supply the description; the
// column inventory comes from Assemble over the same documents.
func Summarize(docs []Document) []TableSummary {
	cols := Assemble(docs)

	var order []string

	descriptions := make(map[string]string)

	for _, doc := range docs {
		if doc.Meta.Table == "" {
			continue
		}

		base := NormalizeTable(doc.Meta.Table)
		if _, seen := descriptions[base]; !seen {
			order = append(order, base)
			descriptions[base] = ""
		}

		if descriptions[base] == "" && strings.EqualFold(doc.Meta.DocType, "table") {
			text := doc.Text
			if text == "" {
				text = doc.Meta.Document
			}

			descriptions[base] = firstSentence(text)
		}
	}

	summaries := make([]TableSummary, 0, len(order))
	for _, base := range order {
		summaries = append(summaries, TableSummary{
			Table:       base,
			Description: descriptions[base],
			Columns:     cols[base],
		})
	}

	return summaries
}

// firstSentence trims a document body down to its leading sentence for use
// as a one-line table description.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".\n"); idx > 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}

// builder accumulates columns with order-preserving dedup per table.
type builder struct {
	order []string
	seen  map[string]map[string]bool
	cols  map[string][]string
}

func newBuilder() *builder {
	return &builder{
		seen: make(map[string]map[string]bool),
		cols: make(map[string][]string),
	}
}

// add records a column under both the base table entry and its audit variant.
func (b *builder) add(table, column string) {
	column = strings.ToUpper(strings.TrimSpace(column))
	if !identifierRe.MatchString(column) {
		return
	}

	base := NormalizeTable(table)
	if base == "" {
		return
	}

	b.addTo(base, column)
	b.addTo(AuditVariant(base), column)
}

// addList records a comma-separated list of columns.
func (b *builder) addList(table, list string) {
	for _, col := range strings.Split(list, ",") {
		b.add(table, col)
	}
}

func (b *builder) addTo(table, column string) {
	if b.seen[table] == nil {
		b.seen[table] = make(map[string]bool)

		b.order = append(b.order, table)
	}

	if b.seen[table][column] {
		return
	}

	b.seen[table][column] = true
	b.cols[table] = append(b.cols[table], column)
}

func (b *builder) result() AvailableColumns {
	out := make(AvailableColumns, len(b.cols))
	for _, table := range b.order {
		out[table] = b.cols[table]
	}

	return out
}
