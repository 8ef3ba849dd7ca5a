// Package schema models retrieved schema documentation and derives the
// column inventory that grounds statement generation and validation.
package schema

// Metadata carries the structured fields attached to an indexed schema document.
// Fields are optional; older index builds omit table or column tags entirely.
type Metadata struct {
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	DocType  string `json:"doc_type,omitempty"`
	Document string `json:"document,omitempty"`
}

// Document is a single unit of schema documentation returned by the index.
type Document struct {
	ID    string
	Score float64
	Text  string
	Meta  Metadata
}

// TableSummary is a per-table view of the retrieved documentation used to
// build generation prompts.
type TableSummary struct {
	Table       string
	Description string
	Columns     []string
}
