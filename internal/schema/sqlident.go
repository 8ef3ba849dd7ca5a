package schema

import (
	"regexp"
	"strings"
)

// TableRef is a table reference pulled from a FROM or JOIN clause, with the
// alias that follows it when one is present.
type TableRef struct {
	Table string
	Alias string
}

// ColumnRef is a qualified column reference (prefix.column) in a statement.
// The prefix may be a table name or an alias.
type ColumnRef struct {
	Prefix string
	Column string
}

var (
	fromClauseRe = regexp.MustCompile(
		`(?i)\bFROM\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+(?:AS\s+)?([A-Za-z_][A-Za-z0-9_]*))?`)
	joinClauseRe = regexp.MustCompile(
		`(?i)\bJOIN\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+(?:AS\s+)?([A-Za-z_][A-Za-z0-9_]*))?`)
	qualifiedColRe = regexp.MustCompile(
		`\b([A-Za-z_][A-Za-z0-9_]*)\s*\.\s*([A-Za-z_][A-Za-z0-9_]*)`)
)

// aliasStopWords are keywords that can follow a table name in a FROM or JOIN
// clause and must not be mistaken for an alias.
var aliasStopWords = map[string]bool{
	"WHERE": true, "GROUP": true, "ORDER": true, "HAVING": true,
	"LIMIT": true, "JOIN": true, "INNER": true, "LEFT": true,
	"RIGHT": true, "FULL": true, "CROSS": true, "OUTER": true,
	"ON": true, "UNION": true, "SELECT": true, "AND": true, "OR": true,
}

// TableRefs extracts every table referenced in FROM and JOIN clauses along
// with its alias, in order of appearance.
func TableRefs(stmt string) []TableRef {
	var refs []TableRef

	for _, re := range []*regexp.Regexp{fromClauseRe, joinClauseRe} {
		for _, m := range re.FindAllStringSubmatch(stmt, -1) {
			ref := TableRef{Table: strings.ToUpper(m[1])}
			if m[2] != "" && !aliasStopWords[strings.ToUpper(m[2])] {
				ref.Alias = strings.ToUpper(m[2])
			}

			refs = append(refs, ref)
		}
	}

	return refs
}

// TablesInStatement returns the distinct upper-cased table names referenced
// in FROM and JOIN clauses, in order of first appearance.
func TablesInStatement(stmt string) []string {
	var tables []string

	seen := make(map[string]bool)

	for _, ref := range TableRefs(stmt) {
		if seen[ref.Table] {
			continue
		}

		seen[ref.Table] = true

		tables = append(tables, ref.Table)
	}

	return tables
}

// ColumnRefsInStatement returns every qualified column reference in the
// statement, upper-cased, in order of appearance.
func ColumnRefsInStatement(stmt string) []ColumnRef {
	var refs []ColumnRef

	for _, m := range qualifiedColRe.FindAllStringSubmatch(stmt, -1) {
		refs = append(refs, ColumnRef{
			Prefix: strings.ToUpper(m[1]),
			Column: strings.ToUpper(m[2]),
		})
	}

	return refs
}

// AliasMap builds a mapping from alias (or table name) to the table it
// refers to. Tables without an explicit alias map under their own name.
func AliasMap(stmt string) map[string]string {
	aliases := make(map[string]string)

	for _, ref := range TableRefs(stmt) {
		aliases[ref.Table] = ref.Table
		if ref.Alias != "" {
			aliases[ref.Alias] = ref.Table
		}
	}

	return aliases
}
