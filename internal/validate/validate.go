// Package validate checks candidate statements against the assembled column
// inventory. The checks are rule-based string patterns, not a grammar; they
// can both over- and under-flag, and the messages say what was matched.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/schemascout/schemascout/internal/schema"
)

// Verdict is the outcome of validating one statement.
type Verdict struct {
	OK          bool
	Errors      []string
	Suggestions []string
}

// dangerousKeywords are mutating operations never allowed in a statement.
var dangerousKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE", "TRUNCATE",
}

// keywordPatterns pairs a dangerous keyword with its match pattern and the
// exception patterns that allow it inside descriptions and literals.
type keywordPatterns struct {
	keyword string
	word    *regexp.Regexp
	paren   *regexp.Regexp
	comment *regexp.Regexp
	quoted  *regexp.Regexp
}

var dangerousPatterns = compileKeywordPatterns(dangerousKeywords)

func compileKeywordPatterns(keywords []string) []keywordPatterns {
	patterns := make([]keywordPatterns, 0, len(keywords))

	for _, kw := range keywords {
		patterns = append(patterns, keywordPatterns{
			keyword: kw,
			word:    regexp.MustCompile(`\b` + kw + `\b`),
			paren:   regexp.MustCompile(`\([^)]*\b` + kw + `\b[^)]*\)`),
			comment: regexp.MustCompile(`--[^\n]*\b` + kw + `\b`),
			quoted:  regexp.MustCompile(`'[^']*\b` + kw + `\b[^']*'`),
		})
	}

	return patterns
}

// sqlKeywords are clause keywords excluded from the spaced-identifier
// heuristic so ordinary statements do not trip it.
var sqlKeywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "JOIN": true, "ON": true,
	"AND": true, "OR": true, "AS": true, "ORDER": true, "GROUP": true,
	"BY": true, "HAVING": true, "INNER": true, "LEFT": true, "RIGHT": true,
	"OUTER": true, "FULL": true, "CROSS": true, "UNION": true, "ALL": true,
	"DISTINCT": true, "CASE": true, "WHEN": true, "THEN": true, "ELSE": true,
	"END": true, "NULL": true, "NOT": true, "IN": true, "EXISTS": true,
	"BETWEEN": true, "LIKE": true, "IS": true, "ASC": true, "DESC": true,
	"LIMIT": true, "OFFSET": true, "TO_DATE": true, "COUNT": true,
	"SUM": true, "AVG": true, "MIN": true, "MAX": true,
}

var (
	spacedRunRe     = regexp.MustCompile(`\b[A-Z]+(?:\s+[A-Z]+){2,}\b`)
	twoBareIdentsRe = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*\s+[A-Z_][A-Z0-9_]*$`)
)

// Validate checks a statement against the assembled columns. Structural and
// security failures short-circuit; referential failures accumulate so the
// caller sees every unknown identifier at once.
func Validate(sqlText string, cols schema.AvailableColumns) Verdict {
	upper := strings.ToUpper(strings.TrimSpace(sqlText))

	if msg := checkStructure(upper); msg != "" {
		return Verdict{Errors: []string{msg}}
	}

	if msg := checkDangerousKeywords(upper); msg != "" {
		return Verdict{Errors: []string{msg}}
	}

	var v Verdict

	if msg, suggestion := checkSpacedIdentifiers(upper); msg != "" {
		v.Errors = append(v.Errors, msg)

		if suggestion != "" {
			v.Suggestions = append(v.Suggestions, suggestion)
		}
	}

	if msg := checkMissingComma(upper); msg != "" {
		v.Errors = append(v.Errors, msg)
	}

	checkTables(upper, cols, &v)
	checkColumns(upper, cols, &v)

	v.OK = len(v.Errors) == 0

	return v
}

// checkStructure enforces the read-only statement shape.
func checkStructure(upper string) string {
	if !strings.HasPrefix(upper, "SELECT") {
		return "query must start with SELECT"
	}

	if !strings.Contains(upper, "FROM") {
		return "query must contain a FROM clause"
	}

	return ""
}

// checkDangerousKeywords rejects mutating operations. A keyword appearing
// inside a parenthesized description, a quoted literal, or after a comment
// marker is allowed, because schema descriptions and filter patterns
// legitimately mention these words.
func checkDangerousKeywords(upper string) string {
	for _, p := range dangerousPatterns {
		if !p.word.MatchString(upper) {
			continue
		}

		if p.paren.MatchString(upper) || p.comment.MatchString(upper) ||
			p.quoted.MatchString(upper) {
			continue
		}

		return fmt.Sprintf("dangerous keyword detected: %s", p.keyword)
	}

	return ""
}

// checkSpacedIdentifiers flags runs of three or more space-separated
// uppercase words that contain no clause keyword, which usually means an
// identifier lost its underscores. Runs with single-letter tokens are
// treated as alias patterns and skipped.
func checkSpacedIdentifiers(upper string) (string, string) {
	for _, run := range spacedRunRe.FindAllString(upper, -1) {
		words := strings.Fields(run)

		skip := false

		for _, w := range words {
			if sqlKeywords[w] || len(w) == 1 {
				skip = true
				break
			}
		}

		if skip {
			continue
		}

		joined := strings.Join(words, "_")

		return fmt.Sprintf("possible invalid identifier with spaces: '%s'", run),
			fmt.Sprintf("Did you mean '%s'?", joined)
	}

	return "", ""
}

// checkMissingComma flags a column-selection clause that is exactly two bare
// identifiers with no separator between them.
func checkMissingComma(upper string) string {
	clause, ok := selectClause(upper)
	if !ok {
		return ""
	}

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if !twoBareIdentsRe.MatchString(part) {
			continue
		}

		words := strings.Fields(part)
		if sqlKeywords[words[0]] || sqlKeywords[words[1]] {
			continue
		}

		return fmt.Sprintf("possible missing comma in column list near '%s'", part)
	}

	return ""
}

// checkTables verifies every referenced table against the column inventory.
func checkTables(upper string, cols schema.AvailableColumns, v *Verdict) {
	known := knownTables(cols)

	for _, table := range schema.TablesInStatement(upper) {
		if _, ok := cols[table]; ok {
			continue
		}

		v.Errors = append(v.Errors, fmt.Sprintf("table '%s' not found in schema", table))

		similar := similarNames(table, known, 3)
		if len(similar) > 0 {
			v.Suggestions = append(v.Suggestions,
				fmt.Sprintf("Did you mean: %s?", strings.Join(similar, ", ")))
		} else if len(known) > 0 {
			hint := known
			if len(hint) > 5 {
				hint = hint[:5]
			}

			v.Suggestions = append(v.Suggestions,
				fmt.Sprintf("Known tables include: %s", strings.Join(hint, ", ")))
		}
	}
}

// checkColumns verifies qualified and bare column references against the
// inventory of the tables the statement actually names.
func checkColumns(upper string, cols schema.AvailableColumns, v *Verdict) {
	aliases := schema.AliasMap(upper)
	tables := schema.TablesInStatement(upper)

	for _, ref := range schema.ColumnRefsInStatement(upper) {
		table, ok := aliases[ref.Prefix]
		if !ok {
			table = ref.Prefix
		}

		tableCols, known := columnsFor(table, cols)
		if !known {
			// Unknown table is already reported by the table check.
			continue
		}

		if containsColumn(tableCols, ref.Column) {
			continue
		}

		v.Errors = append(v.Errors,
			fmt.Sprintf("column '%s' not found in table '%s'", ref.Column, table))

		if similar := similarNames(ref.Column, tableCols, 3); len(similar) > 0 {
			v.Suggestions = append(v.Suggestions,
				fmt.Sprintf("Did you mean: %s?", strings.Join(similar, ", ")))
		}
	}

	// Bare select-list identifiers may come from any referenced table.
	var unionCols []string

	anyKnown := false

	for _, table := range tables {
		if tableCols, known := columnsFor(table, cols); known {
			anyKnown = true

			unionCols = append(unionCols, tableCols...)
		}
	}

	if !anyKnown {
		return
	}

	for _, column := range bareSelectColumns(upper) {
		if containsColumn(unionCols, column) {
			continue
		}

		v.Errors = append(v.Errors,
			fmt.Sprintf("column '%s' not found in referenced tables", column))

		if similar := similarNames(column, unionCols, 3); len(similar) > 0 {
			v.Suggestions = append(v.Suggestions,
				fmt.Sprintf("Did you mean: %s?", strings.Join(similar, ", ")))
		}
	}
}

// selectClause returns the text between SELECT and the first FROM.
func selectClause(upper string) (string, bool) {
	fromIdx := strings.Index(upper, "FROM")
	if fromIdx <= len("SELECT") {
		return "", false
	}

	return strings.TrimSpace(upper[len("SELECT"):fromIdx]), true
}

// bareSelectColumns extracts bare identifiers from the column-selection
// clause, skipping expressions, qualified references, and keywords.
func bareSelectColumns(upper string) []string {
	clause, ok := selectClause(upper)
	if !ok {
		return nil
	}

	var columns []string

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" {
			continue
		}

		if strings.ContainsAny(part, "(). '") {
			continue
		}

		if sqlKeywords[part] {
			continue
		}

		columns = append(columns, part)
	}

	return columns
}

// columnsFor resolves a table's column list, accepting either the base or
// audit-variant spelling of the name.
func columnsFor(table string, cols schema.AvailableColumns) ([]string, bool) {
	if c, ok := cols[table]; ok {
		return c, true
	}

	base := schema.NormalizeTable(table)
	if c, ok := cols[base]; ok {
		return c, true
	}

	if c, ok := cols[schema.AuditVariant(base)]; ok {
		return c, true
	}

	return nil, false
}

func containsColumn(cols []string, column string) bool {
	for _, c := range cols {
		if c == column {
			return true
		}
	}

	return false
}

// knownTables returns the base-name table entries in stable sorted order.
func knownTables(cols schema.AvailableColumns) []string {
	var names []string

	for name := range cols {
		if strings.HasSuffix(name, "_") {
			continue
		}

		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// similarNames returns up to limit known names related to the target by
// substring containment in either direction, or by a shared prefix covering
// most of the shorter name. The prefix rule catches singular/plural typos
// like AP_INVOICE_ALL for AP_INVOICES_ALL.
func similarNames(target string, known []string, limit int) []string {
	var similar []string

	for _, name := range known {
		if name == target {
			continue
		}

		if strings.Contains(name, target) || strings.Contains(target, name) ||
			prefixSimilar(name, target) {
			similar = append(similar, name)

			if len(similar) == limit {
				break
			}
		}
	}

	return similar
}

func prefixSimilar(a, b string) bool {
	shorter := min(len(a), len(b))
	if shorter < 4 {
		return false
	}

	common := 0
	for common < shorter && a[common] == b[common] {
		common++
	}

	return common*10 >= shorter*6
}
