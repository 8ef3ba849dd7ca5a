package retrieval

import (
	"context"
	"fmt"
	"strings"

	scerrors "github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/logging"
	"github.com/schemascout/schemascout/internal/schema"
)

// GroundStatement gathers the schema documents needed to validate a
// candidate statement. It runs several query formulations per referenced
// table, merges the results with dedup, then adds a direct-lookup pass that
// fetches column documents by constructed identifier. Direct-lookup failures
// are logged and skipped; the call fails only when no formulation could
// reach the index at all.
func (r *Retriever) GroundStatement(
	ctx context.Context,
	sqlText string,
	originalRequest string,
) ([]schema.Document, error) {
	tables := schema.TablesInStatement(sqlText)

	var formulations []string

	if originalRequest != "" {
		formulations = append(formulations, originalRequest)
	}

	for _, table := range tables {
		base := schema.NormalizeTable(table)

		formulations = append(formulations,
			fmt.Sprintf("%s table definition", base),
			fmt.Sprintf("%s columns", base),
		)

		if originalRequest != "" {
			formulations = append(formulations, fmt.Sprintf("%s %s", originalRequest, base))
		}
	}

	// No referenced tables and no request text means there is nothing to
	// search for; an empty pool is the correct grounding, not a failure.
	if len(formulations) == 0 {
		return nil, nil
	}

	pool := newDocPool()

	var lastErr error

	succeeded := 0

	for _, q := range formulations {
		matches, err := r.search(ctx, q, r.cfg.GroundingK)
		if err != nil {
			logging.Warnf("grounding pass failed for %q: %v", q, err)

			lastErr = err

			continue
		}

		succeeded++

		docs, _ := toDocuments(matches)
		pool.addAll(docs)
	}

	if succeeded == 0 {
		return nil, scerrors.Wrap(lastErr, scerrors.ErrTypeBackend,
			"schema retrieval failed for all query formulations")
	}

	r.fetchReferencedColumns(ctx, sqlText, tables, pool)

	return pool.docs, nil
}

// fetchReferencedColumns fetches column documents by constructed identifier
// for every table/column pair the statement mentions, including the
// audit-variant spelling. Strictly additive; any fetch failure is skipped.
func (r *Retriever) fetchReferencedColumns(
	ctx context.Context,
	sqlText string,
	tables []string,
	pool *docPool,
) {
	aliases := schema.AliasMap(sqlText)

	var ids []string

	seen := make(map[string]bool)

	addID := func(table, column string) {
		base := schema.NormalizeTable(table)
		for _, name := range []string{base, schema.AuditVariant(base)} {
			id := fmt.Sprintf("column::%s.%s", name, column)
			if !seen[id] {
				seen[id] = true

				ids = append(ids, id)
			}
		}
	}

	for _, ref := range schema.ColumnRefsInStatement(sqlText) {
		table, ok := aliases[ref.Prefix]
		if !ok {
			table = ref.Prefix
		}

		addID(table, ref.Column)
	}

	// Unqualified select-list columns could belong to any referenced table.
	for _, column := range selectListIdentifiers(sqlText) {
		for _, table := range tables {
			addID(table, column)
		}
	}

	batchSize := r.cfg.DirectFetchBatch
	if batchSize <= 0 {
		batchSize = 100
	}

	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))

		metadata, err := r.index.Fetch(ctx, ids[start:end])
		if err != nil {
			logging.Warnf("direct column fetch failed for batch of %d: %v", end-start, err)
			continue
		}

		for id, meta := range metadata {
			if meta.Document == "" {
				continue
			}

			pool.add(schema.Document{
				ID:   id,
				Text: meta.Document,
				Meta: meta,
			})
		}
	}
}

// selectListIdentifiers returns the bare identifiers in the column-selection
// clause, excluding keywords and function calls.
func selectListIdentifiers(sqlText string) []string {
	upper := strings.ToUpper(sqlText)

	selectIdx := strings.Index(upper, "SELECT")
	fromIdx := strings.Index(upper, "FROM")

	if selectIdx < 0 || fromIdx <= selectIdx {
		return nil
	}

	clause := upper[selectIdx+len("SELECT") : fromIdx]

	var cols []string

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" {
			continue
		}

		// Skip expressions; only bare identifiers can be checked by name.
		if strings.ContainsAny(part, "(). '") {
			continue
		}

		cols = append(cols, part)
	}

	return cols
}

// docPool accumulates documents with dedup by (text, table, column).
type docPool struct {
	docs []schema.Document
	seen map[string]bool
}

func newDocPool() *docPool {
	return &docPool{seen: make(map[string]bool)}
}

func (p *docPool) add(doc schema.Document) {
	key := doc.Text + "\x00" + doc.Meta.Table + "\x00" + doc.Meta.Column
	if p.seen[key] {
		return
	}

	p.seen[key] = true

	p.docs = append(p.docs, doc)
}

func (p *docPool) addAll(docs []schema.Document) {
	for _, doc := range docs {
		p.add(doc)
	}
}
