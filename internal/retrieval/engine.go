// Package retrieval finds the schema documents relevant to a request,
// scoping similarity search by candidate tables and grounding candidate
// statements for validation.
package retrieval

import (
	"context"
	"regexp"
	"strings"

	"github.com/schemascout/schemascout/internal/candidates"
	"github.com/schemascout/schemascout/internal/config"
	scerrors "github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/logging"
	"github.com/schemascout/schemascout/internal/schema"
	"github.com/schemascout/schemascout/internal/vectorindex"
)

// Embedder turns text into a query vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Result is the outcome of one retrieval pass. Success is false only when a
// backend call failed; an empty document list with Success true means the
// index simply had nothing relevant.
type Result struct {
	Docs         []schema.Document
	Success      bool
	Query        string
	TotalMatches int
	Skipped      int
	Err          error
}

// Retriever runs similarity search with candidate-table filtering.
type Retriever struct {
	embedder  Embedder
	index     vectorindex.Index
	extractor candidates.Extractor
	cfg       config.RetrievalConfig
}

// NewRetriever builds a retriever. The extractor may be nil, which degrades
// retrieval to unfiltered search.
func NewRetriever(
	embedder Embedder,
	index vectorindex.Index,
	extractor candidates.Extractor,
	cfg config.RetrievalConfig,
) *Retriever {
	return &Retriever{
		embedder:  embedder,
		index:     index,
		extractor: extractor,
		cfg:       cfg,
	}
}

// Retrieve returns up to k schema documents for the query text. When
// candidate tables are identified, it over-fetches three times k and filters
// matches to those tables and their audit variants, backfilling with the
// highest-scoring discarded matches if the filtered set falls short of k.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, k int) Result {
	if k <= 0 {
		k = r.cfg.K
	}

	var cands []string
	if r.extractor != nil {
		cands = r.extractor.ExtractCandidates(queryText)
	}

	logging.Debugf("retrieval: %d candidate tables for query", len(cands))

	searchK := k
	if len(cands) > 0 {
		searchK = k * 3
	}

	matches, err := r.search(ctx, queryText, searchK)
	if err != nil {
		return Result{Success: false, Query: queryText, Err: err}
	}

	retained := filterByCandidates(matches, cands, k)
	docs, skipped := toDocuments(retained)

	if len(docs) == 0 {
		simplified := simplifyQuery(queryText)
		if simplified != "" && simplified != queryText {
			logging.Debugf("retrieval: no documents, retrying with simplified query %q", simplified)

			retryMatches, retryErr := r.search(ctx, simplified, k*2)
			if retryErr != nil {
				return Result{Success: false, Query: simplified, Err: retryErr}
			}

			retryDocs, retrySkipped := toDocuments(retryMatches)

			return Result{
				Docs:         retryDocs,
				Success:      true,
				Query:        simplified,
				TotalMatches: len(retryMatches),
				Skipped:      retrySkipped,
			}
		}
	}

	return Result{
		Docs:         docs,
		Success:      true,
		Query:        queryText,
		TotalMatches: len(matches),
		Skipped:      skipped,
	}
}

// search embeds the query and runs one similarity search.
func (r *Retriever) search(
	ctx context.Context,
	queryText string,
	topK int,
) ([]vectorindex.Match, error) {
	vector, err := r.embedder.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to embed query")
	}

	matches, err := r.index.Query(ctx, vector, topK, true)
	if err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "similarity search failed")
	}

	return matches, nil
}

// filterByCandidates keeps matches whose table metadata names a candidate or
// its audit variant. Matches with no table metadata always survive. When the
// filtered set falls short of k, the highest-scoring discarded matches are
// added back until k is reached.
func filterByCandidates(
	matches []vectorindex.Match,
	cands []string,
	k int,
) []vectorindex.Match {
	if len(cands) == 0 {
		if len(matches) > k {
			return matches[:k]
		}

		return matches
	}

	allowed := make(map[string]bool, len(cands)*2)
	for _, c := range cands {
		base := schema.NormalizeTable(c)
		allowed[base] = true
		allowed[schema.AuditVariant(base)] = true
	}

	var kept, discarded []vectorindex.Match

	for _, m := range matches {
		table := strings.ToUpper(strings.TrimSpace(m.Meta.Table))
		if table == "" || allowed[table] {
			kept = append(kept, m)
		} else {
			discarded = append(discarded, m)
		}
	}

	// Index results arrive ordered by score, so discarded is already ranked.
	for _, m := range discarded {
		if len(kept) >= k {
			break
		}

		kept = append(kept, m)
	}

	if len(kept) > k {
		kept = kept[:k]
	}

	return kept
}

// toDocuments converts matches into schema documents, dropping matches that
// carry no document text and counting them as skipped.
func toDocuments(matches []vectorindex.Match) ([]schema.Document, int) {
	docs := make([]schema.Document, 0, len(matches))

	skipped := 0

	for _, m := range matches {
		if m.Meta.Document == "" {
			skipped++
			continue
		}

		docs = append(docs, schema.Document{
			ID:    m.ID,
			Score: m.Score,
			Text:  m.Meta.Document,
			Meta:  m.Meta,
		})
	}

	return docs, skipped
}

var keywordRe = regexp.MustCompile(`[A-Za-z0-9_]+`)

// stopWords are filler terms excluded from simplified retry queries.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"for": true, "to": true, "me": true, "my": true, "all": true,
	"show": true, "list": true, "get": true, "find": true, "give": true,
	"please": true, "what": true, "which": true, "with": true, "and": true,
	"are": true, "is": true, "that": true, "this": true, "by": true,
}

// simplifyQuery builds a retry query from the first three content keywords.
func simplifyQuery(text string) string {
	words := keywordRe.FindAllString(text, -1)

	var keywords []string

	for _, w := range words {
		if stopWords[strings.ToLower(w)] || len(w) < 3 {
			continue
		}

		keywords = append(keywords, w)
		if len(keywords) == 3 {
			break
		}
	}

	return strings.Join(keywords, " ")
}
