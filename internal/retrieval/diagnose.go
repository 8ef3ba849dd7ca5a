package retrieval

import (
	"context"
	"fmt"

	"github.com/schemascout/schemascout/internal/vectorindex"
)

// Diagnosis summarizes the health of the retrieval collaborators.
type Diagnosis struct {
	ConnectionOK     bool
	IndexStats       vectorindex.Stats
	EmbeddingOK      bool
	SampleMatches    int
	MetadataFormatOK bool
	Issues           []string
}

// diagnosticQuery is a representative request used to probe the index.
const diagnosticQuery = "supplier invoice"

// Diagnose probes the index connection, the embedding provider, and the
// metadata format of a sample search. It never returns an error; problems
// are reported in the Issues list.
func (r *Retriever) Diagnose(ctx context.Context) Diagnosis {
	var d Diagnosis

	stats, err := r.index.Stats(ctx)
	if err != nil {
		d.Issues = append(d.Issues, fmt.Sprintf("index stats unavailable: %v", err))
	} else {
		d.ConnectionOK = true
		d.IndexStats = stats

		if stats.TotalVectors == 0 {
			d.Issues = append(d.Issues, "index is empty; schema documents have not been loaded")
		}
	}

	vector, err := r.embedder.GenerateEmbedding(ctx, diagnosticQuery)
	if err != nil {
		d.Issues = append(d.Issues, fmt.Sprintf("embedding provider unavailable: %v", err))
		return d
	}

	d.EmbeddingOK = true

	if !d.ConnectionOK {
		return d
	}

	matches, err := r.index.Query(ctx, vector, 5, true)
	if err != nil {
		d.Issues = append(d.Issues, fmt.Sprintf("sample query failed: %v", err))
		return d
	}

	d.SampleMatches = len(matches)

	if len(matches) == 0 {
		d.Issues = append(d.Issues, "sample query returned no matches")
		return d
	}

	d.MetadataFormatOK = true

	for _, m := range matches {
		if m.Meta.Document == "" {
			d.MetadataFormatOK = false

			d.Issues = append(d.Issues,
				fmt.Sprintf("match %s is missing document metadata", m.ID))

			break
		}
	}

	return d
}
