// Package vectorindex provides the similarity-search client for the schema
// documentation index.
package vectorindex

import (
	"context"

	"github.com/schemascout/schemascout/internal/schema"
)

// Match is a single similarity-search hit.
type Match struct {
	ID    string          `json:"id"`
	Score float64         `json:"score"`
	Meta  schema.Metadata `json:"metadata"`
}

// Stats describes the index contents.
type Stats struct {
	TotalVectors int64 `json:"total_vectors"`
	Dimension    int   `json:"dimension"`
}

// Index is the vector store consumed by retrieval. Implementations must be
// safe for concurrent use.
type Index interface {
	// Query runs a similarity search and returns up to topK matches ordered
	// by descending score.
	Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]Match, error)

	// Fetch retrieves metadata for specific vector IDs. Unknown IDs are
	// simply absent from the result.
	Fetch(ctx context.Context, ids []string) (map[string]schema.Metadata, error)

	// Stats reports the current index contents.
	Stats(ctx context.Context) (Stats, error)
}
