package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemascout/schemascout/internal/schema"
	"github.com/schemascout/schemascout/internal/vectorindex"
)

func TestGroundStatementMergesFormulations(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{
		matches: []vectorindex.Match{
			{
				ID:    "table::ORDERS",
				Score: 0.9,
				Meta: schema.Metadata{
					Table:    "ORDERS",
					DocType:  "table",
					Document: "Sales order headers",
				},
			},
		},
	}
	r := NewRetriever(embedder, index, nil, testConfig())

	docs, err := r.GroundStatement(
		context.Background(),
		"SELECT ORDER_ID FROM ORDERS",
		"orders this month",
	)
	require.NoError(t, err)

	// One formulation for the request plus per-table variants, deduplicated
	// down to the single distinct document.
	assert.GreaterOrEqual(t, len(embedder.queries), 3)
	assert.Len(t, docs, 1)
	assert.Contains(t, embedder.queries, "ORDERS table definition")
	assert.Contains(t, embedder.queries, "ORDERS columns")
}

func TestGroundStatementDirectFetch(t *testing.T) {
	index := &fakeIndex{
		fetched: map[string]schema.Metadata{
			"column::ORDERS.AMOUNT": {
				Table:    "ORDERS",
				Column:   "AMOUNT",
				Document: "AMOUNT: order total in functional currency",
			},
		},
	}
	r := NewRetriever(&fakeEmbedder{}, index, nil, testConfig())

	docs, err := r.GroundStatement(
		context.Background(),
		"SELECT O.AMOUNT FROM ORDERS O",
		"",
	)
	require.NoError(t, err)

	require.NotEmpty(t, index.fetchCalls)
	assert.Contains(t, index.fetchCalls[0], "column::ORDERS.AMOUNT")
	assert.Contains(t, index.fetchCalls[0], "column::ORDERS_.AMOUNT")

	require.Len(t, docs, 1)
	assert.Equal(t, "AMOUNT", docs[0].Meta.Column)
}

func TestGroundStatementFetchFailureIgnored(t *testing.T) {
	index := &fakeIndex{
		matches: []vectorindex.Match{
			{
				ID:    "table::ORDERS",
				Score: 0.9,
				Meta:  schema.Metadata{Table: "ORDERS", Document: "Sales order headers"},
			},
		},
		fetchErr: errors.New("fetch unavailable"),
	}
	r := NewRetriever(&fakeEmbedder{}, index, nil, testConfig())

	docs, err := r.GroundStatement(
		context.Background(),
		"SELECT O.AMOUNT FROM ORDERS O",
		"",
	)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestGroundStatementAllFormulationsFail(t *testing.T) {
	index := &fakeIndex{queryErr: errors.New("index down")}
	r := NewRetriever(&fakeEmbedder{}, index, nil, testConfig())

	_, err := r.GroundStatement(
		context.Background(),
		"SELECT ORDER_ID FROM ORDERS",
		"orders",
	)
	assert.Error(t, err)
}

func TestGroundStatementNoFormulationsEmptyPool(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{queryErr: errors.New("index down")}
	r := NewRetriever(embedder, index, nil, testConfig())

	// No referenced tables and no request text: nothing to search, no error
	// even with the index unreachable.
	docs, err := r.GroundStatement(context.Background(), "SHOW TABLES", "")
	require.NoError(t, err)

	assert.Empty(t, docs)
	assert.Empty(t, embedder.queries)
}

func TestGroundStatementBatchesDirectFetch(t *testing.T) {
	cfg := testConfig()
	cfg.DirectFetchBatch = 2

	index := &fakeIndex{}
	r := NewRetriever(&fakeEmbedder{}, index, nil, cfg)

	_, err := r.GroundStatement(
		context.Background(),
		"SELECT O.A, O.B, O.C FROM ORDERS O",
		"",
	)
	require.NoError(t, err)

	// Three columns with audit variants yield six IDs in batches of two.
	require.Len(t, index.fetchCalls, 3)
	for _, call := range index.fetchCalls {
		assert.LessOrEqual(t, len(call), 2)
	}
}

func TestSelectListIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		stmt     string
		expected []string
	}{
		{
			name:     "bare identifiers",
			stmt:     "SELECT ORDER_ID, AMOUNT FROM ORDERS",
			expected: []string{"ORDER_ID", "AMOUNT"},
		},
		{
			name:     "star skipped",
			stmt:     "SELECT * FROM ORDERS",
			expected: nil,
		},
		{
			name:     "expressions skipped",
			stmt:     "SELECT SUM(AMOUNT), O.STATUS, ORDER_ID FROM ORDERS O",
			expected: []string{"ORDER_ID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, selectListIdentifiers(tt.stmt))
		})
	}
}

func TestDiagnoseHealthy(t *testing.T) {
	index := &fakeIndex{
		matches: []vectorindex.Match{
			{
				ID:   "table::AP_INVOICES_ALL",
				Meta: schema.Metadata{Table: "AP_INVOICES_ALL", Document: "Payables invoices"},
			},
		},
		stats: vectorindex.Stats{TotalVectors: 1000, Dimension: 768},
	}
	r := NewRetriever(&fakeEmbedder{}, index, nil, testConfig())

	d := r.Diagnose(context.Background())

	assert.True(t, d.ConnectionOK)
	assert.True(t, d.EmbeddingOK)
	assert.True(t, d.MetadataFormatOK)
	assert.Equal(t, 1, d.SampleMatches)
	assert.Empty(t, d.Issues)
}

func TestDiagnoseIndexDown(t *testing.T) {
	index := &fakeIndex{statsErr: errors.New("no route to host")}
	r := NewRetriever(&fakeEmbedder{}, index, nil, testConfig())

	d := r.Diagnose(context.Background())

	assert.False(t, d.ConnectionOK)
	assert.NotEmpty(t, d.Issues)
}

func TestDiagnoseMissingDocumentMetadata(t *testing.T) {
	index := &fakeIndex{
		matches: []vectorindex.Match{
			{ID: "table::ORDERS", Meta: schema.Metadata{Table: "ORDERS"}},
		},
		stats: vectorindex.Stats{TotalVectors: 10, Dimension: 768},
	}
	r := NewRetriever(&fakeEmbedder{}, index, nil, testConfig())

	d := r.Diagnose(context.Background())

	assert.False(t, d.MetadataFormatOK)
	assert.NotEmpty(t, d.Issues)
}
