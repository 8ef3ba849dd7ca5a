package vectorindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemascout/schemascout/internal/config"
	"github.com/schemascout/schemascout/internal/schema"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.IndexConfig{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		IndexName: "schema-docs",
		Timeout:   "5s",
	})
	require.NoError(t, err)

	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.IndexConfig{})
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 30, req.TopK)
		assert.True(t, req.IncludeMetadata)

		_ = json.NewEncoder(w).Encode(queryResponse{
			Matches: []Match{
				{
					ID:    "table::ORDERS",
					Score: 0.92,
					Meta:  schema.Metadata{Table: "ORDERS", DocType: "table"},
				},
				{
					ID:    "column::ORDERS.AMOUNT",
					Score: 0.88,
					Meta:  schema.Metadata{Table: "ORDERS", Column: "AMOUNT"},
				},
			},
		})
	})

	matches, err := client.Query(context.Background(), []float32{0.1, 0.2}, 30, true)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "table::ORDERS", matches[0].ID)
	assert.InDelta(t, 0.92, matches[0].Score, 0.001)
	assert.Equal(t, "ORDERS", matches[1].Meta.Table)
}

func TestFetch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/fetch", r.URL.Path)
		assert.ElementsMatch(t,
			[]string{"column::ORDERS.AMOUNT", "column::ORDERS.STATUS"},
			r.URL.Query()["ids"])

		_, _ = w.Write([]byte(`{
			"vectors": {
				"column::ORDERS.AMOUNT": {
					"id": "column::ORDERS.AMOUNT",
					"metadata": {"table": "ORDERS", "column": "AMOUNT"}
				}
			}
		}`))
	})

	metadata, err := client.Fetch(
		context.Background(),
		[]string{"column::ORDERS.AMOUNT", "column::ORDERS.STATUS"},
	)
	require.NoError(t, err)

	// Unknown IDs are absent rather than errors
	require.Len(t, metadata, 1)
	assert.Equal(t, "AMOUNT", metadata["column::ORDERS.AMOUNT"].Column)
}

func TestFetchEmptyIDs(t *testing.T) {
	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected for empty ID list")
	})

	metadata, err := client.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, metadata)
}

func TestStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/describe_index_stats", r.URL.Path)

		_, _ = w.Write([]byte(`{"totalVectorCount": 12345, "dimension": 768}`))
	})

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(12345), stats.TotalVectors)
	assert.Equal(t, 768, stats.Dimension)
}

func TestServerErrorSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	})

	_, err := client.Query(context.Background(), []float32{0.1}, 10, true)
	assert.Error(t, err)

	_, err = client.Stats(context.Background())
	assert.Error(t, err)
}
