package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/schemascout/schemascout/internal/config"
	scerrors "github.com/schemascout/schemascout/internal/errors"
	"github.com/schemascout/schemascout/internal/schema"
)

// Client talks to a Pinecone-compatible REST index.
type Client struct {
	baseURL    string
	apiKey     string
	indexName  string
	httpClient *http.Client
}

// NewClient creates an index client from configuration.
func NewClient(cfg config.IndexConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, scerrors.New(scerrors.ErrTypeConfig, "vector index base URL is required").
			WithSuggestion("Set SCHEMASCOUT_INDEX_BASE_URL or the index.base_url config field")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		indexName:  cfg.IndexName,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

type fetchResponse struct {
	Vectors map[string]struct {
		ID       string          `json:"id"`
		Metadata schema.Metadata `json:"metadata"`
	} `json:"vectors"`
}

type statsResponse struct {
	TotalVectorCount int64 `json:"totalVectorCount"`
	Dimension        int   `json:"dimension"`
}

// Query runs a similarity search against the index.
func (c *Client) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	includeMetadata bool,
) ([]Match, error) {
	body, err := json.Marshal(queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: includeMetadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query request: %w", err)
	}

	respBody, err := c.post(ctx, "/query", body)
	if err != nil {
		return nil, err
	}

	var result queryResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to parse query response")
	}

	return result.Matches, nil
}

// Fetch retrieves metadata for specific vector IDs.
func (c *Client) Fetch(ctx context.Context, ids []string) (map[string]schema.Metadata, error) {
	if len(ids) == 0 {
		return map[string]schema.Metadata{}, nil
	}

	params := url.Values{}
	for _, id := range ids {
		params.Add("ids", id)
	}

	respBody, err := c.get(ctx, "/vectors/fetch?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result fetchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to parse fetch response")
	}

	metadata := make(map[string]schema.Metadata, len(result.Vectors))
	for id, vec := range result.Vectors {
		metadata[id] = vec.Metadata
	}

	return metadata, nil
}

// Stats reports the current index contents.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	respBody, err := c.post(ctx, "/describe_index_stats", []byte("{}"))
	if err != nil {
		return Stats{}, err
	}

	var result statsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Stats{}, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to parse stats response")
	}

	return Stats{
		TotalVectors: result.TotalVectorCount,
		Dimension:    result.Dimension,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create index request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create index request: %w", err)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "vector index request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to read index response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, scerrors.Newf(scerrors.ErrTypeBackend,
			"vector index returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
