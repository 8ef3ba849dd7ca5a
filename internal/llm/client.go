package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	scerrors "github.com/schemascout/schemascout/internal/errors"
)

const (
	defaultMaxTokens   = 4000
	defaultTemperature = 0.1
)

// Client implements the Service interface with multiple provider support
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new LLM client with the given configuration
func NewClient(config Config) (*Client, error) {
	c := &Client{}
	if err := c.Configure(config); err != nil {
		return nil, err
	}

	return c, nil
}

// Configure updates the client configuration
func (c *Client) Configure(config Config) error {
	switch config.Provider {
	case ProviderOpenAI:
		if config.APIKey == "" {
			return scerrors.New(scerrors.ErrTypeConfig, "API key is required for OpenAI provider")
		}

		if config.BaseURL == "" {
			config.BaseURL = "https://api.openai.com/v1"
		}
	case ProviderAnthropic:
		if config.APIKey == "" {
			return scerrors.New(scerrors.ErrTypeConfig, "API key is required for Anthropic provider")
		}

		if config.BaseURL == "" {
			config.BaseURL = "https://api.anthropic.com/v1"
		}
	case ProviderOllama:
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
	default:
		return scerrors.Newf(scerrors.ErrTypeConfig, "unsupported provider: %s", config.Provider)
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	c.config = config
	c.httpClient = &http.Client{Timeout: timeout}

	return nil
}

// Generate produces a completion for the prompt using the given model.
func (c *Client) Generate(
	ctx context.Context,
	model string,
	prompt string,
) (*GenerateResponse, error) {
	if c.config.Provider == "" {
		return nil, scerrors.New(scerrors.ErrTypeConfig, "LLM client not configured")
	}

	switch c.config.Provider {
	case ProviderOpenAI:
		return c.generateOpenAI(ctx, model, prompt)
	case ProviderAnthropic:
		return c.generateAnthropic(ctx, model, prompt)
	case ProviderOllama:
		return c.generateOllama(ctx, model, prompt)
	default:
		return nil, scerrors.Newf(scerrors.ErrTypeConfig,
			"unsupported provider: %s", c.config.Provider)
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *Client) generateOpenAI(
	ctx context.Context,
	model string,
	prompt string,
) (*GenerateResponse, error) {
	body, err := json.Marshal(openAIRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.post(ctx, c.config.BaseURL+"/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + c.config.APIKey,
	})
	if err != nil {
		return nil, err
	}

	var result openAIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to parse response")
	}

	if len(result.Choices) == 0 {
		return nil, scerrors.New(scerrors.ErrTypeBackend, "no completion choices returned")
	}

	return &GenerateResponse{
		Content:    strings.TrimSpace(result.Choices[0].Message.Content),
		Model:      model,
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *Client) generateAnthropic(
	ctx context.Context,
	model string,
	prompt string,
) (*GenerateResponse, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.post(ctx, c.config.BaseURL+"/messages", body, map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return nil, err
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to parse response")
	}

	if len(result.Content) == 0 {
		return nil, scerrors.New(scerrors.ErrTypeBackend, "empty completion returned")
	}

	return &GenerateResponse{
		Content:    strings.TrimSpace(result.Content[0].Text),
		Model:      model,
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
	}, nil
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (c *Client) generateOllama(
	ctx context.Context,
	model string,
	prompt string,
) (*GenerateResponse, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.post(ctx, c.config.BaseURL+"/api/generate", body, nil)
	if err != nil {
		return nil, err
	}

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to parse response")
	}

	return &GenerateResponse{
		Content: strings.TrimSpace(result.Response),
		Model:   model,
	}, nil
}

func (c *Client) post(
	ctx context.Context,
	url string,
	body []byte,
	headers map[string]string,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "generation request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrTypeBackend, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, scerrors.Newf(scerrors.ErrTypeBackend,
			"generation API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
