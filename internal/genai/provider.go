// Package genai provides the generative text provider interface and an
// OpenAI-compatible HTTP client.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrProvider indicates a generative provider failure.
var ErrProvider = errors.New("generative provider failure")

// Generator produces a reply from a system context and a user message.
type Generator interface {
	Generate(ctx context.Context, systemContext, userMessage string) (string, error)
}

// Client is an OpenAI-compatible chat completion client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Config holds generative client configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds the whole completion call. Generation is the
	// slowest external call in the pipeline; the default is generous.
	Timeout time.Duration
}

// NewClient creates a generative text client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends the system context and user message to the provider
// and returns the completion text.
func (c *Client) Generate(ctx context.Context, systemContext, userMessage string) (string, error) {
	var messages []chatMessage
	if systemContext != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemContext})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	jsonBody, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp chatResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
			return "", fmt.Errorf("%w: %s (type: %s)", ErrProvider, errResp.Error.Message, errResp.Error.Type)
		}
		return "", fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", ErrProvider, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrProvider)
	}

	return chatResp.Choices[0].Message.Content, nil
}

var _ Generator = (*Client)(nil)
