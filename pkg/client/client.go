// Package client provides the public Go SDK for the support engine API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// Client is the public SDK client for the support engine API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New creates a new support engine client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// MessageRequest is one user turn sent to the chat endpoint.
type MessageRequest struct {
	Message     string `json:"message"`
	MessageID   string `json:"messageId,omitempty"`
	AssistantID string `json:"assistantId,omitempty"`
	UserID      string `json:"userId"`
	PageID      string `json:"pageId,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
}

// MessageMetadata describes how a response was produced.
type MessageMetadata struct {
	Confidence float64 `json:"confidence"`
	UsedAI     bool    `json:"usedAi"`
	Tier       string  `json:"tier"`
	Guardrail  string  `json:"guardrail,omitempty"`
}

// MessageResponse is the chat endpoint's reply.
type MessageResponse struct {
	Response string          `json:"response"`
	Metadata MessageMetadata `json:"metadata"`
}

// FAQ is one knowledge base entry.
type FAQ struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	Keywords  string    `json:"keywords"`
	CreatedAt time.Time `json:"createdAt"`
}

// FAQRequest is the body for creating or updating an FAQ.
type FAQRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// CategoryCount is a category name with its record count.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SendMessage submits one user message and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/chat/message", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFAQs returns every stored FAQ.
func (c *Client) ListFAQs(ctx context.Context) ([]FAQ, error) {
	var out struct {
		FAQs []FAQ `json:"faqs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/faqs", nil, &out); err != nil {
		return nil, err
	}
	return out.FAQs, nil
}

// GetFAQ retrieves one FAQ by id.
func (c *Client) GetFAQ(ctx context.Context, id string) (*FAQ, error) {
	var out struct {
		FAQ FAQ `json:"faq"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/faqs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.FAQ, nil
}

// AddFAQ creates an FAQ and returns the stored record.
func (c *Client) AddFAQ(ctx context.Context, req FAQRequest) (*FAQ, error) {
	var out struct {
		FAQ FAQ `json:"faq"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/faqs", req, &out); err != nil {
		return nil, err
	}
	return &out.FAQ, nil
}

// UpdateFAQ replaces an FAQ's question, answer, and category.
func (c *Client) UpdateFAQ(ctx context.Context, id string, req FAQRequest) (*FAQ, error) {
	var out struct {
		FAQ FAQ `json:"faq"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/faqs/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out.FAQ, nil
}

// DeleteFAQ removes an FAQ by id.
func (c *Client) DeleteFAQ(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/faqs/"+url.PathEscape(id), nil, nil)
}

// ImportFAQs uploads CSV content to the bulk import endpoint and
// returns how many rows were imported.
func (c *Client) ImportFAQs(ctx context.Context, csv io.Reader, clearExisting bool) (int, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "faqs.csv")
	if err != nil {
		return 0, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return 0, fmt.Errorf("copy csv: %w", err)
	}
	if clearExisting {
		if err := form.WriteField("clear", "true"); err != nil {
			return 0, fmt.Errorf("build form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return 0, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/faqs/import", &body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.authorize(req)

	var out struct {
		Imported int `json:"imported"`
	}
	if err := c.send(req, &out); err != nil {
		return 0, err
	}
	return out.Imported, nil
}

// TopCategories returns up to limit categories by record count.
func (c *Client) TopCategories(ctx context.Context, limit int) ([]CategoryCount, error) {
	path := "/api/v1/faqs/categories"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out struct {
		Categories []CategoryCount `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(data)}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
