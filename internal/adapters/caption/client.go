// Package caption provides an adapter for the reply-generation service.
// It posts a prompt as JSON and reads back a single reply string.
package caption

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/adapters/httpx"
	"github.com/ewilliams-labs/nekolog/internal/core/ports"
)

const (
	// DefaultURL is the local development endpoint.
	DefaultURL = "http://localhost:8787"
	// DefaultFallback is returned when the service cannot be reached.
	DefaultFallback = "サーバに接続できないにゃ"
)

var errMissingReply = errors.New("caption: response has no reply")

// Client calls the reply-generation service.
type Client struct {
	url        string
	httpClient *http.Client
	policy     httpx.Policy
	fallback   string
	logger     *zap.Logger
}

var _ ports.ReplyGenerator = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithPolicy replaces the retry policy.
func WithPolicy(p httpx.Policy) Option { return func(c *Client) { c.policy = p } }

// WithFallback replaces the phrase returned on failure.
func WithFallback(s string) Option { return func(c *Client) { c.fallback = s } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

type replyRequest struct {
	Prompt string `json:"prompt"`
}

type replyResponse struct {
	Reply *string `json:"reply"`
}

// NewClient returns a Client posting to url.
func NewClient(url string, opts ...Option) *Client {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: httpx.DefaultTimeout},
		policy:     httpx.Policy{Attempts: httpx.DefaultAttempts, Backoff: httpx.DefaultBackoff},
		fallback:   DefaultFallback,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateReply returns the service's reply, or the fallback phrase when
// every attempt failed.
func (c *Client) GenerateReply(ctx context.Context, prompt string) string {
	reply, err := c.Request(ctx, prompt)
	if err != nil {
		c.logger.Warn("caption: using fallback reply", zap.Error(err))
		return c.fallback
	}
	return reply
}

// Request performs the retried round trip and reports failures.
func (c *Client) Request(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(replyRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("caption: marshal request: %w", err)
	}

	var reply string
	err = c.policy.Retry(ctx, c.logger, "caption", func(ctx context.Context) error {
		r, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("caption: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption: request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httpx.CheckStatus(resp); err != nil {
		return "", fmt.Errorf("caption: %w", err)
	}

	var parsed replyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("caption: decode response: %w", err)
	}
	if parsed.Reply == nil {
		return "", errMissingReply
	}
	return *parsed.Reply, nil
}
