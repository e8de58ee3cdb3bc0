// Package vision provides face-detection adapters.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/adapters/httpx"
	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/core/ports"
	"github.com/ewilliams-labs/nekolog/internal/imaging"
)

// NoFace is a detector that never finds a face, so framing always uses the
// whole image.
type NoFace struct{}

var _ ports.FaceDetector = NoFace{}

// DetectFace always reports no face.
func (NoFace) DetectFace(context.Context, image.Image) (*domain.NormalizedBox, error) {
	return nil, nil
}

// Client posts PNG images to a face-detection service. The service answers
// {"face": {"x","y","width","height"}} in normalized coordinates with the
// origin at the bottom-left, or {"face": null}.
type Client struct {
	url        string
	httpClient *http.Client
	policy     httpx.Policy
	logger     *zap.Logger
}

var _ ports.FaceDetector = (*Client)(nil)

type detectResponse struct {
	Face *domain.NormalizedBox `json:"face"`
}

// NewClient returns a Client. A nil httpClient selects a default one.
func NewClient(url string, httpClient *http.Client, policy httpx.Policy, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpx.DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:        strings.TrimSpace(url),
		httpClient: httpClient,
		policy:     policy,
		logger:     logger,
	}
}

// DetectFace returns the first face found, or nil.
func (c *Client) DetectFace(ctx context.Context, img image.Image) (*domain.NormalizedBox, error) {
	body, err := imaging.PNGBytes(img)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}

	var face *domain.NormalizedBox
	err = c.policy.Retry(ctx, c.logger, "vision", func(ctx context.Context) error {
		f, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		face = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return face, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*domain.NormalizedBox, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httpx.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}

	var parsed detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("vision: decode response: %w", err)
	}
	return parsed.Face, nil
}
