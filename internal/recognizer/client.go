package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raaihank/clip-sentinel/internal/patterns"
	"go.uber.org/zap"
)

const (
	patternsPath = "/v1/patterns"
	valuesPath   = "/v1/values"

	// maxErrorBody bounds how much of an error response is kept
	maxErrorBody = 512
)

// Config contains recognizer client configuration
type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Client talks to an external pattern recognition service over HTTP
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *zap.Logger
}

// request is the body of both recognizer calls
type request struct {
	Text  string         `json:"text"`
	Kinds []patterns.Key `json:"kinds"`
}

type patternsResponse struct {
	Kinds []patterns.Key `json:"kinds"`
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recognizer returned HTTP %d: %s", e.StatusCode, e.Body)
}

// New creates a recognizer client
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("recognizer endpoint is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		token:    cfg.Token,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}, nil
}

// Patterns returns the keys with at least one match in text
func (c *Client) Patterns(ctx context.Context, text string, keys []patterns.Key) ([]patterns.Key, error) {
	var resp patternsResponse
	if err := c.post(ctx, patternsPath, request{Text: text, Kinds: keys}, &resp); err != nil {
		return nil, err
	}
	return resp.Kinds, nil
}

// Values resolves the matched values of keys in text
func (c *Client) Values(ctx context.Context, text string, keys []patterns.Key) (*patterns.Snapshot, error) {
	var snapshot patterns.Snapshot
	if err := c.post(ctx, valuesPath, request{Text: text, Kinds: keys}, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) post(ctx context.Context, path string, body request, out any) error {
	if body.Kinds == nil {
		body.Kinds = []patterns.Key{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode recognizer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create recognizer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("recognizer request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Recognizer call completed",
		zap.String("path", path),
		zap.Int("kinds", len(body.Kinds)),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode recognizer response: %w", err)
	}
	return nil
}
