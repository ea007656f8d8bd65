// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package encoder turns text into embedding vectors by calling an embedding
// server over HTTP.
//
// The server contract is a single endpoint:
//
//	POST {base}/embed  {"text": "...", "model": "..."}  ->  {"embedding": [...]}
package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shikisai/internal/logging"
	"github.com/tomtom215/shikisai/internal/metrics"
)

var (
	// ErrEmptyEmbedding means the server answered without a usable vector.
	ErrEmptyEmbedding = errors.New("encoder: empty embedding")

	// ErrEmptyText means there was nothing to encode.
	ErrEmptyText = errors.New("encoder: empty text")

	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("encoder unavailable")
)

// Encoder produces an embedding for a text.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Config configures the HTTP client.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables pacing
	Burst      int
	MaxRetries int // retries on HTTP 429
}

// StatusError is a non-success HTTP answer from the server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("encoder: unexpected status %d: %s", e.StatusCode, e.Body)
}

type embedRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Client calls the embedding server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a client for cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("encoder base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
	}, nil
}

// Encode returns the embedding of text.
func (c *Client) Encode(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	vec, err := c.encode(ctx, text)
	metrics.EncoderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EncoderRequests.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.EncoderRequests.WithLabelValues("success").Inc()
	return vec, nil
}

func (c *Client) encode(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Text: text, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	resp, err := c.doWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	for _, v := range out.Embedding {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("%w: non-finite value", ErrEmptyEmbedding)
		}
	}
	return out.Embedding, nil
}

// doWithRetry paces requests through the limiter and retries HTTP 429 with
// exponential backoff, honoring Retry-After.
func (c *Client) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}
		resp.Body.Close()

		delay := c.retryDelay * (1 << attempt)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = d
			}
		}
		logging.Warn().Dur("retry_delay", delay).Int("attempt", attempt+1).Int("max_retries", c.maxRetries).Msg("encoder rate limited (HTTP 429), retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}
