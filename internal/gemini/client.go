// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/codequill/internal/config"
	"github.com/jeranaias/codequill/internal/util"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 * 1024 * 1024

// Client talks to the Gemini generateContent API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	maxAttempts int
	backoff     time.Duration
	limiter     *rate.Limiter
}

// NewClient builds a client from configuration. The key may be empty;
// Generate then fails with ErrNotConfigured.
func NewClient(cfg config.GeminiConfig, apiKey string) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := time.Duration(cfg.RetryBackoffMs) * time.Millisecond
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: attempts,
		backoff:     backoff,
		limiter:     rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// SetKey replaces the API key in use, e.g. after setup completes.
func (c *Client) SetKey(key string) {
	c.apiKey = key
}

// Generate sends a system and user prompt to the given model and returns
// the response text. Network errors and rate limits are retried up to the
// configured attempt bound with a fixed backoff between tries. Auth and
// model failures are returned immediately.
func (c *Client) Generate(ctx context.Context, system, user, model string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if model == "" {
		return "", fmt.Errorf("%w: no model selected", ErrModelUnavailable)
	}

	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: user}}}},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			log.Printf("Retrying generation: attempt %d/%d model=%s key=%s",
				attempt, c.maxAttempts, model, util.MaskSecret(c.apiKey))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		text, err := c.doGenerate(ctx, url, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Only transient failures are worth another attempt.
		if !errors.Is(err, ErrNetwork) && !errors.Is(err, ErrRateLimited) {
			return "", err
		}
	}
	return "", lastErr
}

// doGenerate performs a single request/response cycle.
func (c *Client) doGenerate(ctx context.Context, url string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, data)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrNetwork, err)
	}

	text := strings.TrimSpace(parsed.text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ListModels fetches the models available to this key. Failures here are
// non-fatal for callers that fall back to the built-in catalog.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	url := c.baseURL + "/models"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, data)
	}

	var parsed modelsResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrNetwork, err)
	}
	return parsed.Models, nil
}

// classifyStatus maps a non-200 status to a sentinel error, keeping the
// server's message where one is present.
func classifyStatus(status int, body []byte) error {
	var apiErr apiErrorResponse
	msg := ""
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}

	wrap := func(sentinel error) error {
		if msg == "" {
			return fmt.Errorf("%w (HTTP %d)", sentinel, status)
		}
		return fmt.Errorf("%w: %s", sentinel, util.FirstLine(msg))
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return wrap(ErrAuth)
	case status == http.StatusTooManyRequests:
		return wrap(ErrRateLimited)
	case status == http.StatusNotFound:
		return wrap(ErrModelUnavailable)
	case status >= 500:
		return wrap(ErrNetwork)
	default:
		return wrap(ErrNetwork)
	}
}
