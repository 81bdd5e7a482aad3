// Package inference implements the remote model clients: the hosted
// HuggingFace-style inference endpoints and the OpenAI chat-completion
// client. Every failure collapses into *domain.ModelCallError so pipeline
// stages can fall back locally without inspecting transport details.
package inference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/out"
	"smartmail_server/pkg/httputil"
	"smartmail_server/pkg/logger"
)

// HFConfig configures the hosted inference client.
type HFConfig struct {
	APIKey       string
	SummaryURL   string
	SentimentURL string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	WaitCap      time.Duration // cap on the 503 estimated_time sleep
}

// HFClient calls HuggingFace-style inference endpoints:
// POST {"inputs": ..., "parameters": {...}} with bearer auth.
type HFClient struct {
	config HFConfig
	http   *http.Client
	log    *logger.Logger

	// sleep is swapped out in tests to avoid real delays.
	sleep func(context.Context, time.Duration) error
}

// NewHFClient creates the client using the shared pooled inference transport.
func NewHFClient(cfg HFConfig) *HFClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.WaitCap == 0 {
		cfg.WaitCap = 10 * time.Second
	}
	return &HFClient{
		config: cfg,
		http:   httputil.InferenceClient(),
		log:    logger.Default().WithField("adapter", "inference"),
		sleep:  sleepCtx,
	}
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// summaryCandidate is one element of the summarization response array.
type summaryCandidate struct {
	SummaryText string `json:"summary_text"`
}

// loadingResponse is the 503 body while a cold model warms up.
type loadingResponse struct {
	EstimatedTime float64 `json:"estimated_time"`
}

// Summarize implements out.InferenceClient.
func (c *HFClient) Summarize(ctx context.Context, text string, params out.SummaryParams) (string, error) {
	parameters := map[string]any{}
	if params.MaxLength > 0 {
		parameters["max_length"] = params.MaxLength
	}
	if params.MinLength > 0 {
		parameters["min_length"] = params.MinLength
	}

	body, err := c.call(ctx, c.config.SummaryURL, inferenceRequest{Inputs: text, Parameters: parameters})
	if err != nil {
		return "", err
	}

	var candidates []summaryCandidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		return "", domain.NewModelCallError(domain.FailureMalformed, err)
	}
	if len(candidates) == 0 || candidates[0].SummaryText == "" {
		return "", domain.NewModelCallError(domain.FailureMalformed, errors.New("no summary candidate in response"))
	}
	return candidates[0].SummaryText, nil
}

// Sentiment implements out.InferenceClient. The classification response is a
// nested array: one list of label/score pairs per input.
func (c *HFClient) Sentiment(ctx context.Context, text string) ([]domain.SentimentScore, error) {
	body, err := c.call(ctx, c.config.SentimentURL, inferenceRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	var nested [][]domain.SentimentScore
	if err := json.Unmarshal(body, &nested); err != nil {
		return nil, domain.NewModelCallError(domain.FailureMalformed, err)
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return nil, domain.NewModelCallError(domain.FailureMalformed, errors.New("no classification scores in response"))
	}
	return nested[0], nil
}

// call posts the payload and returns the raw 200 body, handling auth,
// model-loading retries, rate limits and transport timeouts.
func (c *HFClient) call(ctx context.Context, url string, payload inferenceRequest) ([]byte, error) {
	if c.config.APIKey == "" {
		return nil, domain.NewModelCallError(domain.FailureAuthMissing, errors.New("no inference API key configured"))
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewModelCallError(domain.FailureMalformed, err)
	}

	var lastErr *domain.ModelCallError
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		body, callErr := c.once(ctx, url, reqBody)
		if callErr == nil {
			return body, nil
		}
		lastErr = callErr

		switch callErr.Reason {
		case domain.FailureServiceUnavailable:
			wait := callErr.RetryAfter
			if wait <= 0 || wait > c.config.WaitCap {
				wait = c.config.WaitCap
			}
			c.log.WithField("wait_sec", wait.Seconds()).Debug("model loading, waiting before retry")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, domain.NewModelCallError(domain.FailureTimeout, err)
			}
		case domain.FailureTimeout:
			if err := c.sleep(ctx, c.config.RetryDelay); err != nil {
				return nil, domain.NewModelCallError(domain.FailureTimeout, err)
			}
		default:
			// Auth, rate-limit and parse failures are not retryable.
			return nil, callErr
		}
	}
	return nil, lastErr
}

// once performs a single HTTP round trip.
func (c *HFClient) once(ctx context.Context, url string, reqBody []byte) ([]byte, *domain.ModelCallError) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, domain.NewModelCallError(domain.FailureMalformed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewModelCallError(domain.FailureTimeout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.NewModelCallError(domain.FailureTimeout, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil

	case http.StatusServiceUnavailable:
		mce := domain.NewModelCallError(domain.FailureServiceUnavailable,
			fmt.Errorf("model unavailable: %s", truncateBody(body)))
		var loading loadingResponse
		if json.Unmarshal(body, &loading) == nil && loading.EstimatedTime > 0 {
			mce.RetryAfter = time.Duration(loading.EstimatedTime * float64(time.Second))
		}
		return nil, mce

	case http.StatusTooManyRequests:
		mce := domain.NewModelCallError(domain.FailureRateLimited,
			fmt.Errorf("rate limited: %s", truncateBody(body)))
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, perr := strconv.Atoi(ra); perr == nil {
				mce.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, mce

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.NewModelCallError(domain.FailureAuthMissing,
			fmt.Errorf("credential rejected with status %d", resp.StatusCode))

	default:
		return nil, domain.NewModelCallError(domain.FailureServiceUnavailable,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncateBody(body)))
	}
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
