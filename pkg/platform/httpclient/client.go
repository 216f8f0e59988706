// Package httpclient is the shared outbound HTTP discipline for remote
// decode providers: tuned transport, bounded retries with exponential
// backoff and jitter, JSON request/response helpers.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// StatusError reports a non-2xx response after retries were exhausted or
// the status was not retryable.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == code
}

// Client wraps http.Client with retry semantics shared by every remote
// source. Transport failures, 5xx and 429 are retried with exponential
// backoff and jitter; other statuses return immediately.
type Client struct {
	http        *http.Client
	logger      *slog.Logger
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxAttempts bounds total attempts per call, first try included.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the first retry delay.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithMaxDelay caps the backoff delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. Tests use this to
// point at httptest servers.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New builds a Client with the given per-request timeout.
func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger:      slog.Default(),
		maxAttempts: 3,
		baseDelay:   200 * time.Millisecond,
		maxDelay:    5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// GetJSON issues a GET and decodes the 2xx JSON body into out.
// Returns the final status code and the number of attempts made.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, out any) (int, int, error) {
	return c.DoJSON(ctx, http.MethodGet, url, header, nil, out)
}

// PostJSON marshals body, issues a POST and decodes the 2xx JSON response
// into out. Returns the final status code and the number of attempts made.
func (c *Client) PostJSON(ctx context.Context, url string, header http.Header, body, out any) (int, int, error) {
	return c.DoJSON(ctx, http.MethodPost, url, header, body, out)
}

// DoJSON runs one JSON round trip with retries. A non-2xx final status
// comes back as both the status value and a *StatusError.
func (c *Client) DoJSON(ctx context.Context, method, url string, header http.Header, body, out any) (int, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, 0, fmt.Errorf("marshal request body: %w", err)
		}
	}

	var (
		lastStatus int
		lastErr    error
	)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, attempt-1); err != nil {
				return lastStatus, attempt - 1, err
			}
		}

		status, err := c.roundTrip(ctx, method, url, header, payload, out)
		lastStatus = status
		lastErr = err

		if err == nil {
			return status, attempt, nil
		}
		if !retryable(status, err) {
			return status, attempt, err
		}

		c.logger.WarnContext(ctx, "retryable request failure",
			"method", method,
			"url", url,
			"status", status,
			"attempt", attempt,
			"error", err,
		)
	}

	return lastStatus, c.maxAttempts, lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, url string, header http.Header, payload []byte, out any) (int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// retryable classifies transport errors, 5xx and 429 as worth retrying.
func retryable(status int, err error) bool {
	if err == nil {
		return false
	}
	if status == 0 {
		return true
	}
	return status >= 500 || status == http.StatusTooManyRequests
}

func (c *Client) sleep(ctx context.Context, retries int) error {
	delay := c.baseDelay << (retries - 1)
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	delay += time.Duration(rand.Int63n(int64(delay)/2 + 1)) //nolint:gosec // jitter doesn't need crypto rand

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
