// Package remote is the HTTP plumbing shared by the hosted embedding
// providers: JSON requests, throttling, retries and error decoding.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/logger"
)

const (
	// DefaultMaxRetries is how often a throttled or failed request is retried.
	DefaultMaxRetries = 2

	// DefaultRetryBackoff is the first retry delay; it doubles per attempt.
	DefaultRetryBackoff = 500 * time.Millisecond

	maxRetryAfter = 30 * time.Second
	maxErrorBody  = 4096
)

// Options configures a Client.
type Options struct {
	// Provider names the service in errors and logs.
	Provider string

	BaseURL string

	// Timeout bounds each request. Ignored when HTTPClient is set.
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// MaxRetries caps retries of 429 and 5xx responses. Negative disables them.
	MaxRetries int

	RetryBackoff time.Duration

	// Header is sent with every request.
	Header http.Header

	HTTPClient *http.Client
}

// Client sends JSON requests to one provider.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	header   http.Header
	retries  int
	backoff  time.Duration
}

// New creates a client from opts.
func New(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		provider: opts.Provider,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     client,
		header:   opts.Header.Clone(),
		retries:  opts.MaxRetries,
		backoff:  opts.RetryBackoff,
	}
	if c.retries == 0 {
		c.retries = DefaultMaxRetries
	}
	if c.retries < 0 {
		c.retries = 0
	}
	if c.backoff <= 0 {
		c.backoff = DefaultRetryBackoff
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// StatusError is a non-2xx response. It matches domain.ErrEmbedding.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Message)
}

// Unwrap lets errors.Is match domain.ErrEmbedding.
func (e *StatusError) Unwrap() error {
	return domain.ErrEmbedding
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Errorf returns an error wrapping domain.ErrEmbedding, prefixed with the
// provider name.
func (c *Client) Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrEmbedding, c.provider, fmt.Sprintf(format, args...))
}

// PostJSON sends in to path and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return c.Errorf("marshal request: %v", err)
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Get requests path and discards the body. A nil error means status 200.
func (c *Client) Get(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return c.Errorf("rate limit wait: %v", err)
			}
		}

		retryAfter, err := c.once(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || !statusErr.Retryable() || attempt >= c.retries {
			return err
		}

		delay := c.backoff << attempt
		if retryAfter > 0 {
			delay = retryAfter
		}
		logger.Debug("%s: %v, retrying in %s", c.provider, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return c.Errorf("%v (gave up: %v)", err, ctx.Err())
		case <-timer.C:
		}
	}
}

// once sends a single request. On a non-2xx response it returns a
// *StatusError and the server's Retry-After hint.
func (c *Client) once(ctx context.Context, method, path string, body []byte, out any) (time.Duration, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, c.Errorf("create request: %v", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, c.Errorf("send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseRetryAfter(resp.Header.Get("Retry-After")), &StatusError{
			Provider: c.provider,
			Code:     resp.StatusCode,
			Message:  ErrorMessage(raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, c.Errorf("decode response: %v", err)
	}
	return 0, nil
}

// ErrorMessage extracts a readable message from an error body. It accepts
// {"error":"msg"}, {"error":{"message":"msg"}} and plain text.
func ErrorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && len(envelope.Error) > 0 {
		var text string
		if json.Unmarshal(envelope.Error, &text) == nil {
			return text
		}
		var detail struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &detail) == nil && detail.Message != "" {
			return detail.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// parseRetryAfter reads a delay in seconds, capped at maxRetryAfter.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

// Float32s converts a decoded JSON vector.
func Float32s(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
