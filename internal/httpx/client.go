// Package httpx provides the shared HTTP client used by all batch jobs:
// bounded retries with exponential backoff, where 5xx and network errors are
// transient and 4xx is permanent.
package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 1

	// MaxBodySize caps how much of a response body is read back.
	MaxBodySize = int64(4 * 1024 * 1024)

	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second

	UserAgent = "siteops/1.0 (+https://github.com/studiofoks/siteops)"
)

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP status %d", e.StatusCode)
}

// Result is the outcome of a successful request, including how many attempts
// it took.
type Result struct {
	StatusCode int
	Body       []byte
	Attempts   int
}

// Client wraps http.Client with retry behavior.
type Client struct {
	httpClient *http.Client
	maxRetries uint64
}

// New creates a Client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: DefaultMaxRetries,
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func (c *Client) WithMaxRetries(max uint64) *Client {
	c.maxRetries = max
	return c
}

// Get issues a GET with retries.
func (c *Client) Get(ctx context.Context, url string) (*Result, error) {
	return c.Do(ctx, http.MethodGet, url, nil, "")
}

// Head issues a single HEAD request with no retries. Used for lightweight
// reachability checks where a failure is only a warning.
func (c *Client) Head(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build HEAD request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s failed: %w", url, err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodySize))
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Do issues a request with retries. A nil error means a 2xx response.
func (c *Client) Do(ctx context.Context, method, url string, body []byte, contentType string) (*Result, error) {
	var headers map[string]string
	if contentType != "" {
		headers = map[string]string{"Content-Type": contentType}
	}
	return c.DoWithHeaders(ctx, method, url, body, headers)
}

// DoWithHeaders is Do with arbitrary request headers, for authenticated APIs.
func (c *Client) DoWithHeaders(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Result, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff
	b.MaxInterval = maxBackoff

	bo := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	var result *Result
	attempts := 0

	op := func() error {
		attempts++
		res, err := c.doOnce(ctx, method, url, body, headers)
		if err != nil {
			// A dead caller context is permanent even when the error itself
			// looks like a transient timeout.
			if ctx.Err() != nil || !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = res
		return nil
	}

	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("%s %s failed after %d attempt(s): %w", method, url, attempts, err)
	}
	result.Attempts = attempts
	return result, nil
}

func (c *Client) doOnce(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Result, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request for %s: %w", method, url, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	return &Result{StatusCode: resp.StatusCode, Body: bodyBytes}, nil
}

// IsRetryable reports whether err is transient: 5xx responses, network
// failures, and request timeouts retry, 4xx does not. Client.Timeout expiry
// matches context.DeadlineExceeded through the url.Error chain, so only an
// explicit cancellation counts as permanent here; callers whose own context
// deadline passed are cut off by the retry loop instead.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 && statusErr.StatusCode <= 599
	}
	return true
}
