package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Slack Web API root.
const DefaultBaseURL = "https://slack.com/api"

// maxAttempts bounds how many times a single logical call is tried. Rate
// limits sleep before the next attempt, every other failure retries
// immediately. Exhaustion is fatal: a history backfill is all-or-nothing per
// page.
const maxAttempts = 3

// outcome classifies one attempt. An explicit three-case result instead of
// overloading an error or a bool.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeRateLimited
	outcomeFatal
)

// Client issues authenticated GET requests against the Slack Web API and
// retries transient failures. It is safe for concurrent use; independent
// sweeps (history and the lookup-map fetches) share one Client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger

	// sleep waits out a rate limit. Swapped in tests so the retry-bound
	// tests don't actually wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient creates a client holding the caller's auth token.
func NewClient(token string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    newHTTPClient(60 * time.Second),
		logger:  logger,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClient returns a pooled HTTP client.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Get performs one logical API call: attach the token, issue the request,
// classify the result, and retry up to the attempt bound. A 429 sleeps wait
// before the next attempt; network errors, other non-200 statuses, empty
// bodies, and schema violations retry immediately. The raw body is returned
// once the envelope and schema checks pass.
//
// An envelope with ok=false is logged but still returned: list endpoints can
// report partial failures inside an otherwise usable page.
func (c *Client) Get(ctx context.Context, method string, params url.Values, schema *Schema, wait time.Duration) (json.RawMessage, error) {
	params.Set("token", c.token)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, out, err := c.attempt(ctx, method, params, schema)
		switch out {
		case outcomeOK:
			return body, nil
		case outcomeRateLimited:
			lastErr = err
			c.logger.Warn("rate limited, backing off",
				"method", method, "wait", wait, "attempt", attempt)
			if attempt < maxAttempts {
				if err := c.sleep(ctx, wait); err != nil {
					return nil, err
				}
			}
		case outcomeFatal:
			lastErr = err
			c.logger.Warn("request attempt failed",
				"method", method, "attempt", attempt, "err", err)
		}
	}
	return nil, fmt.Errorf("%s failed after %d attempts: %w", method, maxAttempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, method string, params url.Values, schema *Schema) (json.RawMessage, outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return nil, outcomeFatal, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, outcomeFatal, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, outcomeRateLimited, fmt.Errorf("HTTP 429")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, outcomeFatal, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, outcomeFatal, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil, outcomeFatal, fmt.Errorf("empty response body")
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, outcomeFatal, &SchemaError{Path: "$", Reason: err.Error()}
	}

	okVal, present := decoded["ok"]
	if !present {
		return nil, outcomeFatal, &SchemaError{Path: "$", Reason: `missing required key "ok"`}
	}
	if ok, _ := okVal.(bool); !ok {
		// Soft failure: the endpoint self-reported an error but the page
		// may still carry usable fields. The caller decides.
		errMsg, _ := decoded["error"].(string)
		c.logger.Warn("endpoint reported failure", "method", method, "error", errMsg)
	}

	if schema != nil {
		if err := schema.Validate(decoded); err != nil {
			return nil, outcomeFatal, err
		}
	}

	return body, outcomeOK, nil
}
