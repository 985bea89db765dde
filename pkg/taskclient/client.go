// Package taskclient is a typed HTTP client for the task API. It exposes
// the task collection as Go methods, maps every failure onto a small error
// taxonomy, and manages a bearer credential per client instance.
//
// The client never retries and never logs. Callers that want retries wrap
// calls and consult Retryable; callers that want logs inspect the returned
// errors.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 4 << 20
)

// Doer is the subset of http.Client the client needs. Satisfied by
// *http.Client and easy to stub in tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one task API endpoint. Methods are safe for concurrent
// use; the held credential is read and replaced atomically.
type Client struct {
	baseURL    string
	httpClient Doer
	userAgent  string
	timeout    time.Duration

	tokenMu sync.RWMutex
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout sets the budget applied to calls whose context carries no
// deadline. Zero disables the default budget.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithToken seeds the bearer credential, as if Login had succeeded.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// New creates a Client for the API rooted at baseURL, for example
// "http://localhost:8085". A trailing slash is tolerated.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("task api: base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("task api: invalid base url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("task api: invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  "taskapp-client/1.0",
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer credential used by subsequent calls.
// Calls already in flight keep the credential they started with.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

// ClearToken drops the held credential. Subsequent calls are anonymous.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the held credential and whether one is set.
func (c *Client) Token() (string, bool) {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token, c.token != ""
}

// do runs one HTTP exchange and returns the raw body of a 2xx response.
// Every non-2xx response is converted by responseError; a 401 additionally
// clears the held credential.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	op := method + " " + path

	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("task api: encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("task api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode == http.StatusUnauthorized {
			c.ClearToken()
		}
		return nil, responseError(resp.StatusCode, data)
	}
	return data, nil
}

func decodeInto[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("task api: decode response: %w", err)
	}
	return out, nil
}
