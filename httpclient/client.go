// Package httpclient is the single pre-configured request sender used by
// every PCRS service: fixed base URL, JSON bodies, optional bearer token.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Client sends requests relative to baseURL. It does not retry.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource attaches "Authorization: Bearer" from ts to every request.
// A source returning errors.ErrNoSession sends the request anonymously.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokenSource = ts }
}

// New creates a client for the given base URL (e.g. "http://localhost:8000/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get is a convenience wrapper for GET requests with query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values, result any) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post is a convenience wrapper for POST requests.
func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Put is a convenience wrapper for PUT requests.
func (c *Client) Put(ctx context.Context, path string, body any, result any) error {
	return c.Do(ctx, http.MethodPut, path, body, result)
}

// Patch is a convenience wrapper for PATCH requests.
func (c *Client) Patch(ctx context.Context, path string, body any, result any) error {
	return c.Do(ctx, http.MethodPatch, path, body, result)
}

// Delete is a convenience wrapper for DELETE requests.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, result)
}

// Do executes a JSON request and decodes the JSON response into result.
func (c *Client) Do(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[httpclient.Do] marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("[httpclient.Do] create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, result)
}

func (c *Client) send(req *http.Request, result any) error {
	if err := c.authorize(req); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("request failed")
		return fmt.Errorf("%w: %s %s: %w", errors.ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", errors.ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("[httpclient.send] decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.tokenSource == nil {
		return nil
	}
	tok, err := c.tokenSource.Token()
	if errors.Is(err, errors.ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[httpclient.authorize] %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}
