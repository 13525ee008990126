package luckperms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"
)

const (
	// APIKeyHeader carries the REST API key on every request
	APIKeyHeader = "X-API-KEY"

	defaultTimeout = 30 * time.Second
)

// Client represents a LuckPerms REST API client.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *clientMetrics
}

// NewClient creates a new LuckPerms client. baseURL must be absolute; a path
// prefix such as https://example.com/luckperms is kept in front of every endpoint.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, &ClientCreationError{Kind: KindURL, Err: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &ClientCreationError{Kind: KindURL, Err: fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)}
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")

	if !httpguts.ValidHeaderFieldValue(apiKey) {
		return nil, &ClientCreationError{Kind: KindHTTP, Err: ErrInvalidAPIKey}
	}

	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.userAgent != "" && !httpguts.ValidHeaderFieldValue(o.userAgent) {
		return nil, &ClientCreationError{Kind: KindHTTP, Err: fmt.Errorf("invalid user agent %q", o.userAgent)}
	}

	httpClient := http.Client{Timeout: defaultTimeout}
	if o.httpClient != nil {
		httpClient = *o.httpClient
	}
	if o.timeout > 0 {
		httpClient.Timeout = o.timeout
	}

	header := http.Header{}
	header.Set(APIKeyHeader, apiKey)
	if o.userAgent != "" {
		header.Set("User-Agent", o.userAgent)
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = &headerTransport{base: base, header: header}

	return &Client{
		baseURL:    u,
		httpClient: &httpClient,
		logger:     logger,
		metrics:    newClientMetrics(o.registerer, logger),
	}, nil
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// headerTransport adds fixed headers to every outgoing request
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, values := range t.header {
		req.Header[key] = values
	}
	return t.base.RoundTrip(req)
}

// call describes one API request
type call struct {
	op     string
	method string
	path   []string
	query  url.Values
	body   any
}

// endpoint joins escaped path segments onto the base URL
func (c *Client) endpoint(segments ...string) (*url.URL, error) {
	var sb strings.Builder
	sb.WriteString(c.baseURL.String())
	for _, segment := range segments {
		if segment == "" {
			return nil, ErrEmptyPathSegment
		}
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(segment))
	}
	return url.Parse(sb.String())
}

// do performs a request and decodes a successful response into out if non-nil
func (c *Client) do(ctx context.Context, r call, out any) error {
	_, err := c.send(ctx, r, out, false)
	return err
}

// send performs a request. Every failure is wrapped into a RequestError here, by the
// stage it happened in. With allowNotFound a 404 yields found=false and no error.
func (c *Client) send(ctx context.Context, r call, out any, allowNotFound bool) (found bool, err error) {
	u, err := c.endpoint(r.path...)
	if err != nil {
		return false, &RequestError{Kind: KindURL, Op: r.op, Err: err}
	}
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return false, &RequestError{Kind: KindJSON, Op: r.op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return false, &RequestError{Kind: KindHTTP, Op: r.op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(r.op, "error", time.Since(start))
		c.logger.Debug().
			Err(err).
			Str("operation", r.op).
			Str("method", r.method).
			Str("url", u.String()).
			Msg("LuckPerms API request failed")
		return false, &RequestError{Kind: KindHTTP, Op: r.op, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.observe(r.op, strconv.Itoa(resp.StatusCode), elapsed)

	c.logger.Debug().
		Str("operation", r.op).
		Str("method", r.method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("LuckPerms API request")

	if err != nil {
		return false, &RequestError{Kind: KindHTTP, Op: r.op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if allowNotFound && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &RequestError{Kind: KindHTTP, Op: r.op, Err: newAPIError(resp.StatusCode, respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return false, &RequestError{Kind: KindJSON, Op: r.op, Err: fmt.Errorf("failed to parse response: %w", err)}
		}
	}

	return true, nil
}

// Health retrieves the server health report
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, call{op: "Health", method: http.MethodGet, path: []string{"health"}}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TestConnection verifies the server is reachable, accepts the API key and reports healthy
func (c *Client) TestConnection(ctx context.Context) error {
	status, err := c.Health(ctx)
	if err != nil {
		return err
	}
	if !status.Healthy {
		return ErrUnhealthy
	}
	return nil
}
