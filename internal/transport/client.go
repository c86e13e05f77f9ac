// Package transport is the HTTP client for the research-assistant backend.
package transport

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
)

const (
	DefaultQueryTimeout  = 5 * time.Minute
	DefaultUploadTimeout = 10 * time.Minute

	// DefaultEmbeddingProvider is sent with uploads when none is configured
	DefaultEmbeddingProvider = "google"

	maxResponseBody = 4 << 20
)

// HTTPClient interface for HTTP requests (enables testing)
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Verify http.Client implements HTTPClient
var _ HTTPClient = (*http.Client)(nil)

// Client talks to the backend's /api/v1 endpoints
type Client struct {
	baseURL       string
	client        HTTPClient
	queryTimeout  time.Duration
	uploadTimeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) { cl.client = c }
}

// WithQueryTimeout bounds every non-upload request
func WithQueryTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.queryTimeout = d }
}

// WithUploadTimeout bounds document uploads
func WithUploadTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.uploadTimeout = d }
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{},
		queryTimeout:  DefaultQueryTimeout,
		uploadTimeout: DefaultUploadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health calls the backend root endpoint
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	ctx, cancel := c.withTimeout(ctx, c.queryTimeout)
	defer cancel()

	var raw json.RawMessage
	if err := c.doJSON(ctx, "health", http.MethodGet, "/", nil, &raw); err != nil {
		return HealthStatus{}, err
	}
	status := HealthStatus{Raw: string(raw)}
	_ = json.Unmarshal(raw, &status)
	return status, nil
}

// CreateSession asks the backend for a new session id
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	ctx, cancel := c.withTimeout(ctx, c.queryTimeout)
	defer cancel()

	var resp createSessionResponse
	if err := c.doJSON(ctx, "create session", http.MethodPost, "/api/v1/sessions", struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("create session: backend returned no session id")
	}
	return resp.SessionID, nil
}

// SubmitQuery sends a query within a session and returns the reply
func (c *Client) SubmitQuery(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	ctx, cancel := c.withTimeout(ctx, c.queryTimeout)
	defer cancel()

	var resp QueryResponse
	if err := c.doJSON(ctx, "query", http.MethodPost, "/api/v1/query", req, &resp); err != nil {
		return QueryResponse{}, err
	}
	return resp, nil
}

// History fetches the backend's record of a session. limit <= 0 means no limit.
func (c *Client) History(ctx context.Context, sessionID string, limit int) (HistoryResponse, error) {
	ctx, cancel := c.withTimeout(ctx, c.queryTimeout)
	defer cancel()

	path := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var resp HistoryResponse
	if err := c.doJSON(ctx, "history", http.MethodGet, path, nil, &resp); err != nil {
		return HistoryResponse{}, err
	}
	return resp, nil
}

func (c *Client) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, op, out)
}

func (c *Client) send(req *http.Request, op string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Body: data}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Body: data, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
