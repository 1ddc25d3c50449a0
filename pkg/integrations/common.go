package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeatlas/codeatlas/pkg/httputil"
	"github.com/codeatlas/codeatlas/pkg/observability"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a requested resource doesn't exist on the service.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for service requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Client provides shared HTTP functionality for all service clients.
// It handles retry logic, status classification, and common request headers.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(),
		headers: headers,
	}
}

// PostJSON performs an HTTP POST with a JSON body, retrying transient
// failures, and JSON-decodes the response into v.
func (c *Client) PostJSON(ctx context.Context, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return httputil.RetryWithBackoff(ctx, func() error {
		rc, err := c.doRequest(ctx, http.MethodPost, url, payload)
		if err != nil {
			return err
		}
		defer rc.Close()
		return json.NewDecoder(rc).Decode(v)
	})
}

// GetJSON performs an HTTP GET with retry and JSON-decodes the response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		rc, err := c.doRequest(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		defer rc.Close()
		return json.NewDecoder(rc).Decode(v)
	})
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte) (io.ReadCloser, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	observability.HTTP().OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	observability.HTTP().OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
