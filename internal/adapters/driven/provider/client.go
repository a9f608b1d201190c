// Package provider holds the plumbing shared by the hosted model adapters:
// a JSON-over-HTTP client and the system prompt fallback.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrorReporter is implemented by response types that carry an API error message.
type ErrorReporter interface {
	ErrorMessage() string
}

// APIError is a failure reported by a provider API.
type APIError struct {
	// Provider names the API, e.g. "openai".
	Provider string

	// Status is the HTTP status, or zero when the API reported an error in a 200 response.
	Status int

	// Message is the API's error message, or the raw response body.
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Message)
}

// Client sends JSON requests to one provider API.
type Client struct {
	name    string
	baseURL string
	headers map[string]string
	http    *http.Client
}

// NewClient creates a client for the API at baseURL.
// headers are set on every request.
func NewClient(name, baseURL string, timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		name:    name,
		baseURL: baseURL,
		headers: headers,
		http:    &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name used in errors.
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON posts in to path and decodes the response into out.
// Non-200 responses and errors reported through ErrorReporter become *APIError.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	decodeErr := json.Unmarshal(body, out)
	message := ""
	if r, ok := out.(ErrorReporter); ok && decodeErr == nil {
		message = r.ErrorMessage()
	}

	switch {
	case status != http.StatusOK && message != "":
		return &APIError{Provider: c.name, Status: status, Message: message}
	case status != http.StatusOK:
		return &APIError{Provider: c.name, Status: status, Message: string(body)}
	case decodeErr != nil:
		return fmt.Errorf("%s: decode response: %w", c.name, decodeErr)
	case message != "":
		return &APIError{Provider: c.name, Message: message}
	}
	return nil
}

// Ping fetches path and fails unless the API answers 200.
func (c *Client) Ping(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create ping request: %w", c.name, err)
	}

	status, body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s: ping failed: %w", c.name, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s: API returned status %d: %s", c.name, status, string(body))
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
