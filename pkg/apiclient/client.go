// Package apiclient is the typed Go client for the claims backend. It
// mirrors the dashboard's HTTP layer: bearer-token injection, normalized
// error responses and a one-shot forced-logout hook on 401/403.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrNoToken is returned by authenticated calls when no token is stored.
// It is a local precondition failure, distinct from a transport error or
// a server-side 401.
var ErrNoToken = errors.New("apiclient: no access token stored")

// APIError is a non-2xx response, carrying the server's message when one
// was sent or a generic status message otherwise.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the claims backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu                   sync.Mutex
	token                string
	handlingUnauthorized bool
	onUnauthorized       func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUnauthorizedHandler installs the forced-logout hook. Whatever the
// number of concurrent requests hitting 401/403, the hook fires at most
// once per session; storing a new token re-arms it.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken stores the bearer token and re-arms the unauthorized hook.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.handlingUnauthorized = false
	c.mu.Unlock()
}

// Token returns the stored bearer token, if any.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// ClearSession drops the stored token.
func (c *Client) ClearSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// handleUnauthorized runs the forced-logout side effect exactly once even
// when several in-flight requests observe 401 at the same time.
func (c *Client) handleUnauthorized() {
	c.mu.Lock()
	if c.handlingUnauthorized {
		c.mu.Unlock()
		return
	}
	c.handlingUnauthorized = true
	c.token = ""
	fn := c.onUnauthorized
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// call issues a JSON request. Auth endpoints skip both token injection
// and the global unauthorized handler, matching the dashboard contract.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if authed {
		token := c.Token()
		if token == "" {
			return ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			c.handleUnauthorized()
		}
		return readAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("apiclient: decode response: %w", err)
		}
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
			return apiErr
		}
		if body.Error != "" {
			apiErr.Message = body.Error
			return apiErr
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}
