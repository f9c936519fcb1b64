package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// Client wraps every call to the remote aggregator backend. It owns the
// backend session cookies and transparently refreshes an expired session:
// on a 401 it issues one POST to the refresh path and retries the original
// request exactly once. A second 401 is propagated to the caller and the
// auth-failure hook fires, which triggers global sign-out.
type Client struct {
	baseURL     string
	refreshPath string
	http        *http.Client
	onAuthFail  func()
}

// Response is the outcome of a backend call: status code plus raw body.
// JSON bodies are decoded lazily so binary payloads (label PDFs) pass
// through untouched.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Message extracts the human-readable error the backend attaches to non-2xx
// responses. Falls back to a generic status line when the body carries none.
func (r *Response) Message() string {
	var payload struct {
		Message  string `json:"message"`
		MessageU string `json:"Message"`
		Error    string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.MessageU != "":
			return payload.MessageU
		case payload.Error != "":
			return payload.Error
		}
	}
	return fmt.Sprintf("HTTP %d", r.StatusCode)
}

type Option func(*Client)

// WithAuthFailureHook registers the callback invoked when a session refresh
// fails, i.e. when the backend no longer recognizes this client.
func WithAuthFailureHook(fn func()) Option {
	return func(c *Client) { c.onAuthFail = fn }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, refreshPath string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:     baseURL,
		refreshPath: refreshPath,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c
}

// Do performs one backend call. A non-nil body is JSON-encoded. Network
// failures come back as *NetworkError; HTTP responses of any status are
// returned as-is for the caller to interpret, except a 401 which goes
// through the one-shot refresh-and-retry described on Client.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || path == c.refreshPath {
		return resp, nil
	}

	slog.Warn("backend returned 401, attempting session refresh", "path", path)
	refreshResp, err := c.do(ctx, http.MethodPost, c.refreshPath, nil)
	if err != nil {
		return nil, err
	}
	if !refreshResp.OK() {
		if c.onAuthFail != nil {
			c.onAuthFail()
		}
		return resp, nil
	}
	return c.do(ctx, method, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// DoJSON performs a call and decodes a 2xx body into out (which may be nil).
// Non-2xx responses become a *StatusError carrying the backend's message.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{StatusCode: resp.StatusCode, BackendMessage: resp.Message()}
	}
	if out == nil {
		return nil
	}
	return resp.JSON(out)
}
