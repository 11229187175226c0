// Package client provides an HTTP client for the comment store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/commentbox/internal/comment"
)

var (
	// ErrNetwork wraps transport failures: the store could not be reached
	// or the response body could not be read.
	ErrNetwork = errors.New("network failure")
	// ErrDecode wraps responses whose body is not the expected JSON.
	ErrDecode = errors.New("malformed response")
)

// StatusError is returned when the store answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error: %s", http.StatusText(e.Code))
}

// Client is an HTTP client for the comment store.
type Client struct {
	baseURL    string
	cookie     string
	httpClient *http.Client
}

// New creates a new store client. cookie is sent verbatim as the Cookie
// header when non-empty; the store uses it to identify the commenter.
func New(baseURL, cookie string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookie:     cookie,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithCookie returns a copy of the client that sends the given cookie.
func (c *Client) WithCookie(cookie string) *Client {
	cp := *c
	cp.cookie = cookie
	return &cp
}

// BaseURL returns the store root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListComments returns the comments of one thread, in store order.
func (c *Client) ListComments(ctx context.Context, hostname, target string) ([]*comment.Comment, error) {
	params := url.Values{}
	params.Set("hostname", hostname)
	params.Set("target", target)

	var comments []*comment.Comment
	if err := c.get(ctx, "/comments?"+params.Encode(), &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		return nil, fmt.Errorf("%w: null comment list", ErrDecode)
	}

	// A null entry would render as nothing useful.
	out := comments[:0]
	for _, comm := range comments {
		if comm != nil {
			out = append(out, comm)
		}
	}
	return out, nil
}

// PostComment creates a comment and returns the store's view of it.
func (c *Client) PostComment(ctx context.Context, payload comment.Payload) (*comment.Comment, error) {
	var comm comment.Comment
	if err := c.post(ctx, "/comments", payload, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// do executes an HTTP request and classifies failures.
func (c *Client) do(req *http.Request, result interface{}) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	slog.Debug("store request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			se.Message = errResp.Error
		}
		return se
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}

	return nil
}
