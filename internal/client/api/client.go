package api

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
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/virapagina/virapagina/internal/common"
	"github.com/virapagina/virapagina/internal/logging"
)

// TokenSource yields the bearer token for the next request. An empty
// token means the request is sent anonymously.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

const (
	defaultTimeout       = 10 * time.Second
	defaultRetryInterval = 250 * time.Millisecond

	// larger response bodies fail with ErrResponseTooLarge
	maxBodySize = 4 << 20
)

type Client struct {
	baseURL       *url.URL
	http          *http.Client
	tokens        TokenSource
	log           logging.Logger
	retries       int
	retryInterval time.Duration
	newRequestID  func() string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetries sets how many times a GET is retried after the first attempt.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRetryInterval sets the first backoff interval.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) { c.retryInterval = d }
}

// NewClient builds a client for the backend at baseURL. tokens may be nil.
func NewClient(baseURL string, tokens TokenSource, log logging.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	c := &Client{
		baseURL:       u,
		http:          &http.Client{Timeout: defaultTimeout},
		tokens:        tokens,
		log:           log.With("component", "api"),
		retries:       2,
		retryInterval: defaultRetryInterval,
		newRequestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

// do sends the call and returns the raw response body of a 2xx response.
// GETs are retried while the backend is unavailable.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	if cl.method != http.MethodGet || c.retries == 0 {
		return c.send(ctx, cl, payload)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), ctx)

	attempt := 0
	return backoff.RetryNotifyWithData(func() ([]byte, error) {
		attempt++
		body, err := c.send(ctx, cl, payload)
		if err != nil && !errors.Is(err, ErrUnavailable) {
			return nil, backoff.Permanent(err)
		}
		return body, err
	}, policy, func(err error, next time.Duration) {
		c.log.Debug(ctx, "retrying request", "method", cl.method, "path", cl.path, "attempt", attempt, "next", next, "error", err)
	})
}

func (c *Client) send(ctx context.Context, cl call, payload []byte) ([]byte, error) {
	u := c.baseURL.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	reqID := c.newRequestID()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	req.Header.Set("Accept", common.JSONContentType)
	if payload != nil {
		req.Header.Set(common.ContentTypeHeaderName, common.JSONContentType)
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	c.log.Debug(ctx, "request", "method", cl.method, "path", cl.path, "request_id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if len(data) > maxBodySize {
		c.log.Warn(ctx, "response body over limit", "method", cl.method, "path", cl.path, "limit", maxBodySize, "request_id", reqID)
		return nil, fmt.Errorf("%w: %s %s exceeds %d bytes", ErrResponseTooLarge, cl.method, cl.path, maxBodySize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug(ctx, "request failed", "method", cl.method, "path", cl.path, "status", resp.StatusCode, "request_id", reqID)
		return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage pulls "message" out of an error body. It is either a string
// or a list of validation messages.
func errorMessage(body []byte) string {
	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return strings.TrimSpace(string(body))
	}
	switch m := parsed.Path("message").Data().(type) {
	case string:
		return m
	case []any:
		parts := make([]string, 0, len(m))
		for _, p := range m {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func decodeInto(body []byte, what string, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return shapeError(what, err)
	}
	return nil
}
