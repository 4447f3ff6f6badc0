// Package client talks to the guidance backend's REST API. It is the single
// place responses are normalized: callers receive typed values, and
// collections are never nil.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"eduguide/logger"
	"eduguide/storage"
)

// TokenSource supplies the bearer token for a request. An empty token
// means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StoredToken reads the token from local storage on every request.
type StoredToken struct {
	Storage storage.LocalStorage
}

func (s StoredToken) Token(ctx context.Context) string {
	if s.Storage == nil {
		return ""
	}
	token, ok, err := s.Storage.Get(ctx, storage.KeyAuthToken)
	if err != nil || !ok {
		return ""
	}
	return token
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *logger.Logger
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	tokens     TokenSource
	httpClient *http.Client
	log        *logger.Logger
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		tokens:     opts.Tokens,
		httpClient: hc,
		log:        log.With("component", "api_client"),
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) setHeaders(ctx context.Context, req *http.Request, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token(ctx)); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// do sends the request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, method string, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	c.setHeaders(ctx, req, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	c.log.Debug("api request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseHTTPError(resp.StatusCode, raw)
	}
	return raw, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedPayloadError{What: "response for " + path, Err: err}
	}
	return nil
}
