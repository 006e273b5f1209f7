// internal/monitorapi/client.go

// Package monitorapi is the HTTP client for the monitoring backend. Every
// response arrives in a {ok, data, error} envelope; the client unwraps it and
// maps ok:false onto APIError so callers deal in Go errors, not JSON shapes.
package monitorapi

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

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client talks to one monitoring backend. It is safe for concurrent use;
// per-request auth is carried by the token argument, not client state.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
}

// New builds a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("monitorapi: invalid base URL %q", baseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		log:     logger,
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// clientFor returns an HTTP client that attaches the bearer token, or the
// bare client for unauthenticated endpoints.
func (c *Client) clientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.httpc
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpc)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	hc := oauth2.NewClient(ctx, src)
	hc.Timeout = c.httpc.Timeout
	return hc
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	OK    *bool           `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// do issues one request and returns the unwrapped data payload.
//
// Unwrap rules: ok:false wins regardless of HTTP status; ok:true yields data;
// a body without an ok field is passed through as-is (older endpoints respond
// bare). Non-2xx with no envelope becomes a StatusError.
func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("monitorapi: encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("monitorapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.clientFor(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("monitorapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("monitorapi: read response: %w", err)
	}

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.OK != nil {
		if !*env.OK {
			msg := env.Error
			if msg == "" {
				msg = http.StatusText(resp.StatusCode)
			}
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, &StatusError{Code: resp.StatusCode, Body: msg}
			}
			return nil, &APIError{Message: msg}
		}
		return env.Data, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, token, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, token, http.MethodPost, path, nil, body)
}

func (c *Client) patch(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, token, http.MethodPatch, path, nil, body)
}

// Ping checks that the backend is reachable. Any HTTP answer counts; only a
// transport failure is an error.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("monitorapi: backend unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
