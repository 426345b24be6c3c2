// Package apiclient talks to the AlertAUTEC HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alertautec/alertautec/internal/ports"
)

var _ ports.Requester = (*Client)(nil)

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	Status  int
	Message string
	// Body is the decoded response body (JSON value, raw text, or nil).
	Body any
}

func (e *APIError) Error() string {
	return e.Message
}

// Config captures client construction options.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration
	Tokens  ports.TokenSource
	Client  *http.Client
	Logger  *slog.Logger
}

// Client performs JSON requests against the API base URL.
type Client struct {
	baseURL string
	tokens  ports.TokenSource
	client  *http.Client
	logger  *slog.Logger
}

// NewClient builds an API client. The base URL is required.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: baseURL,
		tokens:  cfg.Tokens,
		client:  hc,
		logger:  logger,
	}, nil
}

// Request sends one request and returns the decoded body. The session token,
// when present, is attached as a bearer credential. Non-2xx responses fail with *APIError.
func (c *Client) Request(ctx context.Context, in ports.APIRequest) (any, error) {
	req, err := c.newRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "api request", "method", req.Method, "path", in.Path)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, in.Path, err)
	}

	text, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	data := decodeBody(text)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, data),
			Body:    data,
		}
		c.logger.WarnContext(ctx, "api error",
			"method", req.Method,
			"path", in.Path,
			"status", resp.StatusCode,
			"error", apiErr.Message,
		)
		return nil, apiErr
	}

	return data, nil
}

func (c *Client) newRequest(ctx context.Context, in ports.APIRequest) (*http.Request, error) {
	method := in.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if in.Body != nil {
		b, err := json.Marshal(in.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+in.Path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, tokErr := c.tokens.Token(ctx)
		if tokErr != nil {
			return nil, fmt.Errorf("read session token: %w", tokErr)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func readBody(resp *http.Response) (string, error) {
	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		if closeErr := resp.Body.Close(); closeErr != nil {
			return "", errors.Join(
				fmt.Errorf("read response body: %w", readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return "", fmt.Errorf("read response body: %w", readErr)
	}
	if err := resp.Body.Close(); err != nil {
		return "", fmt.Errorf("close response body: %w", err)
	}
	return string(b), nil
}

// decodeBody returns nil for an empty body, the decoded JSON value when the
// body parses, and the raw text otherwise.
func decodeBody(text string) any {
	if text == "" {
		return nil
	}
	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return text
	}
	return data
}

// errorMessage picks the first usable of: "message" field, "error" field,
// the raw body, then a generic status line.
func errorMessage(status int, data any) string {
	if obj, ok := data.(map[string]any); ok {
		for _, key := range []string{"message", "error"} {
			if msg := messageValue(obj[key]); msg != "" {
				return msg
			}
		}
	}
	if msg := messageValue(data); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", status)
}

func messageValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
	case float64:
		if t == 0 {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
