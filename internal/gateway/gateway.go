// Package gateway is the HTTP client for the task tracker REST backend.
package gateway

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

	"github.com/protomem/taskdesk/internal/model"
)

const (
	_defaultTimeout  = 10 * time.Second
	_maxErrorBodyLen = 4 << 10
)

var ErrTimeout = errors.New("gateway timeout")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case model.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case model.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case model.ErrExists:
		return e.StatusCode == http.StatusConflict
	default:
		return false
	}
}

type Client struct {
	logger  *slog.Logger
	baseURL *url.URL
	timeout time.Duration
	http    *http.Client
}

func New(logger *slog.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway: unsupported scheme %q", u.Scheme)
	}

	if timeout <= 0 {
		timeout = _defaultTimeout
	}

	return &Client{
		logger:  logger.With("module", "gateway"),
		baseURL: u,
		timeout: timeout,
		http:    &http.Client{},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		js, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("gateway: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("gateway: %s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		"method", method, "path", path,
		"status", resp.StatusCode, "took", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s %s: %w", method, path, err)
	}
	return nil
}

// readErrorMessage extracts the "message" field the backend puts into error bodies.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, _maxErrorBodyLen))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var payload struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return strings.TrimSpace(string(raw))
	}

	switch msg := payload.Message.(type) {
	case string:
		return msg
	case []any:
		parts := make([]string, 0, len(msg))
		for _, m := range msg {
			parts = append(parts, fmt.Sprint(m))
		}
		return strings.Join(parts, "; ")
	}
	return payload.Error
}
