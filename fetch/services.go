package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxRawBytes caps one raw-bytes download (8 MiB).
const maxRawBytes = 8 << 20

// BlurbClient fetches bounded-length text snippets from the secondary
// description service. It is not throttled; only graph retrieval is.
type BlurbClient struct {
	base      string
	maxLength int
	client    *http.Client
	logger    *slog.Logger
}

// NewBlurbClient creates a client for the text-snippet service rooted at
// base. maxLength bounds the snippet length requested per call.
func NewBlurbClient(base string, maxLength int, timeout time.Duration, logger *slog.Logger) *BlurbClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &BlurbClient{
		base:      base,
		maxLength: maxLength,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Blurb retrieves the text snippet for a service key. A non-success status
// is returned as a StatusError so callers can decide to skip the field.
func (c *BlurbClient) Blurb(ctx context.Context, key string) (string, error) {
	u, err := url.Parse(joinPath(c.base, key))
	if err != nil {
		return "", fmt.Errorf("blurb URL: %w", err)
	}
	q := u.Query()
	q.Set("maxlength", strconv.Itoa(c.maxLength))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("blurb %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("blurb %s: %w", key, &StatusError{Code: resp.StatusCode})
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRawBytes))
	if err != nil {
		return "", fmt.Errorf("blurb %s: %w", key, err)
	}
	return string(body), nil
}

// MediaClient fetches binary payloads from the secondary raw-bytes service.
type MediaClient struct {
	base   string
	client *http.Client
	logger *slog.Logger
}

// NewMediaClient creates a client for the raw-bytes service rooted at base.
func NewMediaClient(base string, timeout time.Duration, logger *slog.Logger) *MediaClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &MediaClient{
		base:   base,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Raw downloads the binary content for a service key, capped at 8 MiB.
func (c *MediaClient) Raw(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinPath(c.base, key), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("raw %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("raw %s: %w", key, &StatusError{Code: resp.StatusCode})
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRawBytes))
	if err != nil {
		return nil, fmt.Errorf("raw %s: %w", key, err)
	}
	return body, nil
}

// joinPath appends a key to a service base, tolerating a missing trailing
// slash on the base.
func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	if base[len(base)-1] != '/' {
		base += "/"
	}
	return base + key
}
