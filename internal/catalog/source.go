package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const maxFeedSize = 16 << 20

// FetchError reports a non-success response from the feed source.
type FetchError struct {
	URL        string
	Status     int
	StatusText string
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %d %s", e.URL, e.Status, e.StatusText)
}

// Source yields the raw feed document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// NewSource picks an HTTP or file source based on the location scheme.
// Locations without a scheme are treated as file paths.
func NewSource(location string, client *http.Client) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("catalog: feed location is required")
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse feed location: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPSource(location, client), nil
	case "file":
		return FileSource{Path: u.Path}, nil
	case "":
		return FileSource{Path: location}, nil
	default:
		return nil, fmt.Errorf("catalog: unsupported feed scheme %q", u.Scheme)
	}
}

// HTTPSource fetches the feed over HTTP, bypassing intermediary caches.
type HTTPSource struct {
	URL    string
	client *http.Client
}

// NewHTTPSource constructs an HTTP source. A nil client gets a 10s timeout default.
func NewHTTPSource(rawURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{URL: rawURL, client: client}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: s.URL, Status: resp.StatusCode, StatusText: statusText(resp)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return body, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// FileSource reads the feed from the local filesystem.
type FileSource struct {
	Path string
}

// Fetch implements Source. A missing file is reported as a 404 FetchError.
func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &FetchError{URL: s.Path, Status: http.StatusNotFound, StatusText: http.StatusText(http.StatusNotFound)}
	}
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return raw, nil
}
