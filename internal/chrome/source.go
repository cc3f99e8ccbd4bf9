package chrome

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

const maxPartialSize = 1 << 20

// Source yields named partials such as "head.html".
type Source interface {
	Partial(ctx context.Context, name string) ([]byte, error)
}

// FSSource reads partials from a filesystem.
type FSSource struct {
	FS fs.FS
}

// Partial implements Source.
func (s FSSource) Partial(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(s.FS, name)
}

// HTTPSource fetches partials relative to a base URL, bypassing caches.
type HTTPSource struct {
	Base   string
	client *http.Client
}

// NewHTTPSource builds an HTTP partial source. A nil client gets a 5s timeout.
func NewHTTPSource(base string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPSource{Base: strings.TrimRight(base, "/") + "/", client: client}
}

// Partial implements Source.
func (s *HTTPSource) Partial(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Base+name, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %s", s.Base+name, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPartialSize))
}
