package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMemoizesFeed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(srv.Close)

	cache, err := NewCache(NewHTTPSource(srv.URL, srv.Client()), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Load(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	feed, err := cache.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, feed.Group("seeds"), 4)
	assert.Equal(t, int32(1), hits.Load(), "feed fetched once per cache lifetime")

	idx, err := cache.Index(context.Background())
	require.NoError(t, err)
	_, err = idx.Lookup("fert-1")
	assert.NoError(t, err)
}

func TestCacheReportsFetchError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "gone", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(srv.Close)

	cache, err := NewCache(NewHTTPSource(srv.URL, srv.Client()), nil)
	require.NoError(t, err)

	_, err = cache.Load(context.Background())
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "expected FetchError, got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
	assert.Equal(t, "Service Unavailable", fe.StatusText)
	assert.Contains(t, fe.Error(), "503 Service Unavailable")

	// failures are not memoized
	feed, err := cache.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, feed.Groups)
}

func TestNewSourceSelectsImplementation(t *testing.T) {
	src, err := NewSource("https://cdn.example.com/products.json", nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	src, err = NewSource("file:///srv/products.json", nil)
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "/srv/products.json"}, src)

	src, err = NewSource("public/data/products.json", nil)
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "public/data/products.json"}, src)

	_, err = NewSource("ftp://example.com/feed.json", nil)
	assert.Error(t, err)
	_, err = NewSource("  ", nil)
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o600))

	cache, err := NewCache(FileSource{Path: path}, nil)
	require.NoError(t, err)
	feed, err := cache.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, feed.Groups, 4)

	_, err = FileSource{Path: filepath.Join(dir, "missing.json")}.Fetch(context.Background())
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.Status)
}

func TestNewCacheRequiresSource(t *testing.T) {
	_, err := NewCache(nil, nil)
	assert.Error(t, err)
}

type gatedSource struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (s *gatedSource) Fetch(ctx context.Context) ([]byte, error) {
	close(s.started)
	<-s.release
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		s.ctxErr <- errors.New("fetch context has no deadline")
	} else {
		s.ctxErr <- ctx.Err()
	}
	return []byte(sampleFeed), nil
}

func TestCacheFetchSurvivesFirstCallerCancel(t *testing.T) {
	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{}), ctxErr: make(chan error, 1)}
	cache, err := NewCache(src, nil)
	require.NoError(t, err)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Load(firstCtx)
		firstErr <- err
	}()
	<-src.started

	secondFeed := make(chan *Feed, 1)
	go func() {
		feed, err := cache.Load(context.Background())
		assert.NoError(t, err)
		secondFeed <- feed
	}()

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled, "the cancelled caller stops waiting")

	close(src.release)
	require.NoError(t, <-src.ctxErr, "the shared fetch is not cancelled with its first caller")
	feed := <-secondFeed
	require.NotNil(t, feed)
	assert.Len(t, feed.Group("seeds"), 4)
}
