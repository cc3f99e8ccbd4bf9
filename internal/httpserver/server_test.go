package httpserver

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/agrotern2025/agrotern/internal/cart"
	"github.com/agrotern2025/agrotern/internal/catalog"
	"github.com/agrotern2025/agrotern/internal/chrome"
	"github.com/agrotern2025/agrotern/internal/i18n"
	mw "github.com/agrotern2025/agrotern/internal/middleware"
	"github.com/agrotern2025/agrotern/locales"
	"github.com/agrotern2025/agrotern/templates"
)

const testFeed = `{"products": {
  "seeds": [
    {"title": "Pea A", "subcat": "peas", "brand": "yaskrava", "price": 100, "stock": 5, "image": "pea.png"},
    {"title": "Pea B", "subcat": "peas", "price": 45, "stock": 3},
    {"title": "Carrot", "subcat": "carrots", "price": null, "stock": 4},
    {"title": "Sold Out", "subcat": "cucumbers", "price": 30, "stock": 0}
  ],
  "fert": [
    {"title": "Humate", "price": 80, "stock": 10, "longDesc": "**Rich** humus"}
  ],
  "bulbs": []
}}`

var testPartials = fstest.MapFS{
	"head.html":   {Data: []byte(`<link rel="icon" href="/agrotern/favicon.ico">`)},
	"header.html": {Data: []byte(`<header class="site-header"><ul id="main-menu"><li><a href="/products">Товари</a></li><li><a href="/cart">Кошик <span id="cart-count">0</span></a></li></ul></header>`)},
	"footer.html": {Data: []byte(`<footer><span id="year"></span></footer>`)},
}

type staticSource []byte

func (s staticSource) Fetch(context.Context) ([]byte, error) { return s, nil }

type failingSource struct{}

func (failingSource) Fetch(context.Context) ([]byte, error) {
	return nil, &catalog.FetchError{URL: "feed", Status: http.StatusBadGateway, StatusText: "Bad Gateway"}
}

type testEnv struct {
	srv *httptest.Server
	hub *cart.Hub
}

func newTestServer(t *testing.T, source catalog.Source) *testEnv {
	t.Helper()
	bundle, err := i18n.LoadFS(locales.FS, "uk", []string{"uk", "en"})
	require.NoError(t, err)
	renderer, err := NewRenderer(templates.FS, bundle, false)
	require.NoError(t, err)
	tax, err := catalog.DefaultTaxonomy()
	require.NoError(t, err)
	cache, err := catalog.NewCache(source, nil)
	require.NoError(t, err)
	hub := cart.NewHub(nil)
	t.Cleanup(hub.Close)

	handler, err := NewHandler(Config{
		SiteRoot: "/agrotern",
		Catalog:  cache,
		Taxonomy: tax,
		Images:   catalog.NewImageResolver("/agrotern", "/agrotern/img/", "placeholder.png"),
		RichText: catalog.NewRichText(),
		Carts:    cart.NewMemoryBackend(),
		Hub:      hub,
		Bundle:   bundle,
		Chrome:   chrome.NewLoader(chrome.FSSource{FS: testPartials}, chrome.WithSiteRoot("/agrotern")),
		Renderer: renderer,
		Session:  mw.SessionOptions{SigningKey: []byte("test-signing-key")},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, hub: hub}
}

// visitor is a browser with its own cookie jar, i.e. its own cart.
type visitor struct {
	t      *testing.T
	env    *testEnv
	client *http.Client
	csrf   string
}

func newVisitor(t *testing.T, env *testEnv) *visitor {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	v := &visitor{t: t, env: env, client: &http.Client{Jar: jar}}
	doc := v.page("/products")
	v.csrf = doc.Find(`meta[name="csrf-token"]`).AttrOr("content", "")
	require.NotEmpty(t, v.csrf)
	return v
}

func (v *visitor) do(method, path string, form url.Values, headers map[string]string) (*http.Response, string) {
	v.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, v.env.srv.URL+path, body)
	require.NoError(v.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	resp, err := v.client.Do(req)
	require.NoError(v.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(v.t, err)
	return resp, string(raw)
}

func (v *visitor) htmx(method, path string, form url.Values, extra map[string]string) (*http.Response, string) {
	headers := map[string]string{"HX-Request": "true", mw.CSRFHeader: v.csrf}
	for k, val := range extra {
		headers[k] = val
	}
	return v.do(method, path, form, headers)
}

func (v *visitor) page(path string) *goquery.Document {
	v.t.Helper()
	resp, body := v.do(http.MethodGet, path, nil, nil)
	require.Equal(v.t, http.StatusOK, resp.StatusCode, body)
	return parseHTML(v.t, body)
}

func (v *visitor) add(title string) (*http.Response, string) {
	return v.htmx(http.MethodPost, "/products/"+catalog.DeriveID("seeds", title)+"/cart", url.Values{}, nil)
}

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	return doc
}

func TestHealthz(t *testing.T) {
	env := newTestServer(t, staticSource(testFeed))
	resp, err := http.Get(env.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", strings.TrimSpace(string(raw)))
}
