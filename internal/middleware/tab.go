package middleware

import (
	"net/http"
	"regexp"

	"github.com/agrotern2025/agrotern/internal/platform/requestctx"
)

// TabHeader names the header the page script sends with its tab id.
const TabHeader = "X-Tab-ID"

var tabPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Tab records which browser tab issued the request, read from the X-Tab-ID
// header or the `tab` query parameter. Malformed ids are ignored.
func Tab(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tab := r.Header.Get(TabHeader)
		if tab == "" {
			tab = r.URL.Query().Get("tab")
		}
		if !tabPattern.MatchString(tab) {
			tab = ""
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithTab(r.Context(), tab)))
	})
}
