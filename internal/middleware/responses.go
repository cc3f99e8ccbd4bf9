package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agrotern2025/agrotern/internal/platform/httpx"
)

// WriteError answers htmx and JSON clients with the error envelope and
// browsers navigating directly with a plain-text error.
func WriteError(w http.ResponseWriter, r *http.Request, err httpx.Error) {
	if IsHTMX(r.Context()) || strings.HasPrefix(r.Header.Get("Accept"), "application/json") {
		httpx.WriteError(r.Context(), w, err)
		return
	}
	if err.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(err.RetryAfter.Round(time.Second)/time.Second)))
	}
	http.Error(w, err.Message, err.Status)
}

func writeError(w http.ResponseWriter, r *http.Request, err httpx.Error) {
	WriteError(w, r, err)
}
