package middleware

import (
	"net/http"

	"github.com/agrotern2025/agrotern/internal/platform/httpx"
)

// CSRFHeader and CSRFField carry the session token on unsafe requests.
const (
	CSRFHeader = "X-CSRF-Token"
	CSRFField  = "csrf_token"
)

// CSRF verifies that modifying requests carry the session token, either in
// the X-CSRF-Token header (htmx) or the csrf_token form field.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if s.CSRFToken == "" {
			s.CSRFToken = newCSRFToken()
			s.MarkDirty()
		}
		if !isSafeMethod(r.Method) {
			token := r.Header.Get(CSRFHeader)
			if token == "" {
				token = r.PostFormValue(CSRFField)
			}
			if token == "" || token != s.CSRFToken {
				writeError(w, r, httpx.NewError("invalid_csrf_token", "invalid CSRF token", http.StatusForbidden))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CSRFToken returns the token to embed in pages for the current session.
func CSRFToken(r *http.Request) string {
	return GetSession(r).CSRFToken
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
