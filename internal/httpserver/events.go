package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	mw "github.com/agrotern2025/agrotern/internal/middleware"
	"github.com/agrotern2025/agrotern/internal/platform/httpx"
	"github.com/agrotern2025/agrotern/internal/platform/requestctx"
)

// cartChangedEvent is the SSE event name every cart notification is sent as.
const cartChangedEvent = "cart-changed"

var keepAliveInterval = 25 * time.Second

// Events streams cart change notifications to one tab as server-sent events.
// The tab id comes from the X-Tab-ID header or the tab query parameter.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)
	tab := requestctx.Tab(ctx)
	if tab == "" {
		s.writeError(w, r, httpx.NewError("missing_tab", "tab id is required", http.StatusBadRequest))
		return
	}
	rc := http.NewResponseController(w)

	sub := s.cfg.Hub.Subscribe(mw.GetSession(r).ID, tab)
	defer sub.Close()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	// announce the retry delay so reconnects are paced
	if _, err := fmt.Fprint(w, "retry: 3000\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		logger.Warn("event stream cannot flush", zap.Error(err))
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: {\"kind\":%q,\"key\":%q}\n\n", cartChangedEvent, ev.Kind.String(), ev.Key); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
