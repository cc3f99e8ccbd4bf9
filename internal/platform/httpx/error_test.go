package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	WriteError(ctx, rr, NewError("feed_unavailable", "feed\nfailed", http.StatusBadGateway))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Empty(t, rr.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "feed_unavailable", body["error"])
	assert.Equal(t, "feed failed", body["message"], "line breaks are flattened")
	assert.Equal(t, "req-1", body["request_id"])
	assert.EqualValues(t, 502, body["status"])
}

func TestUnavailableSetsRetryAfter(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(context.Background(), rr, Unavailable("storage_unavailable", "down", 1500*time.Millisecond))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
	assert.NotContains(t, rr.Body.String(), "request_id")
}

func TestNewErrorDefaults(t *testing.T) {
	err := NewError("boom", "boom", 0)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "boom: boom", err.Error())
}

func TestClipKeepsRunes(t *testing.T) {
	msg := strings.Repeat("ї", 300)
	got := NewError("x", msg, 400).Message
	assert.LessOrEqual(t, len(got), 512)
	assert.Equal(t, 256, len([]rune(got)))
}
