package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStreamHandler(t *testing.T) {
	t.Run("unavailable without frames", func(t *testing.T) {
		h := NewStreamHandler(func() []byte { return nil })
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stream", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
		}
	})

	t.Run("only GET", func(t *testing.T) {
		h := NewStreamHandler(nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})

	t.Run("writes each frame once", func(t *testing.T) {
		frame := []byte{0xFF, 0xD8, 0xFF, 0xD9}
		h := NewStreamHandler(func() []byte { return frame })

		ctx, cancel := context.WithTimeout(context.Background(), 5*streamInterval)
		defer cancel()
		req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
		rec := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			h.ServeHTTP(rec, req)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("stream did not stop with the request context")
		}

		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
			t.Errorf("unexpected Content-Type %q", ct)
		}
		if n := strings.Count(rec.Body.String(), "--frame"); n != 1 {
			t.Errorf("expected 1 part for an unchanged frame, got %d", n)
		}
	})
}
