package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ayusman/guineaday/internal/engine"
	"github.com/ayusman/guineaday/internal/gesture"
	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/store"
)

type fakeController struct {
	eng     *engine.Engine
	remote  *gesture.RemoteSource
	preview []byte
}

func newFakeController(t *testing.T) *fakeController {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig(), engine.WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return &fakeController{eng: eng, remote: gesture.NewRemoteSource()}
}

func (f *fakeController) Engine() *engine.Engine        { return f.eng }
func (f *fakeController) Remote() *gesture.RemoteSource { return f.remote }
func (f *fakeController) Preview() []byte               { return f.preview }
func (f *fakeController) SetMode(m input.Mode) error    { return f.eng.SetMode(m) }

func TestServer_Health(t *testing.T) {
	s := New(Config{Controller: newFakeController(t)})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, ok := response["uptime"]; !ok {
			t.Error("expected 'uptime' field in response")
		}
		if response["clients"] != float64(0) {
			t.Errorf("expected 0 clients, got %v", response["clients"])
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_Routes(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	tests := []struct {
		name   string
		cfg    Config
		path   string
		status int
	}{
		{name: "sessions with store", cfg: Config{Store: st}, path: "/api/sessions", status: http.StatusOK},
		{name: "sessions without store", cfg: Config{}, path: "/api/sessions", status: http.StatusNotFound},
		{name: "state with controller", cfg: Config{Controller: newFakeController(t)}, path: "/api/state", status: http.StatusOK},
		{name: "state without controller", cfg: Config{}, path: "/api/state", status: http.StatusNotFound},
		{name: "stream without preview", cfg: Config{Controller: newFakeController(t)}, path: "/api/stream", status: http.StatusServiceUnavailable},
		{name: "unknown api path", cfg: Config{}, path: "/api/nonexistent", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(tt.cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("GET %s: expected status %d, got %d", tt.path, tt.status, rec.Code)
			}
		})
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>guinea pigs</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: dir})

	t.Run("serves index.html at root path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if rec.Body.String() != index {
			t.Errorf("expected body %q, got %q", index, rec.Body.String())
		}
	})

	t.Run("returns 404 for missing files", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nonexistent.html", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}
