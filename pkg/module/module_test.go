package module_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/JaimeStill/inspector/pkg/module"
)

func mustNew(t *testing.T, prefix string, inner http.Handler) *module.Module {
	t.Helper()
	m, err := module.New(prefix, inner)
	if err != nil {
		t.Fatalf("New(%q) error = %v", prefix, err)
	}
	return m
}

func TestNewValidPrefix(t *testing.T) {
	for _, prefix := range []string{"/api", "/docs"} {
		t.Run(prefix, func(t *testing.T) {
			m := mustNew(t, prefix, http.NewServeMux())
			if m.Prefix() != prefix {
				t.Errorf("prefix: got %s, want %s", m.Prefix(), prefix)
			}
		})
	}
}

func TestNewInvalidPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"bare slash", "/"},
		{"nested path", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := module.New(tt.prefix, http.NewServeMux()); err == nil {
				t.Errorf("New(%q) should fail", tt.prefix)
			}
		})
	}
}

func TestServePrefixStripping(t *testing.T) {
	mux := http.NewServeMux()

	var receivedPath string
	mux.HandleFunc("GET /inspections/{id}", func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	m := mustNew(t, "/api", mux)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/api/inspections/42", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if receivedPath != "/inspections/42" {
		t.Errorf("inner path: got %s, want /inspections/42", receivedPath)
	}
}

func TestServeRootPath(t *testing.T) {
	mux := http.NewServeMux()

	var receivedPath string
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
	})

	m := mustNew(t, "/api", mux)
	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if receivedPath != "/" {
		t.Errorf("root path: got %s, want /", receivedPath)
	}
}

func TestModuleMiddlewareComposedOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	m := mustNew(t, "/api", mux)

	var built, called atomic.Int32
	m.Use(func(next http.Handler) http.Handler {
		built.Add(1)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called.Add(1)
			next.ServeHTTP(w, r)
		})
	})

	for range 3 {
		m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))
	}

	if got := called.Load(); got != 3 {
		t.Errorf("middleware calls: got %d, want 3", got)
	}
	if got := built.Load(); got != 1 {
		t.Errorf("middleware compositions: got %d, want 1", got)
	}
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /parts/lines", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api"))
	})

	router := module.NewRouter()
	if err := router.Mount(mustNew(t, "/api", apiMux)); err != nil {
		t.Fatal(err)
	}
	router.Handle("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	router.Handle("GET /metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	}))

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{"api module", "/api/parts/lines", "api"},
		{"native func", "/healthz", "ok"},
		{"native handler", "/metrics", "metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rec.Code)
			}
			if body := rec.Body.String(); body != tt.wantBody {
				t.Errorf("body: got %s, want %s", body, tt.wantBody)
			}
		})
	}
}

func TestRouterUnmatched(t *testing.T) {
	router := module.NewRouter()
	if err := router.Mount(mustNew(t, "/api", http.NewServeMux())); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/unknown", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestRouterTrailingSlashNormalization(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /summaries", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router := module.NewRouter()
	if err := router.Mount(mustNew(t, "/api", mux)); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/summaries/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("trailing slash normalization: got %d, want 200", rec.Code)
	}
}

func TestRouterRejectsDuplicatePrefix(t *testing.T) {
	router := module.NewRouter()
	if err := router.Mount(mustNew(t, "/api", http.NewServeMux())); err != nil {
		t.Fatalf("first mount: %v", err)
	}
	if err := router.Mount(mustNew(t, "/api", http.NewServeMux())); err == nil {
		t.Error("second mount on /api should fail")
	}
}

type readiness struct {
	ready bool
	err   error
}

func (r readiness) Ready() bool { return r.ready }
func (r readiness) Err() error  { return r.err }

func TestRouterProbes(t *testing.T) {
	tests := []struct {
		name     string
		rd       readiness
		path     string
		wantCode int
		wantBody string
	}{
		{"healthz while starting", readiness{}, "/healthz", http.StatusOK, `"ok"`},
		{"readyz while starting", readiness{}, "/readyz", http.StatusServiceUnavailable, `"not ready"`},
		{"readyz after failure", readiness{err: errors.New("database: ping: refused")}, "/readyz", http.StatusServiceUnavailable, "database: ping: refused"},
		{"readyz when ready", readiness{ready: true}, "/readyz", http.StatusOK, `"ready"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := module.NewRouter()
			router.Probes(tt.rd)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %s does not contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServeLeavesCallerRequestUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /parts/codes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	m := mustNew(t, "/api", mux)

	req := httptest.NewRequest("GET", "/api/parts/codes?line=A", nil)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if req.URL.Path != "/api/parts/codes" {
		t.Errorf("caller path rewritten to %s", req.URL.Path)
	}
}
