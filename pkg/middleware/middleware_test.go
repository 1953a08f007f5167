package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/inspector/pkg/middleware"
)

func TestApplyOrder(t *testing.T) {
	var order []string
	var stack middleware.Stack

	for _, name := range []string{"first", "second"} {
		stack.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}, nil)
	}

	if stack.Len() != 2 {
		t.Fatalf("stack length: got %d, want 2 (nil entries skipped)", stack.Len())
	}

	handler := stack.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if len(order) != 3 {
		t.Fatalf("execution count: got %d, want 3", len(order))
	}
	if order[0] != "first" || order[1] != "second" || order[2] != "handler" {
		t.Errorf("order: got %v, want [first second handler]", order)
	}
}

func corsHandler(cfg *middleware.CORSConfig) http.Handler {
	return middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://example.com")
	corsHandler(&middleware.CORSConfig{Enabled: false}).ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS headers should not be set when disabled")
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         3600,
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/summaries/export", nil)
	req.Header.Set("Origin", "http://example.com")
	corsHandler(cfg).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Errorf("allow-origin: got %s, want http://example.com", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
		t.Errorf("expose-headers: got %s, want Content-Disposition", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("vary: got %s, want Origin", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Errorf("allow-methods belongs on preflight only, got %s", got)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("OPTIONS", "/summaries/export", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	corsHandler(cfg).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("allow-methods: got %s", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("max-age: got %s, want 3600", got)
	}
}

func TestCORSWildcardOrigin(t *testing.T) {
	tests := []struct {
		name        string
		credentials bool
		want        string
	}{
		{"anonymous", false, "*"},
		{"credentialed echoes origin", true, "http://tablet.plant4.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &middleware.CORSConfig{Enabled: true, Origins: []string{"*"}, AllowCredentials: tt.credentials}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Origin", "http://tablet.plant4.example")
			corsHandler(cfg).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("allow-origin: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"http://allowed.com"},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://denied.com")
	corsHandler(cfg).ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("should not set allow-origin for disallowed origin")
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://example.com"},
		AllowedMethods: []string{"GET", "POST"},
	}

	var handlerCalled bool
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status: got %d, want 204", rec.Code)
	}
	if handlerCalled {
		t.Error("handler should not be called for preflight")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/", nil))
	if !handlerCalled {
		t.Error("plain OPTIONS should reach the handler")
	}
}

func TestCORSCredentials(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://example.com"},
		AllowCredentials: true,
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://example.com")
	corsHandler(cfg).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow-credentials: got %s, want true", got)
	}
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"success", http.StatusOK, "level=INFO"},
		{"client error", http.StatusUnprocessableEntity, "level=WARN"},
		{"server error", http.StatusGatewayTimeout, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("POST", "/sessions/abc/next", nil))

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			out := buf.String()
			if !strings.Contains(out, tt.level) {
				t.Errorf("log %q missing %s", out, tt.level)
			}
			if !strings.Contains(out, "uri=/sessions/abc/next") {
				t.Errorf("log %q missing uri", out)
			}
		})
	}
}

func TestCORSConfigFinalizeDefaults(t *testing.T) {
	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !slices.Equal(cfg.AllowedMethods, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}) {
		t.Errorf("allowed_methods: got %v", cfg.AllowedMethods)
	}
	if len(cfg.AllowedHeaders) != 2 {
		t.Errorf("allowed_headers: got %d, want 2", len(cfg.AllowedHeaders))
	}
	if len(cfg.ExposedHeaders) != 1 || cfg.ExposedHeaders[0] != "Content-Disposition" {
		t.Errorf("exposed_headers: got %v", cfg.ExposedHeaders)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max_age: got %d, want 3600", cfg.MaxAge)
	}
}

func TestCORSConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.com, http://b.com,")
	t.Setenv("TEST_CORS_CREDS", "true")

	env := &middleware.CORSEnv{
		Enabled:          "TEST_CORS_ENABLED",
		Origins:          "TEST_CORS_ORIGINS",
		AllowCredentials: "TEST_CORS_CREDS",
	}

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled should be true")
	}
	if len(cfg.Origins) != 2 {
		t.Fatalf("origins: got %d, want 2", len(cfg.Origins))
	}
	if cfg.Origins[0] != "http://a.com" || cfg.Origins[1] != "http://b.com" {
		t.Errorf("origins: got %v", cfg.Origins)
	}
	if !cfg.AllowCredentials {
		t.Error("allow_credentials should be true")
	}
}

func TestCORSConfigFinalizeRejects(t *testing.T) {
	t.Run("malformed bool", func(t *testing.T) {
		t.Setenv("TEST_CORS_ENABLED", "sometimes")
		cfg := middleware.CORSConfig{}
		err := cfg.Finalize(&middleware.CORSEnv{Enabled: "TEST_CORS_ENABLED"})
		if err == nil || !strings.Contains(err.Error(), "TEST_CORS_ENABLED") {
			t.Errorf("error = %v, want it to name TEST_CORS_ENABLED", err)
		}
	})

	t.Run("malformed max age", func(t *testing.T) {
		t.Setenv("TEST_CORS_MAX_AGE", "1h")
		cfg := middleware.CORSConfig{}
		if err := cfg.Finalize(&middleware.CORSEnv{MaxAge: "TEST_CORS_MAX_AGE"}); err == nil {
			t.Error("expected error for non-numeric max age")
		}
	})

	for _, origin := range []string{"plant4.example", "https://plant4.example/app"} {
		t.Run(origin, func(t *testing.T) {
			cfg := middleware.CORSConfig{Origins: []string{origin}}
			if err := cfg.Finalize(nil); err == nil {
				t.Errorf("origin %q should be rejected", origin)
			}
		})
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{
		Enabled:        false,
		Origins:        []string{"http://base.com"},
		AllowedMethods: []string{"GET"},
		MaxAge:         3600,
	}

	overlay := middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"http://overlay.com"},
		MaxAge:  7200,
	}

	base.Merge(&overlay)

	if !base.Enabled {
		t.Error("enabled should be true after merge")
	}
	if len(base.Origins) != 1 || base.Origins[0] != "http://overlay.com" {
		t.Errorf("origins: got %v", base.Origins)
	}
	if len(base.AllowedMethods) != 1 {
		t.Errorf("allowed_methods should survive merge: got %v", base.AllowedMethods)
	}
	if base.MaxAge != 7200 {
		t.Errorf("max_age: got %d, want 7200", base.MaxAge)
	}
}
