package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/inspector/pkg/handlers"
)

// Readiness is satisfied by the lifecycle coordinator. Err explains a
// failed startup and is nil while subsystems are still coming up.
type Readiness interface {
	Ready() bool
	Err() error
}

// Router sends /<prefix>/... requests to the mounted module with that prefix
// and everything else (probes, metrics) to a plain ServeMux.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// Handle registers an http.Handler on the fallback mux.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.native.Handle(pattern, handler)
}

// Mount claims m's prefix. Two modules cannot share a prefix.
func (r *Router) Mount(m *Module) error {
	if _, taken := r.modules[m.Prefix()]; taken {
		return fmt.Errorf("module prefix %s already mounted", m.Prefix())
	}
	r.modules[m.Prefix()] = m
	return nil
}

// Probes registers GET /healthz, which always answers ok, and GET /readyz,
// which answers 503 with the startup error until rd reports ready.
func (r *Router) Probes(rd Readiness) {
	r.native.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.native.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		if rd.Ready() {
			handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}

		body := map[string]string{"status": "not ready"}
		if err := rd.Err(); err != nil {
			body["error"] = err.Error()
		}
		handlers.RespondJSON(w, http.StatusServiceUnavailable, body)
	})
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	trimTrailingSlash(req)

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.ServeHTTP(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	rest, ok := strings.CutPrefix(path, "/")
	if !ok {
		return path
	}
	seg, _, _ := strings.Cut(rest, "/")
	return "/" + seg
}

func trimTrailingSlash(req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}
}
