// Package module mounts self-contained HTTP surfaces under a single path
// segment, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/inspector/pkg/middleware"
)

// Module serves requests under one path segment such as /api. The segment is
// stripped before the inner handler sees the request. Middleware is composed
// on the first request, so Use must not be called once serving begins.
type Module struct {
	prefix string
	inner  http.Handler
	stack  middleware.Stack

	compose sync.Once
	handler http.Handler
}

// New rejects prefixes that are empty, relative, or span more than one
// segment.
func New(prefix string, inner http.Handler) (*Module, error) {
	rest, ok := strings.CutPrefix(prefix, "/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return nil, fmt.Errorf("module prefix %q must be a single segment such as /api", prefix)
	}
	return &Module{prefix: prefix, inner: inner}, nil
}

func (m *Module) Prefix() string {
	return m.prefix
}

func (m *Module) Use(mws ...middleware.Func) {
	m.stack.Use(mws...)
}

func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.compose.Do(func() {
		m.handler = m.stack.Apply(m.inner)
	})
	m.handler.ServeHTTP(w, m.strip(req))
}

// strip returns a shallow copy of req whose path is relative to the module.
// The module root maps to "/".
func (m *Module) strip(req *http.Request) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	u := *req.URL
	u.Path = path
	u.RawPath = ""

	out := req.WithContext(req.Context())
	out.URL = &u
	return out
}

var _ http.Handler = (*Module)(nil)
