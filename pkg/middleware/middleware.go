// Package middleware provides the HTTP middleware shared by inspector modules:
// CORS handling, request logging, and an ordered stack to compose them.
package middleware

import "net/http"

// Func wraps a handler with cross-cutting behavior.
type Func func(http.Handler) http.Handler

// Stack is an ordered middleware list. The first Func added is the outermost
// wrapper at request time. The zero value is an empty stack.
type Stack struct {
	funcs []Func
}

// Use appends fns to the stack, skipping nil entries.
func (s *Stack) Use(fns ...Func) {
	for _, fn := range fns {
		if fn != nil {
			s.funcs = append(s.funcs, fn)
		}
	}
}

// Len returns the number of registered middleware.
func (s *Stack) Len() int {
	return len(s.funcs)
}

// Apply wraps handler with every Func in the stack.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.funcs) - 1; i >= 0; i-- {
		handler = s.funcs[i](handler)
	}
	return handler
}
