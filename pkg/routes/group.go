package routes

import (
	"fmt"
	"net/http"
)

// Group organizes routes under a common prefix. Children inherit the prefix and,
// when they declare none, the tags. Description documents the group's tags.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
}

// Register adds all routes from the given groups to the mux. A pattern that is
// malformed or conflicts with one already registered is returned as an error
// rather than a ServeMux panic.
func Register(mux *http.ServeMux, groups ...Group) error {
	for _, group := range groups {
		if err := registerGroup(mux, "", group); err != nil {
			return err
		}
	}
	return nil
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) error {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		if route.Handler == nil {
			return fmt.Errorf("route %s %s%s: nil handler", route.Method, fullPrefix, route.Pattern)
		}
		if err := handle(mux, route.Method+" "+fullPrefix+route.Pattern, route.Handler); err != nil {
			return err
		}
	}
	for _, child := range group.Children {
		if err := registerGroup(mux, fullPrefix, child); err != nil {
			return err
		}
	}
	return nil
}

func handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register %q: %v", pattern, r)
		}
	}()
	mux.HandleFunc(pattern, h)
	return nil
}
