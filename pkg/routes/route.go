package routes

import (
	"net/http"

	"github.com/JaimeStill/inspector/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. Summary, Params, and
// Body only feed the OpenAPI document; path wildcards are documented
// automatically. Body names a component schema for the JSON request body.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	Summary string
	Params  []*openapi.Parameter
	Body    string
}

// PageParams documents the query parameters read by pagination.PageRequestFromQuery.
func PageParams() []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number (1-indexed)"),
		openapi.QueryParam("page_size", "integer", "Results per page"),
		openapi.QueryParam("search", "string", "Free-text search"),
		openapi.QueryParam("sort", "string", "Comma-separated sort fields, - prefix for descending"),
	}
}

// Query documents optional string query parameters by name.
func Query(names ...string) []*openapi.Parameter {
	params := make([]*openapi.Parameter, len(names))
	for i, name := range names {
		params[i] = openapi.QueryParam(name, "string", "")
	}
	return params
}
