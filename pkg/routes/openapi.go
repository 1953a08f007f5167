package routes

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/inspector/pkg/openapi"
)

var pathParam = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(\.\.\.)?\}`)

// Document adds an operation for every route in groups to spec, rooted at basePath.
// Child groups inherit their parent's tags when they declare none.
// Path wildcards become required string path parameters.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		documentGroup(spec, basePath, nil, group)
	}
}

func documentGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := group.Tags
	if len(tags) == 0 {
		tags = parentTags
	}
	for _, tag := range group.Tags {
		spec.AddTag(tag, group.Description)
	}

	for _, route := range group.Routes {
		raw := fullPrefix + route.Pattern
		path := pathParam.ReplaceAllString(raw, "{$1}")
		if path == "" {
			path = "/"
		}

		item, ok := spec.Paths[path]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[path] = item
		}

		op := &openapi.Operation{
			Summary:   route.Summary,
			Tags:      tags,
			Responses: responsesFor(route.Method),
		}
		for _, m := range pathParam.FindAllStringSubmatch(raw, -1) {
			op.Parameters = append(op.Parameters, openapi.PathParam(m[1]))
		}
		op.Parameters = append(op.Parameters, route.Params...)
		if route.Body != "" {
			op.RequestBody = openapi.RequestBodyJSON(route.Body)
		}

		item.Set(route.Method, op)
	}

	for _, child := range group.Children {
		documentGroup(spec, fullPrefix, tags, child)
	}
}

func responsesFor(method string) map[int]*openapi.Response {
	responses := map[int]*openapi.Response{
		http.StatusBadRequest: openapi.ResponseRef("BadRequest"),
		http.StatusNotFound:   openapi.ResponseRef("NotFound"),
	}
	switch strings.ToUpper(method) {
	case http.MethodDelete:
		responses[http.StatusNoContent] = &openapi.Response{Description: "Deleted"}
	case http.MethodPost:
		responses[http.StatusOK] = &openapi.Response{Description: "Success"}
		responses[http.StatusConflict] = openapi.ResponseRef("Conflict")
	default:
		responses[http.StatusOK] = &openapi.Response{Description: "Success"}
	}
	return responses
}
