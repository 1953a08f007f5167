package openapi

import (
	"net/http"
	"strings"
)

// Info is the document's info object.
type Info struct {
	Title       string   `json:"title"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Contact     *Contact `json:"contact,omitempty"`
}

type Contact struct {
	Email string `json:"email,omitempty"`
}

type Server struct {
	URL string `json:"url"`
}

// PathItem holds the operations served on one path. Only the methods the
// API routes are represented.
type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
}

// Set places op under method and reports false for methods PathItem does
// not carry.
func (p *PathItem) Set(method string, op *Operation) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		p.Get = op
	case http.MethodPost:
		p.Post = op
	case http.MethodPut:
		p.Put = op
	case http.MethodDelete:
		p.Delete = op
	default:
		return false
	}
	return true
}

type Operation struct {
	Summary     string            `json:"summary,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Parameters  []*Parameter      `json:"parameters,omitempty"`
	RequestBody *RequestBody      `json:"requestBody,omitempty"`
	Responses   map[int]*Response `json:"responses"`
}

// Parameter is a path or query parameter. Path parameters are always required.
type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"`
	Required    bool    `json:"required,omitempty"`
	Description string  `json:"description,omitempty"`
	Schema      *Schema `json:"schema"`
}

type RequestBody struct {
	Required bool                  `json:"required,omitempty"`
	Content  map[string]*MediaType `json:"content"`
}

// Response is either inline (Description, Content) or a $ref into
// components.responses.
type Response struct {
	Description string                `json:"description,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty"`
	Ref         string                `json:"$ref,omitempty"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

// Schema is the subset of JSON Schema the API documents.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Example     any                `json:"example,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
}

type Components struct {
	Schemas   map[string]*Schema   `json:"schemas,omitempty"`
	Responses map[string]*Response `json:"responses,omitempty"`
}

const (
	schemaPrefix   = "#/components/schemas/"
	responsePrefix = "#/components/responses/"
	contentJSON    = "application/json"
)

func SchemaRef(name string) *Schema {
	return &Schema{Ref: schemaPrefix + name}
}

func ResponseRef(name string) *Response {
	return &Response{Ref: responsePrefix + name}
}

// RequestBodyJSON is a required JSON body of the named component schema.
func RequestBodyJSON(schemaName string) *RequestBody {
	return &RequestBody{
		Required: true,
		Content:  jsonContent(SchemaRef(schemaName)),
	}
}

func PathParam(name string) *Parameter {
	return &Parameter{Name: name, In: "path", Required: true, Schema: &Schema{Type: "string"}}
}

// QueryParam is an optional query parameter of the given JSON type.
func QueryParam(name, typ, description string) *Parameter {
	return &Parameter{Name: name, In: "query", Description: description, Schema: &Schema{Type: typ}}
}

func jsonContent(schema *Schema) map[string]*MediaType {
	return map[string]*MediaType{contentJSON: {Schema: schema}}
}
