package openapi

// Shared error responses keyed by component name.
var errorResponses = map[string]string{
	"BadRequest":          "Invalid request",
	"NotFound":            "Resource not found",
	"Conflict":            "Duplicate record, inspection already completed, or header edit conflicting with recorded results",
	"UnprocessableEntity": "Checklist validation failed",
	"RequestTooLarge":     "Upload exceeds the configured size limit",
	"GatewayTimeout":      "Operation timed out; safe to retry",
}

// NewComponents registers the error responses and the request bodies that
// routes reference by name.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": object(map[string]*Schema{
				"error": {Type: "string"},
			}),
			"PageRequest": object(map[string]*Schema{
				"page":      {Type: "integer", Example: 1},
				"page_size": {Type: "integer", Example: 20},
				"search":    {Type: "string"},
				"sort":      {Type: "string", Description: "Comma separated; prefix a field with - to sort descending", Example: "-inspection_date,po_number"},
			}),
			"Answer": {
				Type: "string",
				Enum: []string{"Pass", "Fail", "NA", "Not Answered"},
			},
			"Entry": object(map[string]*Schema{
				"answer":    SchemaRef("Answer"),
				"notes":     {Type: "string"},
				"photo_key": {Type: "string"},
			}),
			"UpsertCommand": object(map[string]*Schema{
				"inspector": {Type: "string"},
				"samples": {
					Type:        "object",
					Description: "Sample number to question id to entry, for sampled checks",
				},
				"results": {
					Type:        "object",
					Description: "Question id to entry, for checks without samples",
				},
			}),
		},
		Responses: make(map[string]*Response, len(errorResponses)),
	}
	for name, desc := range errorResponses {
		c.Responses[name] = &Response{
			Description: desc,
			Content:     jsonContent(SchemaRef("Error")),
		}
	}
	return c
}

func object(props map[string]*Schema) *Schema {
	return &Schema{Type: "object", Properties: props}
}
