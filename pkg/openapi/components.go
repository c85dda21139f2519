package openapi

import (
	"maps"
	"net/http"
)

// NewComponents creates Components with the shared error and paging schemas
// and one response per error status the API returns.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:       "object",
				Properties: map[string]*Schema{"error": {Type: "string"}},
				Required:   []string{"error"},
			},
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Case-insensitive substring match"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields, - prefix for descending", Example: "-timestamp"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":      errorResponse("Invalid request"),
			"Forbidden":       errorResponse("Caller may not perform this action"),
			"NotFound":        errorResponse("Resource not found"),
			"Conflict":        errorResponse("Already awarded"),
			"TooManyRequests": errorResponse("Rate limit exceeded"),
		},
	}
}

func errorResponse(description string) *Response {
	return ResponseJSON(description, SchemaRef("Error"))
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}

var errorResponses = map[int]string{
	http.StatusBadRequest:      "BadRequest",
	http.StatusForbidden:       "Forbidden",
	http.StatusNotFound:        "NotFound",
	http.StatusConflict:        "Conflict",
	http.StatusTooManyRequests: "TooManyRequests",
}

// Responses maps status to ok and each error status to its shared component
// response. Statuses without a component response are skipped.
func Responses(status int, ok *Response, errs ...int) map[int]*Response {
	out := map[int]*Response{status: ok}
	for _, code := range errs {
		if name, found := errorResponses[code]; found {
			out[code] = ResponseRef(name)
		}
	}
	return out
}
