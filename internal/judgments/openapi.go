package judgments

import "github.com/JaimeStill/cliprank/pkg/openapi"

// Schemas describes judgments in the OpenAPI document.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Value": openapi.Enum(Values...),
		"Judgment": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"clip_id":   {Type: "string", Format: "uuid"},
				"user_id":   {Type: "string", Format: "uuid"},
				"username":  {Type: "string"},
				"value":     openapi.SchemaRef("Value"),
				"timestamp": {Type: "string", Format: "date-time"},
			},
			Required: []string{"clip_id", "user_id", "username", "value", "timestamp"},
		},
	}
}

// FilterParams lists the query parameters FiltersFromQuery reads.
func FilterParams() []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("clip_id", "string", "Clip id"),
		openapi.QueryParam("user_id", "string", "User id"),
		openapi.QueryParam("username", "string", "Exact username"),
		openapi.QueryParam("value", "string", "Rating value"),
		openapi.QueryParam("from", "string", "Earliest day, YYYY-MM-DD or RFC 3339"),
		openapi.QueryParam("to", "string", "Latest day, YYYY-MM-DD or RFC 3339"),
	}
}

// RangeParams lists the query parameters RangeFromQuery reads.
func RangeParams() []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("start", "string", "First day, YYYY-MM-DD"),
		openapi.QueryParam("end", "string", "Last day, YYYY-MM-DD"),
	}
}
