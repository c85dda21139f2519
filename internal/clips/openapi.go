package clips

import "github.com/JaimeStill/cliprank/pkg/openapi"

// Schemas describes clip ownership metadata.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Clip": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid", Description: "Taken from the path on registration"},
				"streamer":     {Type: "string"},
				"submitter":    {Type: "string"},
				"submitter_id": {Type: "string", Format: "uuid"},
			},
			Required: []string{"streamer", "submitter"},
		},
	}
}

var clipResponse = openapi.ResponseJSON("Clip", openapi.SchemaRef("Clip"))

var (
	findDoc = &openapi.Operation{
		Summary:   "Get a clip",
		Responses: openapi.Responses(200, clipResponse, 400, 404),
	}
	registerDoc = &openapi.Operation{
		Summary:     "Register a clip's owners",
		RequestBody: openapi.RequestBodyJSON("Clip", true),
		Responses:   openapi.Responses(200, clipResponse, 400),
	}
)
