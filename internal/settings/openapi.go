package settings

import "github.com/JaimeStill/cliprank/pkg/openapi"

// Schemas describes the settings document.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Settings": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"deny_threshold": {Type: "integer", Description: "Deny votes that hide a clip, at least 1"}},
		},
	}
}

var (
	getDoc = &openapi.Operation{
		Summary:   "Get settings",
		Responses: openapi.Responses(200, openapi.ResponseJSON("Effective settings", openapi.SchemaRef("Settings"))),
	}
	updateDoc = &openapi.Operation{
		Summary:     "Update settings",
		RequestBody: openapi.RequestBodyJSON("Settings", true),
		Responses:   openapi.Responses(200, openapi.ResponseJSON("Updated settings", openapi.SchemaRef("Settings")), 400),
	}
)
