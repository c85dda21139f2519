package tally

import "github.com/JaimeStill/cliprank/pkg/openapi"

// Schemas describes tally snapshots in the OpenAPI document.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Rater": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"user_id":  {Type: "string", Format: "uuid"},
				"username": {Type: "string"},
			},
		},
		"Count": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"value": openapi.SchemaRef("Value"),
				"count": {Type: "integer"},
				"users": openapi.ArrayOf("Rater"),
			},
		},
		"Snapshot": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"clip_id":        {Type: "string", Format: "uuid"},
				"rating_counts":  openapi.ArrayOf("Count"),
				"total_ratings":  {Type: "integer"},
				"average":        {Type: "number", Description: "Mean of numeric votes; null when there are none"},
				"deny_threshold": {Type: "integer"},
				"is_denied":      {Type: "boolean"},
			},
		},
	}
}

var findDoc = &openapi.Operation{
	Summary:    "Tally a clip's ratings",
	Parameters: []*openapi.Parameter{openapi.QueryParam("threshold", "integer", "Deny threshold override")},
	Responses:  openapi.Responses(200, openapi.ResponseJSON("Tally snapshot", openapi.SchemaRef("Snapshot")), 400),
}
