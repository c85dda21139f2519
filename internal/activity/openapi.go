package activity

import (
	"slices"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/pkg/openapi"
)

// Schemas describes activity series in the OpenAPI document.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Point": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"date":  {Type: "string", Format: "date"},
				"count": {Type: "integer"},
			},
		},
	}
}

var seriesByUser = &openapi.Schema{Type: "object", AdditionalProperties: openapi.ArrayOf("Point")}

var (
	aggregateDoc = &openapi.Operation{
		Summary: "Daily rating counts",
		Parameters: slices.Concat(judgments.RangeParams(), []*openapi.Parameter{
			openapi.QueryParam("user_id", "string", "Scope to one user"),
		}),
		Responses: openapi.Responses(200, openapi.ResponseJSON("Daily series", openapi.ArrayOf("Point")), 400),
	}
	breakdownDoc = &openapi.Operation{
		Summary:    "Daily rating counts per user",
		Parameters: judgments.RangeParams(),
		Responses:  openapi.Responses(200, openapi.ResponseJSON("Series keyed by username", seriesByUser), 400),
	}
)
