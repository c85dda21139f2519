package ratings

import (
	"slices"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/pkg/openapi"
)

// Schemas describes rating commands and responses in the OpenAPI document.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"SubmitCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"user_id":  {Type: "string", Format: "uuid", Description: "Defaults to the caller header"},
				"username": {Type: "string"},
				"value":    openapi.SchemaRef("Value"),
			},
			Required: []string{"username", "value"},
		},
		"UserJudgment": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"clip_id": {Type: "string", Format: "uuid"},
				"user_id": {Type: "string", Format: "uuid"},
				"value":   {Ref: "#/components/schemas/Value", Description: "Null when the user has not rated the clip"},
			},
		},
		"JudgmentSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":      {Type: "integer"},
				"page_size": {Type: "integer"},
				"search":    {Type: "string"},
				"sort":      {Type: "string"},
				"clip_id":   {Type: "string", Format: "uuid"},
				"user_id":   {Type: "string", Format: "uuid"},
				"username":  {Type: "string"},
				"value":     openapi.SchemaRef("Value"),
				"from":      {Type: "string", Format: "date-time"},
				"to":        {Type: "string", Format: "date-time"},
			},
		},
	}
}

var snapshotResponse = openapi.ResponseJSON("Tally snapshot after the change", openapi.SchemaRef("Snapshot"))

var (
	listDoc = &openapi.Operation{
		Summary:    "List judgments",
		Parameters: slices.Concat(openapi.PageParams(), judgments.FilterParams()),
		Responses:  openapi.Responses(200, openapi.ResponseJSON("Judgment page", openapi.PageOf("Judgment"))),
	}
	searchDoc = &openapi.Operation{
		Summary:     "Search judgments",
		RequestBody: openapi.RequestBodyJSON("JudgmentSearch", true),
		Responses:   openapi.Responses(200, openapi.ResponseJSON("Judgment page", openapi.PageOf("Judgment")), 400),
	}
	listForUserDoc = &openapi.Operation{
		Summary:    "List a user's judgments",
		Parameters: judgments.RangeParams(),
		Responses:  openapi.Responses(200, openapi.ResponseJSON("Judgments", openapi.ArrayOf("Judgment")), 400),
	}
	submitDoc = &openapi.Operation{
		Summary:     "Toggle a rating on a clip",
		Description: "Submitting the value already held removes it. Owners may not rate their own clips.",
		RequestBody: openapi.RequestBodyJSON("SubmitCommand", true),
		Responses:   openapi.Responses(200, snapshotResponse, 400, 403, 404),
	}
	userJudgmentDoc = &openapi.Operation{
		Summary:   "Get a user's rating on a clip",
		Responses: openapi.Responses(200, openapi.ResponseJSON("User judgment", openapi.SchemaRef("UserJudgment")), 400),
	}
	removeDoc = &openapi.Operation{
		Summary:   "Remove a user's rating on a clip",
		Responses: openapi.Responses(200, snapshotResponse, 400, 403),
	}
)
