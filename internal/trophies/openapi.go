package trophies

import (
	"slices"

	"github.com/JaimeStill/cliprank/internal/criteria"
	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/openapi"
)

// Schemas describes trophy records and season archives in the OpenAPI document.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Record": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"user_id":       {Type: "string", Format: "uuid"},
				"username":      {Type: "string"},
				"criteria_id":   {Type: "string", Format: "uuid"},
				"criteria_name": {Type: "string"},
				"season":        openapi.SchemaRef("Season"),
				"year":          {Type: "integer"},
				"value":         {Type: "number"},
				"date_earned":   {Type: "string", Format: "date-time"},
			},
		},
		"CommitCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"season": openapi.SchemaRef("Season"),
				"year":   {Type: "integer"},
				"strict": {Type: "boolean", Description: "Reject the commit when any award already exists"},
			},
			Required: []string{"season", "year"},
		},
		"CommitResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"season":  openapi.SchemaRef("Season"),
				"year":    {Type: "integer"},
				"awarded": {Type: "integer"},
				"records": openapi.ArrayOf("Record"),
			},
		},
		"Report": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"season":       openapi.SchemaRef("Season"),
				"year":         {Type: "integer"},
				"committed_at": {Type: "string", Format: "date-time"},
				"evaluation":   openapi.SchemaRef("AllResult"),
				"awarded":      openapi.ArrayOf("Record"),
			},
		},
		"ArchiveEntry": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"season": openapi.SchemaRef("Season"),
				"year":   {Type: "integer"},
				"key":    {Type: "string"},
			},
		},
		"TrophySearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"search":      {Type: "string"},
				"sort":        {Type: "string"},
				"user_id":     {Type: "string", Format: "uuid"},
				"criteria_id": {Type: "string", Format: "uuid"},
				"season":      openapi.SchemaRef("Season"),
				"year":        {Type: "integer"},
			},
		},
	}
}

var archiveParams = []*openapi.Parameter{
	openapi.PathParamOf("year", "Season year", &openapi.Schema{Type: "integer"}),
	openapi.PathParamOf("season", "Season name", openapi.Enum(seasons.All...)),
}

var (
	recordResponse = openapi.ResponseJSON("Trophy record", openapi.SchemaRef("Record"))
	pageResponse   = openapi.ResponseJSON("Trophy page", openapi.PageOf("Record"))
)

var (
	listDoc = &openapi.Operation{
		Summary: "List trophies",
		Parameters: slices.Concat(openapi.PageParams(), []*openapi.Parameter{
			openapi.QueryParam("user_id", "string", "Recipient id"),
			openapi.QueryParam("criteria_id", "string", "Criterion id"),
			openapi.QueryParam("season", "string", "Season"),
			openapi.QueryParam("year", "integer", "Year"),
		}),
		Responses: openapi.Responses(200, pageResponse),
	}
	searchDoc = &openapi.Operation{
		Summary:     "Search trophies",
		RequestBody: openapi.RequestBodyJSON("TrophySearch", true),
		Responses:   openapi.Responses(200, pageResponse, 400),
	}
	previewDoc = &openapi.Operation{
		Summary:     "Preview a season's awards",
		Parameters:  criteria.OptionParams(),
		RequestBody: openapi.RequestBodyJSON("EvaluationOptions", false),
		Responses:   openapi.Responses(200, openapi.ResponseJSON("Season evaluation", openapi.SchemaRef("AllResult")), 400),
	}
	commitDoc = &openapi.Operation{
		Summary:     "Commit a season's awards",
		Description: "Awards already held are skipped unless strict is set. The season report is archived when anything new is awarded.",
		RequestBody: openapi.RequestBodyJSON("CommitCommand", true),
		Responses:   openapi.Responses(200, openapi.ResponseJSON("Created records", openapi.SchemaRef("CommitResponse")), 400, 409),
	}
	archivesDoc = &openapi.Operation{
		Summary:   "List archived seasons",
		Responses: openapi.Responses(200, openapi.ResponseJSON("Archive entries", openapi.ArrayOf("ArchiveEntry"))),
	}
	archiveDoc = &openapi.Operation{
		Summary:    "Get a season report",
		Parameters: archiveParams,
		Responses:  openapi.Responses(200, openapi.ResponseJSON("Season report", openapi.SchemaRef("Report")), 400, 404),
	}
	deleteArchiveDoc = &openapi.Operation{
		Summary:    "Delete a season report",
		Parameters: archiveParams,
		Responses:  openapi.Responses(204, &openapi.Response{Description: "Deleted"}, 400, 404),
	}
	findDoc = &openapi.Operation{
		Summary:   "Get a trophy",
		Responses: openapi.Responses(200, recordResponse, 400, 404),
	}
	retractDoc = &openapi.Operation{
		Summary:   "Retract a trophy",
		Responses: openapi.Responses(204, &openapi.Response{Description: "Retracted"}, 400, 404),
	}
)
