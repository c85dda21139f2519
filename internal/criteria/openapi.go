package criteria

import (
	"slices"

	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/openapi"
)

// Schemas describes criteria and evaluation results in the OpenAPI document.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Season":        openapi.Enum(seasons.All...),
		"CriterionType": openapi.Enum(Types...),
		"TypeInfo": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"type":        openapi.SchemaRef("CriterionType"),
				"description": {Type: "string"},
				"floor":       {Type: "string"},
			},
		},
		"Criterion": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"name":        {Type: "string"},
				"description": {Type: "string"},
				"type":        openapi.SchemaRef("CriterionType"),
				"season":      {Ref: "#/components/schemas/Season", Description: "Omitted for every season"},
				"year":        {Type: "integer", Description: "Omitted for every year"},
				"award_limit": {Type: "integer", Description: "Zero awards every winner"},
				"min_value":   {Type: "number"},
				"priority":    {Type: "integer"},
				"active":      {Type: "boolean"},
				"created_at":  {Type: "string", Format: "date-time"},
				"updated_at":  {Type: "string", Format: "date-time"},
			},
		},
		"CriterionCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":        {Type: "string"},
				"description": {Type: "string"},
				"type":        openapi.SchemaRef("CriterionType"),
				"season":      openapi.SchemaRef("Season"),
				"year":        {Type: "integer"},
				"award_limit": {Type: "integer"},
				"min_value":   {Type: "number"},
				"priority":    {Type: "integer"},
				"active":      {Type: "boolean", Default: true},
			},
			Required: []string{"name", "type"},
		},
		"CriterionSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":      {Type: "integer"},
				"page_size": {Type: "integer"},
				"search":    {Type: "string"},
				"sort":      {Type: "string"},
				"name":      {Type: "string"},
				"type":      openapi.SchemaRef("CriterionType"),
				"season":    openapi.SchemaRef("Season"),
				"active":    {Type: "boolean"},
			},
		},
		"EvaluationOptions": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"season": {Ref: "#/components/schemas/Season", Description: "Defaults to the current season"},
				"year":   {Type: "integer", Description: "Defaults to the current season's year"},
			},
		},
		"Winner": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"user_id":  {Type: "string", Format: "uuid"},
				"username": {Type: "string"},
				"value":    {Type: "number"},
			},
		},
		"Result": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"criteria_id":   {Type: "string", Format: "uuid"},
				"criteria_name": {Type: "string"},
				"criteria_type": openapi.SchemaRef("CriterionType"),
				"season":        openapi.SchemaRef("Season"),
				"year":          {Type: "integer"},
				"total_winners": {Type: "integer"},
				"winners":       openapi.ArrayOf("Winner"),
				"preview":       {Type: "boolean"},
				"error":         {Type: "string"},
			},
		},
		"AllResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"season":         openapi.SchemaRef("Season"),
				"year":           {Type: "integer"},
				"total_criteria": {Type: "integer"},
				"total_trophies": {Type: "integer"},
				"preview":        {Type: "boolean"},
				"criteria":       openapi.ArrayOf("Result"),
			},
		},
	}
}

// OptionParams lists the query parameters DecodeOptions reads.
func OptionParams() []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("season", "string", "Season, overrides the body"),
		openapi.QueryParam("year", "integer", "Year, overrides the body"),
	}
}

var (
	criterionResponse = openapi.ResponseJSON("Criterion", openapi.SchemaRef("Criterion"))
	pageResponse      = openapi.ResponseJSON("Criterion page", openapi.PageOf("Criterion"))
	optionsBody       = openapi.RequestBodyJSON("EvaluationOptions", false)
)

var (
	listDoc = &openapi.Operation{
		Summary: "List criteria",
		Parameters: slices.Concat(openapi.PageParams(), []*openapi.Parameter{
			openapi.QueryParam("name", "string", "Exact name"),
			openapi.QueryParam("type", "string", "Criterion type"),
			openapi.QueryParam("season", "string", "Season"),
			openapi.QueryParam("active", "boolean", "Active flag"),
		}),
		Responses: openapi.Responses(200, pageResponse),
	}
	typesDoc = &openapi.Operation{
		Summary:   "List criterion types",
		Responses: openapi.Responses(200, openapi.ResponseJSON("Type catalog", openapi.ArrayOf("TypeInfo"))),
	}
	searchDoc = &openapi.Operation{
		Summary:     "Search criteria",
		RequestBody: openapi.RequestBodyJSON("CriterionSearch", true),
		Responses:   openapi.Responses(200, pageResponse, 400),
	}
	evaluateAllDoc = &openapi.Operation{
		Summary:     "Preview every applicable criterion",
		Parameters:  OptionParams(),
		RequestBody: optionsBody,
		Responses:   openapi.Responses(200, openapi.ResponseJSON("Season evaluation", openapi.SchemaRef("AllResult")), 400),
	}
	findDoc = &openapi.Operation{
		Summary:   "Get a criterion",
		Responses: openapi.Responses(200, criterionResponse, 400, 404),
	}
	createDoc = &openapi.Operation{
		Summary:     "Create a criterion",
		RequestBody: openapi.RequestBodyJSON("CriterionCommand", true),
		Responses:   openapi.Responses(201, criterionResponse, 400),
	}
	updateDoc = &openapi.Operation{
		Summary:     "Replace a criterion",
		RequestBody: openapi.RequestBodyJSON("CriterionCommand", true),
		Responses:   openapi.Responses(200, criterionResponse, 400, 404),
	}
	deleteDoc = &openapi.Operation{
		Summary:   "Delete a criterion",
		Responses: openapi.Responses(204, &openapi.Response{Description: "Deleted"}, 400, 404),
	}
	evaluateDoc = &openapi.Operation{
		Summary:     "Preview one criterion",
		Parameters:  OptionParams(),
		RequestBody: optionsBody,
		Responses:   openapi.Responses(200, openapi.ResponseJSON("Criterion evaluation", openapi.SchemaRef("Result")), 400, 404),
	}
)
