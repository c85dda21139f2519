package routes

import (
	"maps"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/JaimeStill/cliprank/pkg/openapi"
)

var pathParam = regexp.MustCompile(`\{([^}.]+)(?:\.\.\.)?\}`)

// Document adds an operation to spec for every route in groups, with paths
// rendered beneath basePath. Routes without a Doc get a generated summary.
// Path parameters named in a pattern are declared as UUIDs unless the Doc
// already declares them. Operations are tagged with their top-level prefix.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		group.document(spec, basePath, strings.Trim(group.Prefix, "/"))
	}
}

func (g Group) document(spec *openapi.Spec, parent, tag string) {
	prefix := parent + g.Prefix
	for _, route := range g.Routes {
		path := prefix + route.Pattern
		spec.AddOperation(route.Method, path, route.operation(path, tag))
	}
	for _, child := range g.Children {
		child.document(spec, prefix, tag)
	}
}

func (r Route) operation(path, tag string) *openapi.Operation {
	op := &openapi.Operation{}
	if r.Doc != nil {
		*op = *r.Doc
		op.Tags = slices.Clone(op.Tags)
		op.Parameters = slices.Clone(op.Parameters)
		op.Responses = maps.Clone(op.Responses)
	}

	if op.Summary == "" {
		op.Summary = r.Method + " " + path
	}
	if len(op.Tags) == 0 && tag != "" {
		op.Tags = []string{tag}
	}
	for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
		if !op.HasParameter(m[1], "path") {
			op.Parameters = append(op.Parameters, openapi.PathParam(m[1], ""))
		}
	}
	if len(op.Responses) == 0 {
		status := http.StatusOK
		if r.Method == http.MethodDelete {
			status = http.StatusNoContent
		}
		op.Responses = map[int]*openapi.Response{status: {Description: http.StatusText(status)}}
	}
	return op
}
