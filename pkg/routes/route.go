// Package routes declares handler groups and registers them on a ServeMux
// using Go 1.22 method patterns.
package routes

import (
	"net/http"

	"github.com/JaimeStill/cliprank/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. Doc, when set,
// describes the route in the OpenAPI document.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	Doc     *openapi.Operation
}

// under renders the mux pattern of the route beneath prefix.
func (r Route) under(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
