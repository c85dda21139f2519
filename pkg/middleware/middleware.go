// Package middleware provides the HTTP middleware stack modules wrap their
// routers with, plus the CORS, logging, recovery, and rate limiting layers.
package middleware

import (
	"net/http"
	"slices"
)

// System manages an ordered stack of HTTP middleware.
// The first middleware added is the outermost.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
	Len() int
}

type stack struct {
	layers []func(http.Handler) http.Handler
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	s.layers = append(s.layers, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, layer := range slices.Backward(s.layers) {
		handler = layer(handler)
	}
	return handler
}

func (s *stack) Len() int {
	return len(s.layers)
}
