// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/cliprank/internal/config"
	"github.com/JaimeStill/cliprank/internal/infrastructure"
	"github.com/JaimeStill/cliprank/pkg/middleware"
	"github.com/JaimeStill/cliprank/pkg/module"
)

// Module is the mounted API together with its serialized OpenAPI document.
type Module struct {
	*module.Module
	Spec []byte
}

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}
	seedCatalog(runtime, domain)

	mux := http.NewServeMux()
	groups := registerRoutes(mux, domain, runtime.Logger)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.RateLimit(&cfg.API.RateLimit, userKey(cfg.API.UserHeader)))

	return &Module{Module: m, Spec: spec}, nil
}

// userKey identifies the caller by the user header.
func userKey(header string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.Header.Get(header)
	}
}
