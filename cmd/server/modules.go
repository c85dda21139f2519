package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/cliprank/internal/api"
	"github.com/JaimeStill/cliprank/internal/config"
	"github.com/JaimeStill/cliprank/internal/infrastructure"
	"github.com/JaimeStill/cliprank/pkg/module"
	"github.com/JaimeStill/cliprank/pkg/openapi"
)

type readiness struct {
	Status     string          `json:"status"`
	Subsystems map[string]bool `json:"subsystems,omitempty"`
}

type Modules struct {
	API *api.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API.Module)
	router.HandleNative("GET /openapi.json", openapi.ServeSpec(m.API.Spec))
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		if !infra.Lifecycle.Ready() {
			status, code = "not ready", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(readiness{
			Status:     status,
			Subsystems: infra.Lifecycle.Status(),
		})
	})

	router.HandleNative("GET /metrics", infra.Metrics.Handler().ServeHTTP)

	return router
}
