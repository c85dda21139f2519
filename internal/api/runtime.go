package api

import (
	"github.com/JaimeStill/cliprank/internal/config"
	"github.com/JaimeStill/cliprank/internal/infrastructure"
	"github.com/JaimeStill/cliprank/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Engine     config.EngineConfig
	Prefix     string
	UserHeader string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Engine:         cfg.Engine,
		Prefix:         cfg.Storage.Prefix,
		UserHeader:     cfg.API.UserHeader,
	}
}

// Memory reports whether domain state lives in process memory.
func (r *Runtime) Memory() bool {
	return r.Database == nil
}
