package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/cliprank/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, logger *slog.Logger) []routes.Group {
	groups := []routes.Group{
		domain.Clips.Handler().Routes(),
		domain.Ratings.Handler(domain.Settings).Routes(),
		domain.Tally.Handler(domain.Settings).Routes(),
		domain.Activity.Handler().Routes(),
		domain.Criteria.Handler().Routes(),
		domain.Trophies.Handler().Routes(),
		domain.Settings.Handler().Routes(),
	}
	patterns := routes.Register(mux, groups...)
	logger.Debug("routes registered", "count", len(patterns), "patterns", patterns)
	return groups
}
