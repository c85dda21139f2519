package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/cliprank/internal/activity"
	"github.com/JaimeStill/cliprank/internal/clips"
	"github.com/JaimeStill/cliprank/internal/config"
	"github.com/JaimeStill/cliprank/internal/criteria"
	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/ratings"
	"github.com/JaimeStill/cliprank/internal/settings"
	"github.com/JaimeStill/cliprank/internal/tally"
	"github.com/JaimeStill/cliprank/internal/trophies"
	"github.com/JaimeStill/cliprank/pkg/openapi"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

// buildSpec documents every route group, with the API base path as the
// server URL, and serializes the result.
func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)

	for _, schemas := range []map[string]*openapi.Schema{
		judgments.Schemas(),
		clips.Schemas(),
		ratings.Schemas(),
		tally.Schemas(),
		activity.Schemas(),
		criteria.Schemas(),
		trophies.Schemas(),
		settings.Schemas(),
	} {
		spec.Components.AddSchemas(schemas)
	}

	routes.Document(spec, "", groups...)

	if cfg.API.RateLimit.Enabled {
		for _, item := range spec.Paths {
			for _, op := range []*openapi.Operation{item.Get, item.Post, item.Put, item.Delete} {
				if op != nil {
					op.Responses[http.StatusTooManyRequests] = openapi.ResponseRef("TooManyRequests")
				}
			}
		}
	}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi: %w", err)
	}
	return data, nil
}
