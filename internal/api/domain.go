package api

import (
	"fmt"

	"github.com/JaimeStill/cliprank/internal/activity"
	"github.com/JaimeStill/cliprank/internal/clips"
	"github.com/JaimeStill/cliprank/internal/criteria"
	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/ratings"
	"github.com/JaimeStill/cliprank/internal/settings"
	"github.com/JaimeStill/cliprank/internal/tally"
	"github.com/JaimeStill/cliprank/internal/trophies"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Judgments judgments.Store
	Clips     clips.Registry
	Tally     tally.System
	Settings  settings.System
	Ratings   ratings.System
	Activity  activity.System
	Criteria  criteria.System
	Trophies  trophies.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	var (
		judgmentStore judgments.Store
		directory     clips.Registry
		criteriaStore criteria.Store
		trophyStore   trophies.Store
		settingsSys   settings.System
		err           error
	)

	defaults := settings.Settings{DenyThreshold: runtime.Engine.DenyThreshold}

	if runtime.Memory() {
		judgmentStore = judgments.NewMemory(runtime.Pagination)
		directory = clips.NewMemory(runtime.Logger)
		criteriaStore = criteria.NewMemoryStore(runtime.Pagination)
		trophyStore = trophies.NewMemoryStore(runtime.Pagination)
		settingsSys, err = settings.NewMemory(defaults, runtime.Logger)
	} else {
		db := runtime.Database.Connection()
		judgmentStore = judgments.New(db, runtime.Logger, runtime.Pagination, runtime.Engine.RetryPolicy())
		directory = clips.New(db, runtime.Logger)
		criteriaStore = criteria.NewStore(db, runtime.Logger, runtime.Pagination)
		trophyStore = trophies.NewStore(db, runtime.Logger, runtime.Pagination, runtime.Engine.RetryPolicy())
		settingsSys, err = settings.New(db, defaults, runtime.Logger)
	}
	if err != nil {
		return nil, fmt.Errorf("settings init failed: %w", err)
	}

	tallySys := tally.New(judgmentStore, runtime.Cache, runtime.Metrics, runtime.Logger)

	ratingsSys := ratings.New(ratings.Deps{
		Store:      judgmentStore,
		Clips:      directory,
		Tally:      tallySys,
		Publisher:  runtime.Publisher,
		Metrics:    runtime.Metrics,
		Logger:     runtime.Logger,
		Pagination: runtime.Pagination,
		UserHeader: runtime.UserHeader,
	})

	criteriaSys := criteria.New(criteria.Deps{
		Store:      criteriaStore,
		Judgments:  judgmentStore,
		Metrics:    runtime.Metrics,
		Logger:     runtime.Logger,
		Pagination: runtime.Pagination,
		Tracer:     runtime.Tracing.Provider(),
	})

	trophiesSys := trophies.New(trophies.Deps{
		Store:      trophyStore,
		Criteria:   criteriaSys,
		Archive:    runtime.Storage,
		Publisher:  runtime.Publisher,
		Metrics:    runtime.Metrics,
		Logger:     runtime.Logger,
		Prefix:     runtime.Prefix,
		Pagination: runtime.Pagination,
		Tracer:     runtime.Tracing.Provider(),
	})

	return &Domain{
		Judgments: judgmentStore,
		Clips:     directory,
		Tally:     tallySys,
		Settings:  settingsSys,
		Ratings:   ratingsSys,
		Activity:  activity.New(judgmentStore, runtime.Logger),
		Criteria:  criteriaSys,
		Trophies:  trophiesSys,
	}, nil
}

// seedCatalog upserts the configured criteria catalog once startup begins.
func seedCatalog(runtime *Runtime, domain *Domain) {
	path := runtime.Engine.CriteriaCatalog
	if path == "" {
		return
	}

	runtime.Lifecycle.OnStartup(func() {
		n, err := domain.Criteria.Seed(runtime.Lifecycle.Context(), path)
		if err != nil {
			runtime.Logger.Error("criteria catalog seed failed", "path", path, "error", err)
			return
		}
		runtime.Logger.Info("criteria catalog seeded", "path", path, "criteria", n)
	})
}
