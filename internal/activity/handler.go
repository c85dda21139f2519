package activity

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/handlers"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

// Handler provides HTTP endpoints for activity series.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "activity"),
	}
}

// Routes returns the route group definition for activity endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/activity",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Aggregate, Doc: aggregateDoc},
			{Method: "GET", Pattern: "/users", Handler: h.Breakdown, Doc: breakdownDoc},
		},
	}
}

// Aggregate returns the daily series, scoped to user_id when given.
func (h *Handler) Aggregate(w http.ResponseWriter, r *http.Request) {
	rng, err := judgments.RangeFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	var userID *uuid.UUID
	if s := r.URL.Query().Get("user_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: user_id", faults.ErrValidation))
			return
		}
		userID = &id
	}

	points, err := h.sys.Aggregate(r.Context(), userID, rng)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, points)
}

// Breakdown returns one aligned series per username.
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	rng, err := judgments.RangeFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	series, err := h.sys.PerUserBreakdown(r.Context(), rng)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, series)
}
