package tally

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/handlers"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

// Handler provides HTTP endpoints for clip snapshots.
type Handler struct {
	sys        System
	thresholds ThresholdSource
	logger     *slog.Logger
}

// NewHandler creates a Handler that classifies snapshots with the current threshold.
func NewHandler(sys System, thresholds ThresholdSource, logger *slog.Logger) *Handler {
	return &Handler{
		sys:        sys,
		thresholds: thresholds,
		logger:     logger.With("handler", "tally"),
	}
}

// Routes returns the route group definition for tally endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/tallies",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{clipId}", Handler: h.Find, Doc: findDoc},
		},
	}
}

// Find returns the snapshot for a clip. A threshold query parameter overrides
// the configured deny threshold.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	clipID, err := uuid.Parse(r.PathValue("clipId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, faults.ErrValidation)
		return
	}

	threshold, err := h.threshold(r)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	snap, err := h.sys.Compute(r.Context(), clipID, threshold)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

func (h *Handler) threshold(r *http.Request) (int, error) {
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, ErrInvalidThreshold
		}
		return n, nil
	}
	return h.thresholds.DenyThreshold(r.Context())
}
