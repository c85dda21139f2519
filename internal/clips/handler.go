package clips

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/handlers"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

// ErrInvalidID indicates a malformed clip id.
var ErrInvalidID = fmt.Errorf("%w: invalid clip id", faults.ErrValidation)

// Handler lets the clip catalog register the ownership the rating engine checks.
type Handler struct {
	registry Registry
	logger   *slog.Logger
}

// NewHandler creates a Handler for the registry.
func NewHandler(registry Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger.With("handler", "clips"),
	}
}

// Routes returns the route group definition for clip endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/clips",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Doc: findDoc},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Register, Doc: registerDoc},
		},
	}
}

// Find returns the clip's ownership metadata.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	c, err := h.registry.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Register adds or replaces the clip at the path id.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var c Clip
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	c.ID = id

	if err := h.registry.Register(r.Context(), c); err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}
