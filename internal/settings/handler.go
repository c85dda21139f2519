package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/handlers"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

// Handler provides HTTP endpoints for engine settings.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "settings"),
	}
}

// Routes returns the route group definition for settings endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/settings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Get, Doc: getDoc},
			{Method: "PUT", Pattern: "", Handler: h.Update, Doc: updateDoc},
		},
	}
}

// Get returns the effective settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Get(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Update stores new settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.Update(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}
