package ratings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/tally"
	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/handlers"
	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

// Handler provides HTTP endpoints for rating operations.
type Handler struct {
	sys        System
	thresholds tally.ThresholdSource
	logger     *slog.Logger
	pagination pagination.Config
	userHeader string
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	judgments.Filters
}

// UserJudgmentResponse reports a user's value for a clip; Value is null when unrated.
type UserJudgmentResponse struct {
	ClipID uuid.UUID        `json:"clip_id"`
	UserID uuid.UUID        `json:"user_id"`
	Value  *judgments.Value `json:"value"`
}

// NewHandler creates a Handler with the given system, threshold source, logger, and pagination config.
func NewHandler(
	sys System,
	thresholds tally.ThresholdSource,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		thresholds: thresholds,
		logger:     logger.With("handler", "ratings"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for rating endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/ratings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Doc: listDoc},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Doc: searchDoc},
			{Method: "GET", Pattern: "/users/{userId}", Handler: h.ListForUser, Doc: listForUserDoc},
			{Method: "POST", Pattern: "/{clipId}", Handler: h.Submit, Doc: submitDoc},
			{Method: "GET", Pattern: "/{clipId}/users/{userId}", Handler: h.UserJudgment, Doc: userJudgmentDoc},
			{Method: "DELETE", Pattern: "/{clipId}/users/{userId}", Handler: h.Remove, Doc: removeDoc},
		},
	}
}

// Submit applies a rating toggle for the clip and returns its snapshot.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	clipID, err := uuid.Parse(r.PathValue("clipId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var cmd SubmitCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	cmd.ClipID = clipID

	if err := h.authorize(r, &cmd.UserID); err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	threshold, err := h.thresholds.DenyThreshold(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	snap, err := h.sys.Submit(r.Context(), cmd, threshold)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

// Remove deletes a user's judgment on the clip and returns its snapshot.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	clipID, userID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	if err := h.authorize(r, &userID); err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	threshold, err := h.thresholds.DenyThreshold(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	snap, err := h.sys.Remove(r.Context(), clipID, userID, threshold)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

// UserJudgment returns the user's current value for the clip.
func (h *Handler) UserJudgment(w http.ResponseWriter, r *http.Request) {
	clipID, userID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	value, err := h.sys.UserJudgment(r.Context(), clipID, userID)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, UserJudgmentResponse{
		ClipID: clipID,
		UserID: userID,
		Value:  value,
	})
}

// ListForUser returns a user's judgments, optionally bounded by start and end days.
func (h *Handler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rng, err := judgments.RangeFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	items, err := h.sys.ListForUser(r.Context(), userID, rng)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// List returns a paginated list of judgments with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := judgments.FiltersFromQuery(r.URL.Query())

	result, err := h.sys.Search(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching judgments.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.Search(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// authorize checks userID against the caller header. A request without the
// header keeps the identity it names itself; a zero userID takes the header's.
func (h *Handler) authorize(r *http.Request, userID *uuid.UUID) error {
	if h.userHeader == "" {
		return nil
	}
	raw := r.Header.Get(h.userHeader)
	if raw == "" {
		return nil
	}

	caller, err := uuid.Parse(raw)
	if err != nil {
		return ErrInvalidCaller
	}
	if *userID == uuid.Nil {
		*userID = caller
		return nil
	}
	if *userID != caller {
		return ErrCallerMismatch
	}
	return nil
}

func (h *Handler) pathIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	clipID, err := uuid.Parse(r.PathValue("clipId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}

	return clipID, userID, true
}
