package trophies

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/criteria"
	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/handlers"
	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

// Handler provides HTTP endpoints for trophy operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// CommitResponse lists the records a commit created.
type CommitResponse struct {
	Season  seasons.Season `json:"season"`
	Year    int            `json:"year"`
	Awarded int            `json:"awarded"`
	Records []Record       `json:"records"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "trophies"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for trophy endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/trophies",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Doc: listDoc},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Doc: searchDoc},
			{Method: "POST", Pattern: "/preview", Handler: h.Preview, Doc: previewDoc},
			{Method: "POST", Pattern: "/commit", Handler: h.Commit, Doc: commitDoc},
			{Method: "GET", Pattern: "/archives", Handler: h.Archives, Doc: archivesDoc},
			{Method: "GET", Pattern: "/archives/{year}/{season}", Handler: h.Archive, Doc: archiveDoc},
			{Method: "DELETE", Pattern: "/archives/{year}/{season}", Handler: h.DeleteArchive, Doc: deleteArchiveDoc},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Doc: findDoc},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Retract, Doc: retractDoc},
		},
	}
}

// List returns a paginated list of trophies with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Preview evaluates the season's awards without persisting them.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	opts, err := criteria.DecodeOptions(r, time.Now())
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	result, err := h.sys.Preview(r.Context(), opts.Season, opts.Year)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Commit persists the season's awards.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var cmd CommitCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if cmd.Season == "" || cmd.Year == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: season and year are required", faults.ErrValidation))
		return
	}

	records, err := h.sys.Commit(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, CommitResponse{
		Season:  cmd.Season,
		Year:    cmd.Year,
		Awarded: len(records),
		Records: records,
	})
}

// Archive returns the stored report of a committed season.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	season, year, err := archivePath(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	report, err := h.sys.Archive(r.Context(), season, year)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Archives lists the archived season reports.
func (h *Handler) Archives(w http.ResponseWriter, r *http.Request) {
	entries, err := h.sys.Archives(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entries)
}

// DeleteArchive removes a season's stored report.
func (h *Handler) DeleteArchive(w http.ResponseWriter, r *http.Request) {
	season, year, err := archivePath(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.DeleteArchive(r.Context(), season, year); err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func archivePath(r *http.Request) (seasons.Season, int, error) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		return "", 0, fmt.Errorf("%w: year %q", seasons.ErrInvalidSeason, r.PathValue("year"))
	}

	season, err := seasons.Parse(r.PathValue("season"))
	if err != nil {
		return "", 0, err
	}
	return season, year, nil
}

// Find returns a single trophy by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Retract deletes a committed trophy.
func (h *Handler) Retract(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	if err := h.sys.Retract(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
