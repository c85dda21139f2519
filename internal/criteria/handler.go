package criteria

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/handlers"
	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

// Handler provides HTTP endpoints for criterion management and evaluation.
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

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "criteria"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for criterion endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/criteria",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Doc: listDoc},
			{Method: "GET", Pattern: "/types", Handler: h.Types, Doc: typesDoc},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Doc: searchDoc},
			{Method: "POST", Pattern: "/evaluate", Handler: h.EvaluateAll, Doc: evaluateAllDoc},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Doc: findDoc},
			{Method: "POST", Pattern: "", Handler: h.Create, Doc: createDoc},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, Doc: updateDoc},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, Doc: deleteDoc},
			{Method: "POST", Pattern: "/{id}/evaluate", Handler: h.Evaluate, Doc: evaluateDoc},
		},
	}
}

// List returns a paginated list of criteria with optional query parameter filters.
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

// Types lists the supported criterion types.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Catalog)
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

// Find returns a single criterion by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Create adds a criterion.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

// Update replaces a criterion's fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Delete removes a criterion.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Evaluate previews one criterion's winners for a season.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	opts, err := DecodeOptions(r, time.Now())
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	result, err := h.sys.Evaluate(r.Context(), *c, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// EvaluateAll previews every applicable active criterion for a season.
func (h *Handler) EvaluateAll(w http.ResponseWriter, r *http.Request) {
	opts, err := DecodeOptions(r, time.Now())
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	result, err := h.sys.EvaluateAll(r.Context(), opts)
	if err != nil {
		handlers.RespondError(w, h.logger, faults.HTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// DecodeOptions reads evaluation options from an optional JSON body, then
// from season and year query parameters. A missing season defaults to the
// season containing now; results are always marked as previews.
func DecodeOptions(r *http.Request, now time.Time) (Options, error) {
	var opts Options
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
			return Options{}, errors.Join(ErrInvalidInput, err)
		}
	}

	if err := opts.fromQuery(r.URL.Query()); err != nil {
		return Options{}, err
	}

	season, year := seasons.Current(now)
	if opts.Season == "" {
		opts.Season = season
	}
	if opts.Year == 0 {
		opts.Year = year
	}

	opts.PreviewOnly = true
	return opts, nil
}

func (o *Options) fromQuery(values url.Values) error {
	if s := values.Get("season"); s != "" {
		season, err := seasons.Parse(s)
		if err != nil {
			return err
		}
		o.Season = season
	}
	if s := values.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return errors.Join(ErrInvalidInput, err)
		}
		o.Year = year
	}
	return nil
}
