package inspections

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for inspection headers.
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
		logger:     logger.With("handler", "inspections"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for inspection endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/inspections",
		Tags:        []string{"Inspections"},
		Description: "Inspection headers",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Summary: "List inspection headers",
				Params: append(routes.PageParams(), routes.Query("status", "po_number", "series", "product_code")...)},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Summary: "Get an inspection header"},
			{Method: "POST", Pattern: "", Handler: h.Create, Summary: "Create an inspection header"},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, Summary: "Update an in-progress inspection header"},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Summary: "Search inspection headers", Body: "PageRequest"},
		},
	}
}

// List returns a paginated list of inspections with optional query parameter filters.
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

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	i, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, i)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidHeader)
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

// Create registers a new header and returns it with its generated INS- id.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd HeaderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidHeader)
		return
	}

	i, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, i)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var cmd HeaderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidHeader)
		return
	}

	i, err := h.sys.Update(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, i)
}
