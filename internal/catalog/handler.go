package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for catalog lookup and maintenance.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "catalog"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for catalog endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/catalog/{check}",
		Tags:        []string{"Catalog"},
		Description: "Checklist questions per check type and series",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/questions", Handler: h.Questions, Summary: "Active questions for a check and series",
				Params: routes.Query("series")},
			{Method: "GET", Pattern: "", Handler: h.List, Summary: "List catalog entries",
				Params: append(routes.PageParams(), routes.Query("series", "active")...)},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Summary: "Get a catalog entry"},
			{Method: "POST", Pattern: "", Handler: h.Create, Summary: "Create a catalog entry"},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.Activate, Summary: "Activate a catalog entry"},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.Deactivate, Summary: "Deactivate a catalog entry"},
		},
	}
}

// Questions returns the ordered active question list for ?series=.
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	check, ok := h.check(w, r)
	if !ok {
		return
	}

	qs, err := h.sys.Questions(r.Context(), check, r.URL.Query().Get("series"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, qs)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	check, ok := h.check(w, r)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), check, page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	check, ok := h.check(w, r)
	if !ok {
		return
	}

	q, err := h.sys.Find(r.Context(), check, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, q)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	check, ok := h.check(w, r)
	if !ok {
		return
	}

	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidQuestion)
		return
	}

	q, err := h.sys.Create(r.Context(), check, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, q)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	check, ok := h.check(w, r)
	if !ok {
		return
	}

	q, err := h.sys.SetActive(r.Context(), check, r.PathValue("id"), active)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, q)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) (checks.Type, bool) {
	check, err := checks.ParseType(r.PathValue("check"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return "", false
	}
	return check, true
}
