package summaries

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/routes"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler provides HTTP endpoints for aggregation, completion, and summaries.
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

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "summaries"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for summary endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/summaries",
		Tags:        []string{"Summaries"},
		Description: "Rejection metrics, disposition, and completion summaries",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Summary: "List completion summaries",
				Params: append(routes.PageParams(), routes.Query("disposition", "series", "po_number", "product_code", "from", "to")...)},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Summary: "Search completion summaries", Body: "PageRequest"},
			{Method: "GET", Pattern: "/export", Handler: h.Export, Summary: "Export completion summaries as XLSX",
				Params: routes.Query("disposition", "series", "po_number", "product_code", "from", "to")},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Summary: "Get the summary of a completed inspection"},
			{Method: "GET", Pattern: "/{id}/metrics", Handler: h.Metrics, Summary: "Calculate rejection metrics and disposition"},
			{Method: "GET", Pattern: "/{id}/readiness", Handler: h.Readiness, Summary: "List check sections without results"},
			{Method: "POST", Pattern: "/{id}/complete", Handler: h.Complete, Summary: "Complete an inspection"},
			{Method: "POST", Pattern: "/{id}/email", Handler: h.Email, Summary: "Email the inspection summary"},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

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

// Export writes matching summaries as an XLSX attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	data, err := h.sys.Export(r.Context(), filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	filename := fmt.Sprintf("inspection-summaries-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.sys.Metrics(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	rd, err := h.sys.Readiness(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rd)
}

// Complete finalizes the inspection and returns the recorded summary.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s)
}

func (h *Handler) Email(w http.ResponseWriter, r *http.Request) {
	var cmd EmailCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidEmail, err))
		return
	}

	result, err := h.sys.Email(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
