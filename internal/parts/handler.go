package parts

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for part master lookups and import.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "parts"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for part master endpoints.
// Lookups cascade through query parameters: line, then series, then code.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/parts",
		Tags:        []string{"Parts"},
		Description: "Part master lookups and import",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/lines", Handler: h.Lines, Summary: "List product lines"},
			{Method: "GET", Pattern: "/series", Handler: h.Series, Summary: "List series for a line", Params: routes.Query("line")},
			{Method: "GET", Pattern: "/codes", Handler: h.Codes, Summary: "List part codes for a line and series", Params: routes.Query("line", "series")},
			{Method: "GET", Pattern: "/details", Handler: h.Details, Summary: "Get part details", Params: routes.Query("line", "series", "code")},
			{Method: "GET", Pattern: "/tiers", Handler: h.Tiers, Summary: "List the vendor tier sampling reference"},
			{Method: "POST", Pattern: "/import", Handler: h.Import, Summary: "Import the part master from CSV or XLSX"},
		},
	}
}

func (h *Handler) Lines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.sys.Lines(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, lines)
}

func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	series, err := h.sys.Series(r.Context(), r.URL.Query().Get("line"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, series)
}

func (h *Handler) Codes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	codes, err := h.sys.Codes(r.Context(), q.Get("line"), q.Get("series"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, codes)
}

func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.sys.Details(r.Context(), q.Get("line"), q.Get("series"), q.Get("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) Tiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.sys.Tiers(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, tiers)
}

// Import reads a multipart "file" field and upserts its rows.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := handlers.ParseMultipart(w, r, h.maxUploadSize); err != nil {
		if errors.Is(err, handlers.ErrTooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: %w", ErrFileTooLarge, err))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidFile, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	result, err := h.sys.Import(r.Context(), header.Filename, file)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
