package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for result upsert, read, and attachments.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "results"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route groups for results and attachments.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags:        []string{"Results"},
		Description: "Per-check results and attachments",
		Children: []routes.Group{
			{
				Prefix: "/inspections/{id}/results/{check}",
				Routes: []routes.Route{
					{Method: "PUT", Pattern: "", Handler: h.Upsert, Summary: "Upsert answers for a check", Body: "UpsertCommand"},
					{Method: "GET", Pattern: "", Handler: h.Read, Summary: "Read stored answers for a check"},
					{Method: "GET", Pattern: "/counts", Handler: h.Counts, Summary: "Per-check answer rollup"},
				},
			},
			{
				Prefix: "/inspections/{id}/attachments",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: h.Upload, Summary: "Upload a photo or document attachment"},
					{Method: "GET", Pattern: "", Handler: h.ListAttachments, Summary: "List an inspection's attachments"},
				},
			},
			{
				Prefix: "/attachments",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{key...}", Handler: h.Download, Summary: "Download an attachment"},
				},
			},
		},
	}
}

// Upsert applies a batch of answers and reports updated and inserted counts.
// On a mid-batch failure the partial counts are logged and the error returned.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	check, err := checks.ParseType(r.PathValue("check"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpsertCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidPayload, err))
		return
	}

	result, err := h.sys.Upsert(r.Context(), check, r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	check, err := checks.ParseType(r.PathValue("check"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Read(r.Context(), check, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	check, err := checks.ParseType(r.PathValue("check"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	counts, err := h.sys.Counts(r.Context(), check, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, counts)
}

// Upload stores a multipart "file" field under the inspection's key prefix.
// Extracts PDF page count for certificate uploads using pdfcpu.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
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

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)

	a, err := h.sys.Attach(r.Context(), r.PathValue("id"), AttachCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		PageCount:   extractPDFPageCount(h.logger, data, contentType),
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, a)
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	list, err := h.sys.Attachments(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	blob, err := h.sys.Attachment(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, blob.Body)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
