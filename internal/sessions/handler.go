package sessions

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for checklist sessions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "sessions"),
	}
}

// ValidationResponse is the 422 body for a blocked move or save.
type ValidationResponse struct {
	Error      string           `json:"error"`
	Validation *ValidationError `json:"validation"`
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/sessions",
		Tags:        []string{"Sessions"},
		Description: "Sample-by-sample checklist sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Open, Summary: "Open a checklist session"},
			{Method: "GET", Pattern: "/{sid}", Handler: h.Get, Summary: "Get session state"},
			{Method: "POST", Pattern: "/{sid}/answers", Handler: h.Answer, Summary: "Record an answer on the current sample"},
			{Method: "POST", Pattern: "/{sid}/next", Handler: h.Next, Summary: "Validate and advance to the next sample"},
			{Method: "POST", Pattern: "/{sid}/previous", Handler: h.Previous, Summary: "Validate and return to the previous sample"},
			{Method: "POST", Pattern: "/{sid}/complete", Handler: h.Complete, Summary: "Save all samples to the result store"},
			{Method: "DELETE", Pattern: "/{sid}", Handler: h.Discard, Summary: "Discard a session"},
		},
	}
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var cmd StartCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.Open(r.Context(), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Get(id)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var cmd AnswerCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.Answer(id, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Next(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Previous(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.sys.Complete(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Discard(id); err != nil {
		h.fail(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("sid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid session ID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		h.logger.Warn("request rejected", "status", http.StatusUnprocessableEntity, "error", err)
		handlers.RespondJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
			Error:      verr.Error(),
			Validation: verr,
		})
		return
	}
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}
