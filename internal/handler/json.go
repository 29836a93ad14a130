package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/bomberos-dev/guardias/backend/internal/service"
)

// Response is the envelope of every reply, success or failure. Path and
// Method echo the request so clients and tests can tell replies apart.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Path    string `json:"path"`
	Method  string `json:"method"`
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("error interno del servidor", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "error interno del servidor", http.StatusInternalServerError)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Error:   msg,
		Path:    r.URL.Path,
		Method:  r.Method,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
}

// serviceError maps the service's error kinds onto statuses: 400 validation,
// 404 unknown reference, 409 overlap or busy agenda, 500 anything else.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case service.KindValidation:
			h.errorResponse(w, r, http.StatusBadRequest, svcErr.Message)
		case service.KindNotFound:
			h.errorResponse(w, r, http.StatusNotFound, svcErr.Message)
		case service.KindConflict:
			h.errorResponse(w, r, http.StatusConflict, svcErr.Message)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.internalServerError(w, r, err)
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, err.Error())
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Data:    data,
		Path:    r.URL.Path,
		Method:  r.Method,
	})
}
