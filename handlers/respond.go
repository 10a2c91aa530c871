package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"zennote/apperr"
)

type errorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindInvalidCredentials:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError converts err into the JSON error envelope. Internal errors are
// logged with their cause and reported to the caller without detail.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var e *apperr.Error
	kind := apperr.KindOf(err)
	resp := errorResponse{Error: "Internal Server Error"}

	if kind == apperr.KindInternal {
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	} else if errors.As(err, &e) {
		resp.Error = e.Message
		resp.Errors = e.Fields
	}
	WriteJSON(w, StatusFor(kind), resp)
}
