package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

// Error writes msg with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// FromError maps a service error to its status code and writes it.
func FromError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		Error(w, status, http.StatusText(status))

		return
	}

	Error(w, status, err.Error())
}

// StatusOf returns the HTTP status for a service error.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateIdentity),
		errors.Is(err, apperrors.ErrAlreadyExists),
		errors.Is(err, apperrors.ErrIllegalTransition),
		errors.Is(err, apperrors.ErrInsufficientPoints):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, apperrors.ErrInvalidArgument),
		errors.Is(err, money.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON body into v, writing a 400 response on failure.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		slog.Warn("Error decoding request body", "path", r.URL.Path, "error", err)
		Error(w, http.StatusBadRequest, "Failed to decode request body")

		return false
	}

	return true
}
