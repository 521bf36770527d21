package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"foodorder/internal/service"
)

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// writeError maps service errors onto HTTP statuses. Unknown errors are logged
// and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		gatewayErr    *service.GatewayError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: validationErr.Message, Field: validationErr.Field})
	case errors.Is(err, service.ErrRestaurantNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.As(err, &gatewayErr):
		slog.Error("payment gateway failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, gatewayErr.Message)
	case errors.Is(err, service.ErrInvalidSignature):
		writeMessage(w, http.StatusBadRequest, "invalid signature")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrInvalidStatusTransition):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRestaurantExists),
		errors.Is(err, service.ErrLoginExists):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
