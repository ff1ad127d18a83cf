package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/angeeelvega/payment-app-backend/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the service error kinds to HTTP status codes. A
// terminal transaction gets 409: the request conflicts with current state and
// retrying it verbatim can never succeed.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, service.ErrPaymentDeclined):
		respondError(w, http.StatusBadRequest, "payment_declined", err.Error())
	case errors.Is(err, service.ErrInvalidState):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, service.ErrGateway):
		respondError(w, http.StatusBadGateway, "gateway_error", err.Error())
	default:
		log.Printf("unhandled service error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
