package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/customer"
)

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, CorrelationID: GetCorrelationID(r.Context())})
}

// statusFor maps domain errors to an HTTP status and a client-facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, cart.ErrNoActiveCart):
		return http.StatusNotFound, "please set up a cart"
	case errors.Is(err, customer.ErrNoSuchCustomer):
		return http.StatusNotFound, "please set up an account"
	case errors.Is(err, catalog.ErrUnknownType),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, catalog.ErrResolutionTooLow),
		errors.Is(err, catalog.ErrResolutionTooHigh),
		errors.Is(err, catalog.ErrImageTooLarge),
		errors.Is(err, catalog.ErrInvalidImage),
		errors.Is(err, catalog.ErrCategoryMismatch):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, catalog.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, catalog.ErrSlugTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Printf("%s failed cid=%s: %v", op, GetCorrelationID(r.Context()), err)
	}
	writeError(w, r, status, msg)
}
