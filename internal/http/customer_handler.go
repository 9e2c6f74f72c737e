package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type registerRequest struct {
	Phone string `json:"phone"`
}

// RegisterCustomer creates the caller's customer record and active cart.
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" {
		writeError(w, r, http.StatusBadRequest, "phone is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, created, err := h.customers.Register(ctx, GetUserID(r.Context()), req.Phone)
	if err != nil {
		h.fail(w, r, "register customer", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, c)
}
