package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
)

func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.carts.ViewCart(ctx, GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, "view cart", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.changeCart(w, r, "add to cart", h.carts.AddToCart)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.changeCart(w, r, "remove from cart", h.carts.RemoveFromCart)
}

type cartChange func(ctx context.Context, userID string, tag catalog.TypeTag, slug string) (cart.Cart, error)

func (h *Handler) changeCart(w http.ResponseWriter, r *http.Request, op string, change cartChange) {
	userID := GetUserID(r.Context())
	tag := catalog.TypeTag(chi.URLParam(r, "type"))
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := change(ctx, userID, tag, slug)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.publishCartUpdated(r, userID, c)
	writeJSON(w, http.StatusOK, c)
}
