package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	home, err := h.carts.Home(ctx, GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, "home", err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	entries, err := h.catalog.SidebarCounts(ctx)
	if err != nil {
		h.fail(w, r, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeError(w, r, http.StatusBadRequest, "missing slug")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	detail, err := h.catalog.CategoryDetail(ctx, slug)
	if err != nil {
		h.fail(w, r, "category detail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	tag := catalog.TypeTag(chi.URLParam(r, "type"))
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	detail, err := h.catalog.ProductDetail(ctx, tag, slug)
	if err != nil {
		h.fail(w, r, "product detail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	tag := catalog.TypeTag(chi.URLParam(r, "type"))

	v, img, err := h.readProductForm(w, r, tag)
	if err != nil {
		h.failForm(w, r, "create product", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	saved, err := h.catalog.CreateProduct(ctx, v, img)
	if err != nil {
		h.fail(w, r, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	tag := catalog.TypeTag(chi.URLParam(r, "type"))
	slug := chi.URLParam(r, "slug")

	v, img, err := h.readProductForm(w, r, tag)
	if err != nil {
		h.failForm(w, r, "update product", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	saved, err := h.catalog.UpdateProduct(ctx, tag, slug, v, img)
	if err != nil {
		h.fail(w, r, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// readProductForm decodes the multipart "product" JSON field into a variant of
// tag and reads the optional "image" file.
func (h *Handler) readProductForm(w http.ResponseWriter, r *http.Request, tag catalog.TypeTag) (catalog.Variant, *catalog.Image, error) {
	v, err := catalog.New(tag)
	if err != nil {
		return nil, nil, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, nil, err
	}

	raw := r.FormValue("product")
	if strings.TrimSpace(raw) == "" {
		return nil, nil, fmt.Errorf("%w: missing product field", catalog.ErrInvalidInput)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return nil, nil, fmt.Errorf("%w: product: %v", catalog.ErrInvalidInput, err)
	}
	// Identity and image reference are never taken from the client.
	p := v.Base()
	p.ID = 0
	p.Type = tag
	p.Image = ""

	f, fh, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return v, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return v, &catalog.Image{Filename: fh.Filename, Data: data}, nil
}

func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, op string, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, catalog.ErrUnknownType), errors.Is(err, catalog.ErrInvalidInput):
		h.fail(w, r, op, err)
	default:
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
	}
}
