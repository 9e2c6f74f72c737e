package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the shop API. mediaDir, when non-empty, is served under /media/.
func NewRouter(h *Handler, corsOrigins []string, mediaDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(corsOrigins))
	r.Use(UserID)

	r.Get("/health", h.Health)

	if mediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/home", h.Home)

		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{slug}", h.CategoryDetail)

		r.Get("/products/{type}/{slug}", h.ProductDetail)
		r.Post("/products/{type}", h.CreateProduct)
		r.Put("/products/{type}/{slug}", h.UpdateProduct)

		r.Group(func(r chi.Router) {
			r.Use(RequireUserID)

			r.Post("/customers", h.RegisterCustomer)

			r.Get("/cart", h.ViewCart)
			r.Post("/cart/items/{type}/{slug}", h.AddToCart)
			r.Delete("/cart/items/{type}/{slug}", h.RemoveFromCart)
		})
	})

	return r
}
