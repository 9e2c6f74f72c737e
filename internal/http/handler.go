package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/events"
)

type CatalogService interface {
	SidebarCounts(ctx context.Context) ([]catalog.SidebarEntry, error)
	CategoryDetail(ctx context.Context, slug string) (catalog.CategoryDetail, error)
	ProductDetail(ctx context.Context, tag catalog.TypeTag, slug string) (catalog.ProductDetail, error)
	CreateProduct(ctx context.Context, v catalog.Variant, img *catalog.Image) (catalog.Variant, error)
	UpdateProduct(ctx context.Context, tag catalog.TypeTag, slug string, v catalog.Variant, img *catalog.Image) (catalog.Variant, error)
}

type CartService interface {
	AddToCart(ctx context.Context, userID string, tag catalog.TypeTag, slug string) (cart.Cart, error)
	RemoveFromCart(ctx context.Context, userID string, tag catalog.TypeTag, slug string) (cart.Cart, error)
	ViewCart(ctx context.Context, userID string) (cart.View, error)
	Home(ctx context.Context, userID string) (cart.Home, error)
}

type CustomerDirectory interface {
	Register(ctx context.Context, userID, phone string) (customer.Customer, bool, error)
}

// CartEventPublisher is optional; a nil publisher disables cart events.
type CartEventPublisher interface {
	PublishCartUpdated(ctx context.Context, meta events.EventMeta, userID string, c cart.Cart) error
}

type Handler struct {
	catalog   CatalogService
	carts     CartService
	customers CustomerDirectory
	publisher CartEventPublisher
	timeout   time.Duration
	maxUpload int64
	logger    *log.Logger
}

type Options struct {
	Timeout time.Duration
	// MaxImageBytes bounds the uploaded image; the multipart body may be
	// slightly larger to leave room for the product field.
	MaxImageBytes int64
}

func NewHandler(products CatalogService, carts CartService, customers CustomerDirectory, publisher CartEventPublisher, opts Options, logger *log.Logger) *Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = catalog.DefaultImageLimits.MaxBytes
	}
	return &Handler{
		catalog:   products,
		carts:     carts,
		customers: customers,
		publisher: publisher,
		timeout:   opts.Timeout,
		maxUpload: opts.MaxImageBytes + 1<<20,
		logger:    logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// publishCartUpdated runs after the cart transaction committed. Failures are
// logged only; the cart change already happened.
func (h *Handler) publishCartUpdated(r *http.Request, userID string, c cart.Cart) {
	if h.publisher == nil {
		return
	}
	meta := events.EventMeta{
		CorrelationID: GetCorrelationID(r.Context()),
		CausationID:   middleware.GetReqID(r.Context()),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()

	if err := h.publisher.PublishCartUpdated(ctx, meta, userID, c); err != nil {
		h.logger.Printf("publish CartUpdated cart=%d cid=%s: %v", c.ID, meta.CorrelationID, err)
	}
}
