package cart

import (
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
)

// Cart is a customer's basket with aggregates derived from its lines.
type Cart struct {
	ID               int64           `json:"id"`
	OwnerID          int64           `json:"ownerId"`
	TotalProducts    int             `json:"totalProducts"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	InOrder          bool            `json:"inOrder"`
	ForAnonymousUser bool            `json:"forAnonymousUser"`
	Lines            []Line          `json:"lines"`
}

// Line is one product in a cart with its own subtotal.
type Line struct {
	ID          int64           `json:"id"`
	CartID      int64           `json:"cartId"`
	OwnerID     int64           `json:"ownerId"`
	ProductType catalog.TypeTag `json:"productType"`
	ProductID   int64           `json:"productId"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Product     catalog.Variant `json:"product,omitempty"`
}

// Recompute sets the line total to quantity × unit price.
func (l *Line) Recompute(price decimal.Decimal) {
	l.TotalPrice = price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Recalculate derives the cart aggregates from its lines.
func (c *Cart) Recalculate() {
	c.TotalProducts = 0
	c.TotalPrice = decimal.Zero
	for _, l := range c.Lines {
		c.TotalProducts += l.Quantity
		c.TotalPrice = c.TotalPrice.Add(l.TotalPrice)
	}
}

// View is the cart page: the active cart with resolved products and the sidebar.
type View struct {
	Cart       Cart                   `json:"cart"`
	Categories []catalog.SidebarEntry `json:"categories"`
}

// Home is the landing page payload.
type Home struct {
	Categories []catalog.SidebarEntry `json:"categories"`
	Products   []catalog.Variant      `json:"products"`
	Cart       *Cart                  `json:"cart,omitempty"`
}
