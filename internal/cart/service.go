package cart

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/customer"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Service struct {
	pool      DBPool
	carts     *PostgresRepository
	customers *customer.PostgresRepository
	catalog   *catalog.Service
	logger    *log.Logger
}

func NewService(pool DBPool, carts *PostgresRepository, customers *customer.PostgresRepository, products *catalog.Service, logger *log.Logger) *Service {
	return &Service{pool: pool, carts: carts, customers: customers, catalog: products, logger: logger}
}

// AddToCart puts one more unit of the product into the customer's active
// cart. A product that does not exist yet is created as a placeholder.
func (s *Service) AddToCart(ctx context.Context, userID string, tag catalog.TypeTag, slug string) (Cart, error) {
	var out Cart
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		carts := s.carts.WithExecutor(tx)
		c, err := s.lockActiveCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		v, _, err := s.catalog.WithExecutor(tx).ResolveOrCreate(ctx, tag, slug)
		if err != nil {
			return err
		}
		p := v.Base()

		line, err := carts.LineForUpdate(ctx, c.ID, tag, p.ID)
		switch {
		case errors.Is(err, ErrLineNotFound):
			line = Line{CartID: c.ID, OwnerID: c.OwnerID, ProductType: tag, ProductID: p.ID}
		case err != nil:
			return err
		}
		line.Quantity++
		line.Recompute(p.Price)
		if err := carts.SaveLine(ctx, &line); err != nil {
			return err
		}

		out, err = s.refreshTotals(ctx, tx, c)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	s.logger.Printf("cart #%d: added %s/%s, %d products, total %s", out.ID, tag, slug, out.TotalProducts, out.TotalPrice.StringFixed(2))
	return out, nil
}

// RemoveFromCart drops the product's line from the customer's active cart.
func (s *Service) RemoveFromCart(ctx context.Context, userID string, tag catalog.TypeTag, slug string) (Cart, error) {
	var out Cart
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		carts := s.carts.WithExecutor(tx)
		c, err := s.lockActiveCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		v, err := s.catalog.WithExecutor(tx).Resolve(ctx, tag, slug)
		if err != nil {
			return err
		}
		line, err := carts.LineForUpdate(ctx, c.ID, tag, v.Base().ID)
		if err != nil {
			return err
		}
		if err := carts.DeleteLine(ctx, line.ID); err != nil {
			return err
		}

		out, err = s.refreshTotals(ctx, tx, c)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	s.logger.Printf("cart #%d: removed %s/%s, %d products, total %s", out.ID, tag, slug, out.TotalProducts, out.TotalPrice.StringFixed(2))
	return out, nil
}

// ViewCart returns the customer's active cart with every line's product.
func (s *Service) ViewCart(ctx context.Context, userID string) (View, error) {
	c, err := s.activeCart(ctx, userID)
	if err != nil {
		return View{}, err
	}
	categories, err := s.catalog.SidebarCounts(ctx)
	if err != nil {
		return View{}, err
	}
	return View{Cart: c, Categories: categories}, nil
}

// Home collects the sidebar, the latest products and, for known customers, their cart.
func (s *Service) Home(ctx context.Context, userID string) (Home, error) {
	categories, err := s.catalog.SidebarCounts(ctx)
	if err != nil {
		return Home{}, err
	}
	products, err := s.catalog.LatestProducts(ctx, catalog.Tags(), "")
	if err != nil {
		return Home{}, err
	}
	home := Home{Categories: categories, Products: products}

	if userID == "" {
		return home, nil
	}
	c, err := s.activeCart(ctx, userID)
	switch {
	case err == nil:
		home.Cart = &c
	case errors.Is(err, customer.ErrNoSuchCustomer), errors.Is(err, ErrNoActiveCart):
	default:
		return Home{}, err
	}
	return home, nil
}

func (s *Service) activeCart(ctx context.Context, userID string) (Cart, error) {
	cust, err := s.customers.GetByUser(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	c, err := s.carts.ActiveCart(ctx, cust.ID, false)
	if err != nil {
		return Cart{}, err
	}
	if c.Lines, err = s.carts.Lines(ctx, c.ID); err != nil {
		return Cart{}, err
	}
	for i := range c.Lines {
		l := &c.Lines[i]
		v, err := s.catalog.GetByID(ctx, l.ProductType, l.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrUnknownType) {
				s.logger.Printf("cart #%d line #%d: %v", c.ID, l.ID, err)
				continue
			}
			return Cart{}, err
		}
		l.Product = v
		l.Recompute(v.Base().Price)
	}
	c.Recalculate()
	return c, nil
}

func (s *Service) lockActiveCart(ctx context.Context, tx pgx.Tx, userID string) (Cart, error) {
	cust, err := s.customers.WithExecutor(tx).GetByUser(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	return s.carts.WithExecutor(tx).ActiveCart(ctx, cust.ID, true)
}

func (s *Service) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// refreshTotals reprices every line of c at the current product price and
// writes the cart aggregates. Lines whose product is gone keep their stored total.
func (s *Service) refreshTotals(ctx context.Context, tx pgx.Tx, c Cart) (Cart, error) {
	carts := s.carts.WithExecutor(tx)
	products := s.catalog.WithExecutor(tx)

	lines, err := carts.Lines(ctx, c.ID)
	if err != nil {
		return Cart{}, err
	}
	for i := range lines {
		l := &lines[i]
		v, err := products.GetByID(ctx, l.ProductType, l.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrUnknownType) {
				continue
			}
			return Cart{}, err
		}
		stored := l.TotalPrice
		l.Recompute(v.Base().Price)
		if l.TotalPrice.Equal(stored) {
			continue
		}
		if err := carts.SaveLine(ctx, l); err != nil {
			return Cart{}, err
		}
	}

	c.Lines = lines
	c.Recalculate()
	if err := carts.UpdateTotals(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}
