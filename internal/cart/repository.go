package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
)

var (
	ErrNoActiveCart = errors.New("no active cart")
	ErrLineNotFound = errors.New("cart line not found")
)

type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	q Querier
}

func NewPostgresRepository(q Querier) *PostgresRepository {
	return &PostgresRepository{q: q}
}

// WithExecutor returns a shallow copy using the provided executor (e.g., a transaction).
func (r *PostgresRepository) WithExecutor(q Querier) *PostgresRepository {
	return &PostgresRepository{q: q}
}

// ActiveCart returns the owner's cart that is not yet ordered. With lock set
// the row stays locked until the surrounding transaction ends.
func (r *PostgresRepository) ActiveCart(ctx context.Context, ownerID int64, lock bool) (Cart, error) {
	sql := `SELECT id, owner_id, total_products, total_price, in_order, for_anonymous_user
		FROM carts WHERE owner_id = $1 AND NOT in_order`
	if lock {
		sql += ` FOR UPDATE`
	}

	var c Cart
	err := r.q.QueryRow(ctx, sql, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.TotalProducts, &c.TotalPrice, &c.InOrder, &c.ForAnonymousUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cart{}, fmt.Errorf("customer #%d: %w", ownerID, ErrNoActiveCart)
		}
		return Cart{}, fmt.Errorf("select cart: %w", err)
	}
	return c, nil
}

// LineForUpdate locks the cart's line for one product.
func (r *PostgresRepository) LineForUpdate(ctx context.Context, cartID int64, tag catalog.TypeTag, productID int64) (Line, error) {
	var l Line
	err := r.q.QueryRow(ctx, `
		SELECT id, cart_id, owner_id, product_type, product_id, quantity, total_price
		FROM cart_lines
		WHERE cart_id = $1 AND product_type = $2 AND product_id = $3
		FOR UPDATE`, cartID, string(tag), productID).
		Scan(&l.ID, &l.CartID, &l.OwnerID, &l.ProductType, &l.ProductID, &l.Quantity, &l.TotalPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Line{}, fmt.Errorf("cart #%d %s #%d: %w", cartID, tag, productID, ErrLineNotFound)
		}
		return Line{}, fmt.Errorf("select line: %w", err)
	}
	return l, nil
}

// SaveLine inserts a new line or updates quantity and total of an existing one.
func (r *PostgresRepository) SaveLine(ctx context.Context, l *Line) error {
	if l.ID == 0 {
		err := r.q.QueryRow(ctx, `
			INSERT INTO cart_lines (cart_id, owner_id, product_type, product_id, quantity, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`, l.CartID, l.OwnerID, string(l.ProductType), l.ProductID, l.Quantity, l.TotalPrice).
			Scan(&l.ID)
		if err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
		return nil
	}

	if _, err := r.q.Exec(ctx, `UPDATE cart_lines SET quantity = $1, total_price = $2 WHERE id = $3`,
		l.Quantity, l.TotalPrice, l.ID); err != nil {
		return fmt.Errorf("update line: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteLine(ctx context.Context, lineID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("delete line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("line #%d: %w", lineID, ErrLineNotFound)
	}
	return nil
}

func (r *PostgresRepository) Lines(ctx context.Context, cartID int64) ([]Line, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, cart_id, owner_id, product_type, product_id, quantity, total_price
		FROM cart_lines WHERE cart_id = $1 ORDER BY id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.CartID, &l.OwnerID, &l.ProductType, &l.ProductID, &l.Quantity, &l.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows lines: %w", err)
	}
	return lines, nil
}

func (r *PostgresRepository) UpdateTotals(ctx context.Context, c Cart) error {
	_, err := r.q.Exec(ctx, `UPDATE carts SET total_products = $1, total_price = $2, updated_at = now() WHERE id = $3`,
		c.TotalProducts, c.TotalPrice, c.ID)
	if err != nil {
		return fmt.Errorf("update cart totals: %w", err)
	}
	return nil
}
