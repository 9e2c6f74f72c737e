package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNoSuchCustomer = errors.New("no such customer")

type Customer struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`
	Phone  string `json:"phone"`
}

type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PostgresRepository struct {
	q    Querier
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{q: pool, pool: pool}
}

// WithExecutor returns a shallow copy using the provided executor (e.g., a transaction).
func (r *PostgresRepository) WithExecutor(q Querier) *PostgresRepository {
	return &PostgresRepository{q: q, pool: r.pool}
}

func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) (Customer, error) {
	return getByUser(ctx, r.q, userID)
}

func getByUser(ctx context.Context, q Querier, userID string) (Customer, error) {
	var c Customer
	err := q.QueryRow(ctx, `SELECT id, user_id, phone FROM customers WHERE user_id = $1`, userID).
		Scan(&c.ID, &c.UserID, &c.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, fmt.Errorf("user %q: %w", userID, ErrNoSuchCustomer)
		}
		return Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}

// Register creates the customer for userID together with its active cart.
// An existing customer is returned as is, and given a fresh active cart if
// its last one was ordered. The bool reports whether the customer is new.
func (r *PostgresRepository) Register(ctx context.Context, userID, phone string) (Customer, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Customer{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var c Customer
	created := true
	err = tx.QueryRow(ctx, `
		INSERT INTO customers (user_id, phone) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, phone`, userID, phone).Scan(&c.ID, &c.UserID, &c.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		created = false
		c, err = getByUser(ctx, tx, userID)
	}
	if err != nil {
		return Customer{}, false, fmt.Errorf("register customer: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO carts (owner_id) VALUES ($1)
		ON CONFLICT (owner_id) WHERE NOT in_order DO NOTHING`, c.ID); err != nil {
		return Customer{}, false, fmt.Errorf("create active cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Customer{}, false, fmt.Errorf("commit: %w", err)
	}
	return c, created, nil
}
