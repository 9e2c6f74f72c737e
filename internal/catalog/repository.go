package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrSlugTaken = errors.New("slug already taken")
)

const uniqueViolation = "23505"

// Querier is the subset of pgx methods shared by *pgxpool.Pool and pgx.Tx.
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

var baseColumns = []string{"id", "category_id", "title", "slug", "image", "description", "price", "created_at"}

func selectList(v Variant) string {
	cols := append(append([]string{}, baseColumns...), v.specColumns()...)
	return strings.Join(cols, ", ")
}

func scanTargets(v Variant) []any {
	p := v.Base()
	targets := []any{&p.ID, &p.CategoryID, &p.Title, &p.Slug, &p.Image, &p.Description, &p.Price, &p.CreatedAt}
	return append(targets, v.specTargets()...)
}

func finish(v Variant) Variant {
	p := v.Base()
	p.URL = ProductURL(p.Type, p.Slug)
	return v
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, tag TypeTag, slug string) (Variant, error) {
	k, err := lookup(tag)
	if err != nil {
		return nil, err
	}
	v := k.newVariant()
	sql := `SELECT ` + selectList(v) + ` FROM ` + k.table + ` WHERE slug = $1`
	if err := r.q.QueryRow(ctx, sql, slug).Scan(scanTargets(v)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %q: %w", tag, slug, ErrNotFound)
		}
		return nil, fmt.Errorf("select %s: %w", tag, err)
	}
	return finish(v), nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, tag TypeTag, id int64) (Variant, error) {
	k, err := lookup(tag)
	if err != nil {
		return nil, err
	}
	v := k.newVariant()
	sql := `SELECT ` + selectList(v) + ` FROM ` + k.table + ` WHERE id = $1`
	if err := r.q.QueryRow(ctx, sql, id).Scan(scanTargets(v)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s #%d: %w", tag, id, ErrNotFound)
		}
		return nil, fmt.Errorf("select %s: %w", tag, err)
	}
	return finish(v), nil
}

// GetOrCreate fetches the product with slug or inserts a bare placeholder
// filed under the kind's bound category. The bool reports whether a row was created.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, tag TypeTag, slug string) (Variant, bool, error) {
	v, err := r.GetBySlug(ctx, tag, slug)
	if err == nil {
		return v, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	k, err := lookup(tag)
	if err != nil {
		return nil, false, err
	}
	cat, err := r.CategoryBySlug(ctx, k.category)
	if err != nil {
		return nil, false, fmt.Errorf("default category for %s: %w", tag, err)
	}

	v = k.newVariant()
	sql := `INSERT INTO ` + k.table + ` (category_id, title, slug) VALUES ($1, $2, $3)
ON CONFLICT (slug) DO NOTHING
RETURNING ` + selectList(v)
	err = r.q.QueryRow(ctx, sql, cat.ID, slug, slug).Scan(scanTargets(v)...)
	if errors.Is(err, pgx.ErrNoRows) {
		// inserted concurrently by someone else
		v, err = r.GetBySlug(ctx, tag, slug)
		return v, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert %s placeholder: %w", tag, err)
	}
	return finish(v), true, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, v Variant) error {
	p := v.Base()
	k, err := lookup(p.Type)
	if err != nil {
		return err
	}

	cols := append([]string{"category_id", "title", "slug", "image", "description", "price"}, v.specColumns()...)
	args := append([]any{p.CategoryID, p.Title, p.Slug, p.Image, p.Description, p.Price}, v.specValues()...)
	sql := `INSERT INTO ` + k.table + ` (` + strings.Join(cols, ", ") + `) VALUES (` + placeholders(1, len(cols)) + `)
RETURNING id, created_at`

	if err := r.q.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("insert %s: %w", p.Type, mapWriteErr(err))
	}
	finish(v)
	return nil
}

// Update overwrites the row identified by v's ID.
func (r *PostgresRepository) Update(ctx context.Context, v Variant) error {
	p := v.Base()
	k, err := lookup(p.Type)
	if err != nil {
		return err
	}

	cols := append([]string{"category_id", "title", "slug", "image", "description", "price"}, v.specColumns()...)
	args := append([]any{p.CategoryID, p.Title, p.Slug, p.Image, p.Description, p.Price}, v.specValues()...)
	set := make([]string, len(cols))
	for i, c := range cols {
		set[i] = c + " = $" + strconv.Itoa(i+1)
	}
	args = append(args, p.ID)
	sql := `UPDATE ` + k.table + ` SET ` + strings.Join(set, ", ") + ` WHERE id = $` + strconv.Itoa(len(args)) + `
RETURNING created_at`

	if err := r.q.QueryRow(ctx, sql, args...).Scan(&p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s #%d: %w", p.Type, p.ID, ErrNotFound)
		}
		return fmt.Errorf("update %s: %w", p.Type, mapWriteErr(err))
	}
	finish(v)
	return nil
}

// ListLatest returns up to limit products of tag, newest first.
func (r *PostgresRepository) ListLatest(ctx context.Context, tag TypeTag, limit int) ([]Variant, error) {
	k, err := lookup(tag)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + selectList(k.newVariant()) + ` FROM ` + k.table + ` ORDER BY id DESC LIMIT $1`
	return r.list(ctx, k, sql, limit)
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, tag TypeTag, categoryID int64) ([]Variant, error) {
	k, err := lookup(tag)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + selectList(k.newVariant()) + ` FROM ` + k.table + ` WHERE category_id = $1 ORDER BY id DESC`
	return r.list(ctx, k, sql, categoryID)
}

func (r *PostgresRepository) list(ctx context.Context, k kind, sql string, args ...any) ([]Variant, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", k.table, err)
	}
	defer rows.Close()

	var out []Variant
	for rows.Next() {
		v := k.newVariant()
		if err := rows.Scan(scanTargets(v)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", k.table, err)
		}
		out = append(out, finish(v))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", k.table, err)
	}
	return out, nil
}

func (r *PostgresRepository) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	err := r.q.QueryRow(ctx, `SELECT id, name, slug FROM categories WHERE slug = $1`, slug).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, fmt.Errorf("category %q: %w", slug, ErrNotFound)
		}
		return Category{}, fmt.Errorf("select category: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) CategoryByID(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.q.QueryRow(ctx, `SELECT id, name, slug FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, fmt.Errorf("category #%d: %w", id, ErrNotFound)
		}
		return Category{}, fmt.Errorf("select category: %w", err)
	}
	return c, nil
}

// SidebarCounts counts the products of every registered kind per category.
func (r *PostgresRepository) SidebarCounts(ctx context.Context) ([]SidebarEntry, error) {
	rows, err := r.q.Query(ctx, sidebarQuery())
	if err != nil {
		return nil, fmt.Errorf("select sidebar: %w", err)
	}
	defer rows.Close()

	out := []SidebarEntry{}
	for rows.Next() {
		var e SidebarEntry
		if err := rows.Scan(&e.Name, &e.Slug, &e.Count); err != nil {
			return nil, fmt.Errorf("scan sidebar: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows sidebar: %w", err)
	}
	return out, nil
}

func sidebarQuery() string {
	counts := make([]string, 0, len(registry))
	for _, k := range registry {
		counts = append(counts, `(SELECT count(*) FROM `+k.table+` p WHERE p.category_id = c.id)`)
	}
	return `SELECT c.name, c.slug, ` + strings.Join(counts, " + ") + ` AS count FROM categories c ORDER BY c.id`
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(ph, ", ")
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return err
}
