package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	notebookCols = []string{"id", "category_id", "title", "slug", "image", "description", "price", "created_at",
		"diagonal", "display_type", "processor_freq", "ram", "video"}
	smartphoneCols = []string{"id", "category_id", "title", "slug", "image", "description", "price", "created_at",
		"diagonal", "display_type", "bat_volume", "ram", "has_sd_slot", "main_camera", "front_camera"}
)

func notebookRows(t time.Time, rows ...[]any) *pgxmock.Rows {
	r := pgxmock.NewRows(notebookCols)
	for _, row := range rows {
		id, slug, price := row[0].(int64), row[1].(string), row[2].(string)
		r.AddRow(id, int64(1), "Notebook "+slug, slug, "/media/"+slug+".png", nil, decimal.RequireFromString(price), t,
			"15.6", "IPS", "2.4 GHz", "16 GB", "RTX 3050")
	}
	return r
}

func smartphoneRows(t time.Time, rows ...[]any) *pgxmock.Rows {
	r := pgxmock.NewRows(smartphoneCols)
	for _, row := range rows {
		id, slug, price := row[0].(int64), row[1].(string), row[2].(string)
		r.AddRow(id, int64(2), "Phone "+slug, slug, "/media/"+slug+".png", nil, decimal.RequireFromString(price), t,
			"6.1", "OLED", "3110 mAh", "4 GB", true, "12 MP", "12 MP")
	}
	return r
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func TestPostgresRepository_GetBySlug(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("FROM smartphones WHERE slug = ").
			WithArgs("iphone-11").
			WillReturnRows(smartphoneRows(now, []any{int64(7), "iphone-11", "999.00"}))

		v, err := repo.GetBySlug(ctx, TagSmartphone, "iphone-11")
		require.NoError(t, err)

		phone, ok := v.(*Smartphone)
		require.True(t, ok, "expected *Smartphone, got %T", v)
		assert.Equal(t, int64(7), phone.ID)
		assert.Equal(t, TagSmartphone, phone.Type)
		assert.True(t, phone.Price.Equal(decimal.RequireFromString("999")))
		assert.True(t, phone.HasSDSlot)
		assert.Nil(t, phone.Description)
		assert.Equal(t, "/api/products/smartphone/iphone-11", phone.URL)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("FROM notebooks WHERE slug = ").
			WithArgs("nope").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetBySlug(ctx, TagNotebook, "nope")
		require.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown type never queries", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		_, err := repo.GetBySlug(ctx, TypeTag("tablet"), "x")
		require.ErrorIs(t, err, ErrUnknownType)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("existing product", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("FROM notebooks WHERE slug = ").
			WithArgs("acer").
			WillReturnRows(notebookRows(now, []any{int64(3), "acer", "1200.50"}))

		v, created, err := repo.GetOrCreate(ctx, TagNotebook, "acer")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(3), v.Base().ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates placeholder in bound category", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("FROM smartphones WHERE slug = ").
			WithArgs("pixel-9").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, slug FROM categories WHERE slug = $1")).
			WithArgs("smartphones").
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug"}).AddRow(int64(2), "Smartphones", "smartphones"))
		mock.ExpectQuery("INSERT INTO smartphones").
			WithArgs(int64(2), "pixel-9", "pixel-9").
			WillReturnRows(pgxmock.NewRows(smartphoneCols).
				AddRow(int64(11), int64(2), "pixel-9", "pixel-9", "", nil, decimal.Zero, now,
					"", "", "", "", true, "", ""))

		v, created, err := repo.GetOrCreate(ctx, TagSmartphone, "pixel-9")
		require.NoError(t, err)
		assert.True(t, created)
		p := v.Base()
		assert.Equal(t, "pixel-9", p.Title)
		assert.Equal(t, int64(2), p.CategoryID)
		assert.True(t, p.Price.IsZero())
		assert.Empty(t, p.Image)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost insert race falls back to select", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("FROM notebooks WHERE slug = ").
			WithArgs("acer").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, slug FROM categories WHERE slug = $1")).
			WithArgs("notebooks").
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug"}).AddRow(int64(1), "Notebooks", "notebooks"))
		mock.ExpectQuery("INSERT INTO notebooks").
			WithArgs(int64(1), "acer", "acer").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("FROM notebooks WHERE slug = ").
			WithArgs("acer").
			WillReturnRows(notebookRows(now, []any{int64(4), "acer", "10"}))

		v, created, err := repo.GetOrCreate(ctx, TagNotebook, "acer")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(4), v.Base().ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and url", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now()
		mock.ExpectQuery("INSERT INTO notebooks").
			WithArgs(anyArgs(11)...).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(21), now))

		nb := &NoteBook{Product: Product{Type: TagNotebook, CategoryID: 1, Title: "Acer", Slug: "acer", Price: decimal.RequireFromString("500")}}
		require.NoError(t, repo.Insert(ctx, nb))
		assert.Equal(t, int64(21), nb.ID)
		assert.Equal(t, now, nb.CreatedAt)
		assert.Equal(t, "/api/products/notebook/acer", nb.URL)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate slug", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("INSERT INTO notebooks").
			WithArgs(anyArgs(11)...).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		nb := &NoteBook{Product: Product{Type: TagNotebook, CategoryID: 1, Title: "Acer", Slug: "acer"}}
		err := repo.Insert(ctx, nb)
		require.ErrorIs(t, err, ErrSlugTaken)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_UpdateMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("UPDATE smartphones SET").
		WithArgs(anyArgs(14)...).
		WillReturnError(pgx.ErrNoRows)

	phone := &Smartphone{Product: Product{ID: 99, Type: TagSmartphone, CategoryID: 2, Title: "x", Slug: "x"}}
	err := repo.Update(context.Background(), phone)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SidebarCounts(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM categories c ORDER BY c.id").
		WillReturnRows(pgxmock.NewRows([]string{"name", "slug", "count"}).
			AddRow("Notebooks", "notebooks", int64(3)).
			AddRow("Smartphones", "smartphones", int64(0)))

	got, err := repo.SidebarCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []SidebarEntry{
		{Name: "Notebooks", Slug: "notebooks", Count: 3},
		{Name: "Smartphones", Slug: "smartphones", Count: 0},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSidebarQueryCoversEveryKind(t *testing.T) {
	q := sidebarQuery()
	for _, k := range registry {
		assert.Contains(t, q, "FROM "+k.table+" p")
	}
}

func TestPostgresRepository_ListByCategoryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM notebooks WHERE category_id = ").
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByCategory(context.Background(), TagNotebook, 1)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
