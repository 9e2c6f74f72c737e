package events

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const nextSequenceSQL = "INSERT INTO event_sequences (partition_key, last_sequence, updated_at)"

func TestNextSequenceIncrementsPerPartition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSequenceRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(nextSequenceSQL)).
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_sequence"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(nextSequenceSQL)).
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_sequence"}).AddRow(int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta(nextSequenceSQL)).
		WithArgs("cart-2").
		WillReturnRows(sqlmock.NewRows([]string{"last_sequence"}).AddRow(int64(1)))

	seq, err := repo.NextSequence(ctx, "cart-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), seq)

	seq, err = repo.NextSequence(ctx, "cart-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), seq)

	seq, err = repo.NextSequence(ctx, "cart-2")
	require.NoError(t, err)
	require.Equal(t, int64(1), seq)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNextSequenceErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSequenceRepository(db)
	ctx := context.Background()

	_, err = repo.NextSequence(ctx, "")
	require.Error(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(nextSequenceSQL)).
		WithArgs("cart-9").
		WillReturnError(errors.New("connection refused"))

	_, err = repo.NextSequence(ctx, "cart-9")
	require.ErrorContains(t, err, "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}
