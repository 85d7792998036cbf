package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresFixture(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newPostgresFixture(t)

	mock.ExpectQuery("SELECT value FROM client_snapshots").
		WithArgs("cart:sid").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`{"version":1}`))

	v, found, err := store.Get(context.Background(), "cart:sid")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"version":1}`, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetMissing(t *testing.T) {
	store, mock := newPostgresFixture(t)

	mock.ExpectQuery("SELECT value FROM client_snapshots").
		WithArgs("cart:none").
		WillReturnError(pgx.ErrNoRows)

	_, found, err := store.Get(context.Background(), "cart:none")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetUpserts(t *testing.T) {
	store, mock := newPostgresFixture(t)

	mock.ExpectExec("INSERT INTO client_snapshots").
		WithArgs("wishlist:sid", "[]").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Set(context.Background(), "wishlist:sid", "[]"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteError(t *testing.T) {
	store, mock := newPostgresFixture(t)

	mock.ExpectExec("DELETE FROM client_snapshots").
		WithArgs("auth:sid").
		WillReturnError(errors.New("connection reset"))

	err := store.Delete(context.Background(), "auth:sid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres delete snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db", pgx5URL("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, "pgx5://h/db", pgx5URL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", pgx5URL("pgx5://h/db"))
}
