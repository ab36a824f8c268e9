package state

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostgresStoreLoadExistingRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "iconat-2025", zap.NewNop())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT notified FROM monitor_state").
		WithArgs("iconat-2025").
		WillReturnRows(pgxmock.NewRows([]string{"notified"}).AddRow(true))

	st := store.Load(context.Background())
	require.True(t, st.Notified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLoadMissingRowPersistsDefault(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "iconat-2025", zap.NewNop())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT notified FROM monitor_state").
		WithArgs("iconat-2025").
		WillReturnError(errors.New("no rows in result set"))
	mock.ExpectExec("INSERT INTO monitor_state").
		WithArgs("iconat-2025", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	st := store.Load(context.Background())
	require.False(t, st.Notified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveUpserts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "iconat-2025", zap.NewNop())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO monitor_state").
		WithArgs("iconat-2025", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Save(context.Background(), State{Notified: true}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveFailureWrapsUnwritable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "iconat-2025", zap.NewNop())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO monitor_state").
		WithArgs("iconat-2025", true).
		WillReturnError(errors.New("connection refused"))

	err = store.Save(context.Background(), State{Notified: true})
	require.ErrorIs(t, err, ErrUnwritable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresStoreWithPoolValidation(t *testing.T) {
	t.Parallel()

	_, err := NewPostgresStoreWithPool(nil, "x", zap.NewNop())
	require.Error(t, err)
}
