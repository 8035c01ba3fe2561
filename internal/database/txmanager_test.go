package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE credentials").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			querier := GetTx(ctx, db)
			assert.IsType(t, &sql.Tx{}, querier)
			_, err := querier.ExecContext(ctx, "UPDATE credentials SET encrypted_config = $1", "{}")
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		reencryptErr := errors.New("re-encryption failed")
		err := NewTxManager(db).WithTx(ctx, func(context.Context) error {
			return reencryptErr
		})

		assert.ErrorIs(t, err, reencryptErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports rollback failure alongside the cause", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(sql.ErrConnDone)

		cause := errors.New("boom")
		err := NewTxManager(db).WithTx(ctx, func(context.Context) error { return cause })

		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Contains(t, err.Error(), "failed to roll back transaction")
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

		called := false
		err := NewTxManager(db).WithTx(ctx, func(context.Context) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.False(t, called)
	})

	t.Run("commit failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(sql.ErrTxDone)

		err := NewTxManager(db).WithTx(ctx, func(context.Context) error { return nil })

		assert.ErrorIs(t, err, sql.ErrTxDone)
		assert.Contains(t, err.Error(), "failed to commit transaction")
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err := txManager.WithTx(ctx, func(outer context.Context) error {
			outerTx := GetTx(outer, db)
			return txManager.WithTx(outer, func(inner context.Context) error {
				assert.Same(t, outerTx, GetTx(inner, db))
				return nil
			})
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	assert.Same(t, db, GetTx(context.Background(), db))
}
