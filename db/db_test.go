package db

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return New(sqlx.NewDb(mockDB, "mysql")), mock
}

func TestWithTxCommits(t *testing.T) {
	database, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ticket").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.WithTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE ticket SET status = 'used' WHERE id = 1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	database, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err := database.WithTx(func(tx *sqlx.Tx) error {
		return wantErr
	})

	require.ErrorIs(t, err, wantErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxReportsCommitFailure(t *testing.T) {
	database, mock := newMockDB(t)

	commitErr := errors.New("Error 1213: Deadlock found when trying to get lock")
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(commitErr)

	err := database.WithTx(func(tx *sqlx.Tx) error {
		return nil
	})

	require.ErrorIs(t, err, commitErr, "a failed commit must surface to the caller")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	database, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		database.WithTx(func(tx *sqlx.Tx) error {
			panic("unreachable state")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
