package workers

import (
	"errors"
	"testing"
	"time"

	"zest-backend/db"
	"zest-backend/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorker(t *testing.T) (*ExpiryWorker, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	database := db.New(sqlx.NewDb(mockDB, "mysql"))
	return NewExpiryWorker(database, repositories.NewTicketRepository(database), time.Hour), mock
}

func TestSweepExpiresTickets(t *testing.T) {
	worker, mock := newWorker(t)

	mock.ExpectQuery("SELECT t.id FROM ticket t").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(9))

	for _, id := range []int64{3, 9} {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE ticket SET status = 'expired'").
			WithArgs(expiredReason, id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO ticket_validation").
			WithArgs(id, "expired", "").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}

	worker.Sweep()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepNothingToExpire(t *testing.T) {
	worker, mock := newWorker(t)

	mock.ExpectQuery("SELECT t.id FROM ticket t").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	worker.Sweep()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepToleratesLostRace(t *testing.T) {
	worker, mock := newWorker(t)

	mock.ExpectQuery("SELECT t.id FROM ticket t").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	// The ticket was scanned between the listing and the update; the sweep
	// commits without recording anything.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ticket SET status = 'expired'").
		WithArgs(expiredReason, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	worker.Sweep()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepSwallowsQueryErrors(t *testing.T) {
	worker, mock := newWorker(t)

	mock.ExpectQuery("SELECT t.id FROM ticket t").
		WillReturnError(errors.New("connection refused"))

	worker.Sweep()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepContinuesAfterPerTicketFailure(t *testing.T) {
	worker, mock := newWorker(t)

	mock.ExpectQuery("SELECT t.id FROM ticket t").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(9))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ticket SET status = 'expired'").
		WithArgs(expiredReason, int64(3)).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ticket SET status = 'expired'").
		WithArgs(expiredReason, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ticket_validation").
		WithArgs(int64(9), "expired", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	worker.Sweep()

	assert.NoError(t, mock.ExpectationsWereMet())
}
