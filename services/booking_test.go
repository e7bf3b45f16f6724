package services

import (
	"testing"
	"time"

	"zest-backend/models"
	"zest-backend/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(t *testing.T) (*BookingService, sqlmock.Sqlmock) {
	t.Helper()

	database, mock := newMockDB(t)
	ticketRepo := repositories.NewTicketRepository(database)

	service := NewBookingService(
		database,
		repositories.NewEventRepository(database),
		repositories.NewSessionRepository(database),
		repositories.NewAttendeeRepository(database),
		NewTicketGenerator(ticketRepo, "zest"),
	)

	return service, mock
}

func validBookingRequest() *models.BookingRequest {
	return &models.BookingRequest{
		EventID:   11,
		SessionID: 21,
		UserID:    "user-1",
		UserInfo: models.UserInfo{
			Name:  "Asha Rao",
			Email: "asha@example.com",
			Phone: "9876543210",
		},
		SelectedTickets: map[string]int{"General": 2},
		TotalAmount:     500,
	}
}

func expectOwnerLookup(mock sqlmock.Sqlmock, table string, id int) {
	mock.ExpectQuery("SELECT id, title, venue, city, organizer_id FROM " + table).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "venue", "city", "organizer_id"}).
			AddRow(id, "Summer Beats", "Phoenix Arena", "Bengaluru", "org-1"))
}

func expectSessionLookup(mock sqlmock.Sqlmock, ownerType string, ownerID, sessionID int) {
	mock.ExpectQuery("SELECT (.+) FROM event_session").
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_type", "owner_id", "session_date", "start_time", "end_time", "venue",
		}).AddRow(sessionID, ownerType, ownerID, time.Now().AddDate(0, 0, 7), "18:00", "22:00", "Phoenix Arena"))
}

func expectSeatIssued(mock sqlmock.Sqlmock, attendeeID int64) {
	mock.ExpectExec("INSERT INTO attendee").
		WillReturnResult(sqlmock.NewResult(attendeeID, 1))
}

func expectTicketMinted(mock sqlmock.Sqlmock, ticketID int64) {
	mock.ExpectExec("INSERT INTO ticket \\(").
		WillReturnResult(sqlmock.NewResult(ticketID, 1))
	mock.ExpectExec("UPDATE ticket SET qr_payload").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ticket_validation").
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func TestCreateBookingSuccess(t *testing.T) {
	service, mock := newBookingService(t)
	req := validBookingRequest()

	expectOwnerLookup(mock, "event", 11)

	mock.ExpectBegin()
	expectSessionLookup(mock, "event", 11, 21)
	mock.ExpectExec("UPDATE session_ticket_type").
		WithArgs(2, 21, "General", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for seat := 0; seat < 2; seat++ {
		expectSeatIssued(mock, int64(100+seat))
	}
	for seat := 0; seat < 2; seat++ {
		expectTicketMinted(mock, int64(200+seat))
	}
	mock.ExpectCommit()

	data, err := service.CreateBooking(req)

	require.NoError(t, err)
	assert.NotEmpty(t, data.BookingReference)
	assert.Equal(t, 2, data.TotalTickets)
	assert.Len(t, data.TicketIDs, 2)
	assert.Len(t, data.TicketNumbers, 2)
	assert.Equal(t, 21, data.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingActivityTarget(t *testing.T) {
	service, mock := newBookingService(t)
	req := validBookingRequest()
	req.EventID = 0
	req.ActivityID = 44
	req.SelectedTickets = map[string]int{"Entry": 1}
	req.TotalAmount = 150

	expectOwnerLookup(mock, "activity", 44)

	mock.ExpectBegin()
	expectSessionLookup(mock, "activity", 44, 21)
	mock.ExpectExec("UPDATE session_ticket_type").
		WithArgs(1, 21, "Entry", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectSeatIssued(mock, 100)
	expectTicketMinted(mock, 200)
	mock.ExpectCommit()

	data, err := service.CreateBooking(req)

	require.NoError(t, err)
	assert.Equal(t, 1, data.TotalTickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingInsufficientCapacity(t *testing.T) {
	service, mock := newBookingService(t)
	req := validBookingRequest()
	req.SelectedTickets = map[string]int{"General": 5}

	expectOwnerLookup(mock, "event", 11)

	mock.ExpectBegin()
	expectSessionLookup(mock, "event", 11, 21)
	mock.ExpectExec("UPDATE session_ticket_type").
		WithArgs(5, 21, "General", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT available_capacity").
		WithArgs(21, "General").
		WillReturnRows(sqlmock.NewRows([]string{"available_capacity"}).AddRow(3))
	mock.ExpectRollback()

	_, err := service.CreateBooking(req)

	require.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Contains(t, err.Error(), "3 remaining")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingUnknownTicketType(t *testing.T) {
	service, mock := newBookingService(t)
	req := validBookingRequest()
	req.SelectedTickets = map[string]int{"Platinum": 1}

	expectOwnerLookup(mock, "event", 11)

	mock.ExpectBegin()
	expectSessionLookup(mock, "event", 11, 21)
	mock.ExpectExec("UPDATE session_ticket_type").
		WithArgs(1, 21, "Platinum", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT available_capacity").
		WithArgs(21, "Platinum").
		WillReturnRows(sqlmock.NewRows([]string{"available_capacity"}))
	mock.ExpectRollback()

	_, err := service.CreateBooking(req)

	require.ErrorIs(t, err, ErrTicketTypeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingSessionNotFound(t *testing.T) {
	service, mock := newBookingService(t)
	req := validBookingRequest()

	expectOwnerLookup(mock, "event", 11)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM event_session").
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_type", "owner_id", "session_date", "start_time", "end_time", "venue",
		}))
	mock.ExpectRollback()

	_, err := service.CreateBooking(req)

	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingSessionBelongsToAnotherEvent(t *testing.T) {
	service, mock := newBookingService(t)
	req := validBookingRequest()

	expectOwnerLookup(mock, "event", 11)

	mock.ExpectBegin()
	expectSessionLookup(mock, "event", 99, 21)
	mock.ExpectRollback()

	_, err := service.CreateBooking(req)

	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingEventNotFound(t *testing.T) {
	service, mock := newBookingService(t)
	req := validBookingRequest()

	mock.ExpectQuery("SELECT id, title, venue, city, organizer_id FROM event").
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "venue", "city", "organizer_id"}))

	_, err := service.CreateBooking(req)

	require.ErrorIs(t, err, ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.BookingRequest)
	}{
		{"no target", func(r *models.BookingRequest) { r.EventID = 0 }},
		{"both targets", func(r *models.BookingRequest) { r.ActivityID = 5 }},
		{"zero quantity", func(r *models.BookingRequest) { r.SelectedTickets = map[string]int{"General": 0} }},
		{"negative quantity", func(r *models.BookingRequest) { r.SelectedTickets = map[string]int{"General": -1} }},
		{"no tickets", func(r *models.BookingRequest) { r.SelectedTickets = map[string]int{} }},
		{"zero amount", func(r *models.BookingRequest) { r.TotalAmount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mock := newBookingService(t)
			req := validBookingRequest()
			tt.mutate(req)

			_, err := service.CreateBooking(req)

			require.ErrorIs(t, err, ErrInvalidBooking)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSeatHoldersFallBackToPurchaser(t *testing.T) {
	req := validBookingRequest()
	req.Attendees = []models.UserInfo{{Name: "Ravi", Email: "ravi@example.com"}}

	holders := seatHolders(req, 3)

	require.Len(t, holders, 3)
	assert.Equal(t, "Ravi", holders[0].Name)
	assert.Equal(t, req.UserInfo.Name, holders[1].Name)
	assert.Equal(t, req.UserInfo.Name, holders[2].Name)
}
