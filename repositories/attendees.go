package repositories

import (
	"zest-backend/db"
	"zest-backend/models"

	"github.com/jmoiron/sqlx"
)

type AttendeeRepository struct {
	db *db.DB
}

func NewAttendeeRepository(db *db.DB) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

// InsertAttendee persists a per-seat attendee record inside an open
// transaction and returns its insert ID. Event title, timing and venue are
// denormalized onto the row so scan-side queries never join back to the event.
func (r *AttendeeRepository) InsertAttendee(tx *sqlx.Tx, a *models.Attendee) (int64, error) {
	query := `
		INSERT INTO attendee (
			booking_reference, owner_type, owner_id, session_id, user_id,
			name, email, phone, ticket_type, event_title, session_date,
			start_time, venue, checked_in
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`

	result, err := tx.Exec(query,
		a.BookingReference, a.OwnerType, a.OwnerID, a.SessionID, a.UserID,
		a.Name, a.Email, a.Phone, a.TicketType, a.EventTitle, a.SessionDate,
		a.StartTime, a.Venue,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// CheckedInByBookingRef lists the attendees of a group booking that have
// already been admitted
func (r *AttendeeRepository) CheckedInByBookingRef(bookingReference string) ([]*models.Attendee, error) {
	query := `
		SELECT id, booking_reference, user_id, name, email, ticket_type,
		       checked_in, checked_in_at, checked_in_by
		FROM attendee
		WHERE booking_reference = ?
		  AND checked_in = 1
	`

	rows, err := r.db.Query(query, bookingReference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []*models.Attendee
	for rows.Next() {
		var a models.Attendee
		err := rows.Scan(
			&a.ID, &a.BookingReference, &a.UserID, &a.Name, &a.Email, &a.TicketType,
			&a.CheckedIn, &a.CheckedInAt, &a.CheckedInBy,
		)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, &a)
	}

	return attendees, rows.Err()
}

// MarkCheckedIn flips an attendee's checked_in flag inside the same
// transaction as the ticket mark-used write
func (r *AttendeeRepository) MarkCheckedIn(tx *sqlx.Tx, attendeeID int64, scannerID string) (int64, error) {
	query := `
		UPDATE attendee
		SET checked_in = 1, checked_in_at = NOW(), checked_in_by = ?
		WHERE id = ?
		  AND checked_in = 0
	`

	result, err := tx.Exec(query, scannerID, attendeeID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
