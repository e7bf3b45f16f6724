package repositories

import (
	"strings"
	"time"

	"zest-backend/db"
	"zest-backend/models"

	"github.com/jmoiron/sqlx"
)

type TicketRepository struct {
	db *db.DB
}

func NewTicketRepository(db *db.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `
	id, ticket_number, qr_payload, status, owner_type, owner_id, session_id,
	attendee_id, user_id, user_name, user_email, user_phone, session_date,
	time_slot, ticket_type, amount, booking_reference, total_tickets_in_booking,
	payment_id, used_at, used_by, expired_at, expired_reason, created_at
`

// InsertTicket persists a new ticket inside an open transaction and returns
// its insert ID. The UNIQUE key on ticket_number surfaces as a duplicate
// entry error, which callers detect via IsDuplicateTicketNumber.
func (r *TicketRepository) InsertTicket(tx *sqlx.Tx, t *models.Ticket) (int64, error) {
	query := `
		INSERT INTO ticket (
			ticket_number, qr_payload, status, owner_type, owner_id, session_id,
			attendee_id, user_id, user_name, user_email, user_phone, session_date,
			time_slot, ticket_type, amount, booking_reference, total_tickets_in_booking,
			payment_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query,
		t.TicketNumber, t.QRPayload, t.Status, t.OwnerType, t.OwnerID, t.SessionID,
		t.AttendeeID, t.UserID, t.UserName, t.UserEmail, t.UserPhone, t.SessionDate,
		t.TimeSlot, t.TicketType, t.Amount, t.BookingReference, t.TotalTicketsInBooking,
		t.PaymentID,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// UpdateQRPayload rewrites a ticket's QR payload once the auto-increment
// insert ID is known, inside the same transaction as the insert
func (r *TicketRepository) UpdateQRPayload(tx *sqlx.Tx, ticketID int64, payload string) error {
	_, err := tx.Exec("UPDATE ticket SET qr_payload = ? WHERE id = ?", payload, ticketID)
	return err
}

// GetByNumber fetches a ticket by its scan-readable number
func (r *TicketRepository) GetByNumber(ticketNumber string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM ticket WHERE ticket_number = ?`

	var t models.Ticket
	if err := r.db.Get(&t, query, ticketNumber); err != nil {
		return nil, err
	}

	return &t, nil
}

// MarkUsed flips a ticket from active to used. The status predicate makes the
// transition at-most-once: of two concurrent scans, exactly one sees rows == 1.
func (r *TicketRepository) MarkUsed(tx *sqlx.Tx, ticketNumber string, scannerID string) (int64, error) {
	query := `
		UPDATE ticket
		SET status = 'used', used_at = NOW(), used_by = ?
		WHERE ticket_number = ?
		  AND status = 'active'
	`

	result, err := tx.Exec(query, scannerID, ticketNumber)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// AppendValidation appends an entry to the ticket's lifecycle history
func (r *TicketRepository) AppendValidation(tx *sqlx.Tx, ticketID int64, action string, location string) error {
	query := `INSERT INTO ticket_validation (ticket_id, action, location) VALUES (?, ?, ?)`

	_, err := tx.Exec(query, ticketID, action, location)
	return err
}

// GetValidationHistory fetches the append-only history for a ticket
func (r *TicketRepository) GetValidationHistory(ticketID int64) ([]*models.ValidationEntry, error) {
	query := `
		SELECT id, ticket_id, action, location, created_at
		FROM ticket_validation
		WHERE ticket_id = ?
		ORDER BY id
	`

	rows, err := r.db.Query(query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ValidationEntry
	for rows.Next() {
		var e models.ValidationEntry
		if err := rows.Scan(&e.ID, &e.TicketID, &e.Action, &e.Location, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// FindExpiredActive lists active tickets whose session end has passed
func (r *TicketRepository) FindExpiredActive(now time.Time) ([]int64, error) {
	query := `
		SELECT t.id
		FROM ticket t
		INNER JOIN event_session s ON t.session_id = s.id
		WHERE t.status = 'active'
		  AND TIMESTAMP(s.session_date, CONCAT(s.end_time, ':00')) < ?
	`

	rows, err := r.db.Query(query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ExpireTicket marks a still-active ticket expired and records why
func (r *TicketRepository) ExpireTicket(tx *sqlx.Tx, ticketID int64, reason string) (int64, error) {
	query := `
		UPDATE ticket
		SET status = 'expired', expired_at = NOW(), expired_reason = ?
		WHERE id = ?
		  AND status = 'active'
	`

	result, err := tx.Exec(query, reason, ticketID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// IsDuplicateTicketNumber checks if an insert failed on the ticket_number
// unique key
func IsDuplicateTicketNumber(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Duplicate entry") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "uniq_ticket_number")
}
