package repositories

import (
	"zest-backend/db"
	"zest-backend/models"

	"github.com/jmoiron/sqlx"
)

type SessionRepository struct {
	db *db.DB
}

func NewSessionRepository(db *db.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetSessionByID fetches a session by ID
func (r *SessionRepository) GetSessionByID(id int) (*models.Session, error) {
	query := `
		SELECT id, owner_type, owner_id, session_date, start_time, end_time, venue
		FROM event_session
		WHERE id = ?
	`

	var session models.Session
	err := r.db.QueryRow(query, id).Scan(
		&session.ID, &session.OwnerType, &session.OwnerID,
		&session.SessionDate, &session.StartTime, &session.EndTime, &session.Venue,
	)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// GetSessionTx fetches a session inside an open transaction
func (r *SessionRepository) GetSessionTx(tx *sqlx.Tx, id int) (*models.Session, error) {
	query := `
		SELECT id, owner_type, owner_id, session_date, start_time, end_time, venue
		FROM event_session
		WHERE id = ?
	`

	var session models.Session
	err := tx.QueryRow(query, id).Scan(
		&session.ID, &session.OwnerType, &session.OwnerID,
		&session.SessionDate, &session.StartTime, &session.EndTime, &session.Venue,
	)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// DecrementCapacity atomically reserves quantity seats of a ticket type.
// Returns the number of rows affected: 1 on success, 0 when the type is
// missing or the remaining capacity is below the requested quantity.
func (r *SessionRepository) DecrementCapacity(tx *sqlx.Tx, sessionID int, ticketType string, quantity int) (int64, error) {
	query := `
		UPDATE session_ticket_type
		SET available_capacity = available_capacity - ?
		WHERE session_id = ?
		  AND name = ?
		  AND available_capacity >= ?
	`

	result, err := tx.Exec(query, quantity, sessionID, ticketType, quantity)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// GetTypeRemaining fetches the live remaining count for a ticket type inside
// the transaction, used to distinguish a missing type from a sold-out one.
func (r *SessionRepository) GetTypeRemaining(tx *sqlx.Tx, sessionID int, ticketType string) (int, error) {
	query := `
		SELECT available_capacity
		FROM session_ticket_type
		WHERE session_id = ? AND name = ?
	`

	var remaining int
	err := tx.QueryRow(query, sessionID, ticketType).Scan(&remaining)
	if err != nil {
		return 0, err
	}

	return remaining, nil
}

// GetAvailability fetches all tiers of a session with remaining counts
func (r *SessionRepository) GetAvailability(sessionID int) ([]*models.TierAvailability, error) {
	query := `
		SELECT name, price, capacity, available_capacity
		FROM session_ticket_type
		WHERE session_id = ?
		ORDER BY name
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []*models.TierAvailability
	for rows.Next() {
		var tier models.TierAvailability
		if err := rows.Scan(&tier.Name, &tier.Price, &tier.Capacity, &tier.Remaining); err != nil {
			return nil, err
		}
		tiers = append(tiers, &tier)
	}

	return tiers, rows.Err()
}
