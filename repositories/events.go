package repositories

import (
	"fmt"

	"zest-backend/db"
	"zest-backend/models"
)

type EventRepository struct {
	db *db.DB
}

func NewEventRepository(db *db.DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetOwner fetches the parent event or activity a session or ticket points at.
// Both tables carry the same columns, so the lookup only switches the table.
func (r *EventRepository) GetOwner(kind models.TargetKind, id int) (*models.Event, error) {
	table := "event"
	if kind == models.TargetActivity {
		table = "activity"
	}

	query := fmt.Sprintf("SELECT id, title, venue, city, organizer_id FROM %s WHERE id = ?", table)

	var owner models.Event
	err := r.db.QueryRow(query, id).Scan(
		&owner.ID, &owner.Title, &owner.Venue, &owner.City, &owner.OrganizerID,
	)
	if err != nil {
		return nil, err
	}

	return &owner, nil
}

// IsStaff reports whether staffID appears in the parent's authorized staff
// list. The organizer check lives with the caller, which already holds the
// owner record.
func (r *EventRepository) IsStaff(kind models.TargetKind, ownerID int, staffID string) (bool, error) {
	query := `SELECT COUNT(*) FROM authorized_staff WHERE owner_type = ? AND owner_id = ? AND staff_id = ?`

	var count int
	if err := r.db.QueryRow(query, kind, ownerID, staffID).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}
