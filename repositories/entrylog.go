package repositories

import (
	"zest-backend/db"
	"zest-backend/models"

	"github.com/google/uuid"
)

type EntryLogRepository struct {
	db *db.DB
}

func NewEntryLogRepository(db *db.DB) *EntryLogRepository {
	return &EntryLogRepository{db: db}
}

// Append writes one scan audit record. Callers treat failures as
// non-fatal: the entry decision never depends on this write.
func (r *EntryLogRepository) Append(e *models.EntryLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	query := `
		INSERT INTO entry_log (id, owner_type, owner_id, ticket_number, scanner_id, scanner_type, location, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		e.ID, e.OwnerType, e.OwnerID, e.TicketNumber,
		e.ScannerID, e.ScannerType, e.Location, e.Result,
	)
	return err
}
