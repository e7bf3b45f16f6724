package services

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"zest-backend/db"
	"zest-backend/models"
	"zest-backend/monitoring"
	"zest-backend/repositories"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// CheckinService composes validation, anti-fraud checks and the mark-used
// state transition into one all-or-nothing entry decision for door scanners.
type CheckinService struct {
	db        *db.DB
	validator *TicketValidator
	events    *repositories.EventRepository
	tickets   *repositories.TicketRepository
	attendees *repositories.AttendeeRepository
	entryLog  *repositories.EntryLogRepository
}

func NewCheckinService(
	db *db.DB,
	validator *TicketValidator,
	events *repositories.EventRepository,
	tickets *repositories.TicketRepository,
	attendees *repositories.AttendeeRepository,
	entryLog *repositories.EntryLogRepository,
) *CheckinService {
	return &CheckinService{
		db:        db,
		validator: validator,
		events:    events,
		tickets:   tickets,
		attendees: attendees,
		entryLog:  entryLog,
	}
}

// ProcessScan runs the entry decision sequence, short-circuiting on the
// first failure. The returned error is reserved for infrastructure faults;
// every business denial comes back as a ScanResult with its code and status.
func (s *CheckinService) ProcessScan(req *models.ScanRequest) (*models.ScanResult, error) {
	result, err := s.decide(req)
	if err != nil {
		return nil, err
	}

	s.recordScan(req, result)
	monitoring.TrackScan(scanLabel(result))

	return result, nil
}

func (s *CheckinService) decide(req *models.ScanRequest) (*models.ScanResult, error) {
	validation, err := s.validator.Validate(req.TicketNumber, req.ScannerLocation)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return denial(validation.Code, validation.Status, validation.Message, validation.SecurityFlags), nil
	}

	ticket := validation.Ticket

	// Event and activity ids are separate sequences, so the guard compares
	// the owner kind as well as the id. A ticket scanned at the wrong gate is
	// denied before any state change.
	kind, targetID := scanTarget(req)
	if ticket.OwnerType != kind || ticket.OwnerID != targetID {
		return denial(CodeWrongEvent, http.StatusForbidden,
			"This ticket was issued for a different event or activity", validation.SecurityFlags), nil
	}

	owner, err := s.events.GetOwner(ticket.OwnerType, ticket.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return denial(CodeValidationFailed, http.StatusBadRequest,
				"The event for this ticket no longer exists", validation.SecurityFlags), nil
		}
		return nil, err
	}

	authorized := owner.OrganizerID == req.ScannerID
	if !authorized {
		authorized, err = s.events.IsStaff(ticket.OwnerType, ticket.OwnerID, req.ScannerID)
		if err != nil {
			return nil, err
		}
	}
	if !authorized {
		return denial(CodeUnauthorized, http.StatusForbidden,
			"Scanner is not authorized for this event", validation.SecurityFlags), nil
	}

	if ticket.BookingReference != "" {
		if result, err := s.applyGroupRules(ticket, validation.SecurityFlags); err != nil || result != nil {
			return result, err
		}
	}

	admitted, err := s.markUsed(ticket, req)
	if err != nil {
		return nil, err
	}
	if !admitted {
		// The conditional write lost: either a concurrent scan won the race
		// or the write itself failed.
		current, err := s.tickets.GetByNumber(ticket.TicketNumber)
		if err == nil && current.Status == models.TicketUsed {
			return denial(CodeAlreadyUsed, http.StatusConflict,
				"This ticket has already been used for entry", validation.SecurityFlags), nil
		}
		return denial(CodeUpdateFailed, http.StatusInternalServerError,
			"Failed to record ticket use", validation.SecurityFlags), nil
	}

	return &models.ScanResult{
		Success:       true,
		Status:        http.StatusOK,
		SecurityFlags: validation.SecurityFlags,
		Ticket:        ticketSummary(ticket, owner.Title),
	}, nil
}

// applyGroupRules enforces the group-booking anti-fraud checks: one physical
// person may check in at most once per event even holding several tickets
// from the same purchase, and a booking admits at most as many people as
// seats were bought.
func (s *CheckinService) applyGroupRules(ticket *models.Ticket, flags []string) (*models.ScanResult, error) {
	checkedIn, err := s.attendees.CheckedInByBookingRef(ticket.BookingReference)
	if err != nil {
		return nil, err
	}

	if ticket.TotalTicketsInBooking > 0 && len(checkedIn) >= ticket.TotalTicketsInBooking {
		return denial(CodeBookingExhausted, http.StatusBadRequest,
			"All tickets from this booking have already been used for entry", flags), nil
	}

	for _, attendee := range checkedIn {
		if strings.EqualFold(attendee.Email, ticket.UserEmail) && attendee.UserID == ticket.UserID {
			return denial(CodeDuplicateCheckin, http.StatusBadRequest,
				"This person has already checked in with a different ticket from the same booking", flags), nil
		}
	}

	return nil, nil
}

// markUsed performs the only allowed active -> used transition, together
// with the validation-history append and the attendee check-in flip, in one
// transaction. Returns false when the status predicate did not match.
func (s *CheckinService) markUsed(ticket *models.Ticket, req *models.ScanRequest) (bool, error) {
	var admitted bool

	err := s.db.WithTx(func(tx *sqlx.Tx) error {
		rowsAffected, err := s.tickets.MarkUsed(tx, ticket.TicketNumber, req.ScannerID)
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return nil
		}

		if err := s.tickets.AppendValidation(tx, ticket.ID, models.ValidationValidated, req.ScannerLocation); err != nil {
			return err
		}

		if _, err := s.attendees.MarkCheckedIn(tx, ticket.AttendeeID, req.ScannerID); err != nil {
			return err
		}

		admitted = true
		return nil
	})

	return admitted, err
}

// scanTarget resolves which event or activity gate the scanner operates.
func scanTarget(req *models.ScanRequest) (models.TargetKind, int) {
	if req.ActivityID > 0 {
		return models.TargetActivity, req.ActivityID
	}
	return models.TargetEvent, req.EventID
}

// recordScan appends the audit-trail record. Strictly best-effort: a logging
// failure never changes the entry decision.
func (s *CheckinService) recordScan(req *models.ScanRequest, result *models.ScanResult) {
	ownerType, ownerID := scanTarget(req)

	err := s.entryLog.Append(&models.EntryLog{
		OwnerType:    ownerType,
		OwnerID:      ownerID,
		TicketNumber: req.TicketNumber,
		ScannerID:    req.ScannerID,
		ScannerType:  req.ScannerType,
		Location:     req.ScannerLocation,
		Result:       scanLabel(result),
	})
	if err != nil {
		logrus.Warnf("entry log append failed for ticket %s: %v", req.TicketNumber, err)
	}
}

func denial(code string, status int, message string, flags []string) *models.ScanResult {
	return &models.ScanResult{
		Success:       false,
		Code:          code,
		Status:        status,
		Message:       message,
		SecurityFlags: flags,
	}
}

func ticketSummary(ticket *models.Ticket, eventTitle string) *models.TicketSummary {
	return &models.TicketSummary{
		TicketNumber: ticket.TicketNumber,
		HolderName:   ticket.UserName,
		EventTitle:   eventTitle,
		TicketType:   ticket.TicketType,
		Amount:       ticket.Amount.InexactFloat64(),
		SessionDate:  ticket.SessionDate.Format("2006-01-02"),
		TimeSlot:     ticket.TimeSlot,
	}
}

func scanLabel(result *models.ScanResult) string {
	if result.Success {
		return "admitted"
	}
	return result.Code
}
