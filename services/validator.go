package services

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"zest-backend/models"
	"zest-backend/repositories"
)

// Stable decision codes the door-scanner client branches on.
const (
	CodeTicketNotFound   = "TICKET_NOT_FOUND"
	CodeAlreadyUsed      = "ALREADY_USED"
	CodeTicketExpired    = "TICKET_EXPIRED"
	CodeTicketCancelled  = "TICKET_CANCELLED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeWrongEvent       = "WRONG_EVENT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeDuplicateCheckin = "DUPLICATE_CHECKIN"
	CodeBookingExhausted = "BOOKING_EXHAUSTED"
	CodeUpdateFailed     = "UPDATE_FAILED"
)

const FlagLocationMismatch = "SCAN_LOCATION_MISMATCH"

// ValidationResult classifies a ticket lookup without mutating anything.
type ValidationResult struct {
	Valid         bool
	Code          string
	Status        int
	Message       string
	Ticket        *models.Ticket
	Session       *models.Session
	SecurityFlags []string
}

type TicketValidator struct {
	tickets  *repositories.TicketRepository
	sessions *repositories.SessionRepository
}

func NewTicketValidator(tickets *repositories.TicketRepository, sessions *repositories.SessionRepository) *TicketValidator {
	return &TicketValidator{
		tickets:  tickets,
		sessions: sessions,
	}
}

// Validate looks up a ticket by number and classifies whether entry should be
// permitted. Read-only and idempotent: repeated calls return the same
// classification and never change ticket state.
func (v *TicketValidator) Validate(ticketNumber, scannerLocation string) (*ValidationResult, error) {
	ticketNumber = strings.TrimSpace(ticketNumber)
	if ticketNumber == "" {
		return &ValidationResult{
			Code:    CodeValidationFailed,
			Status:  http.StatusBadRequest,
			Message: "ticketNumber is required",
		}, nil
	}

	ticket, err := v.tickets.GetByNumber(ticketNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &ValidationResult{
				Code:    CodeTicketNotFound,
				Status:  http.StatusNotFound,
				Message: "No ticket found for that number",
			}, nil
		}
		return nil, err
	}

	// A missing session leaves computed expiry undecidable; classification
	// then falls back to the stored status alone.
	var session *models.Session
	session, err = v.sessions.GetSessionByID(ticket.SessionID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		session = nil
	}

	result := classifyTicket(ticket, session, time.Now())
	result.SecurityFlags = collectSecurityFlags(session, scannerLocation)

	return result, nil
}

// classifyTicket maps a ticket's state to an entry decision. A ticket whose
// session end time has passed is invalid regardless of stored status.
func classifyTicket(ticket *models.Ticket, session *models.Session, now time.Time) *ValidationResult {
	result := &ValidationResult{
		Ticket:  ticket,
		Session: session,
	}

	switch ticket.Status {
	case models.TicketUsed:
		result.Code = CodeAlreadyUsed
		result.Status = http.StatusConflict
		result.Message = "This ticket has already been used for entry"
		return result
	case models.TicketCancelled:
		result.Code = CodeTicketCancelled
		result.Status = http.StatusForbidden
		result.Message = "This ticket was cancelled"
		return result
	case models.TicketExpired:
		result.Code = CodeTicketExpired
		result.Status = http.StatusGone
		result.Message = "This ticket has expired"
		return result
	case models.TicketActive:
		if session != nil && now.After(session.EndAt()) {
			result.Code = CodeTicketExpired
			result.Status = http.StatusGone
			result.Message = "The session this ticket admits entry to has ended"
			return result
		}
		result.Valid = true
		result.Status = http.StatusOK
		return result
	default:
		result.Code = CodeValidationFailed
		result.Status = http.StatusBadRequest
		result.Message = "Ticket record is malformed"
		return result
	}
}

// collectSecurityFlags gathers scan anomalies worth surfacing to the door
// staff. Flags never block entry on their own.
func collectSecurityFlags(session *models.Session, scannerLocation string) []string {
	flags := []string{}

	loc := strings.TrimSpace(scannerLocation)
	if loc != "" && session != nil && session.Venue != "" && !strings.EqualFold(loc, session.Venue) {
		flags = append(flags, FlagLocationMismatch)
	}

	return flags
}
