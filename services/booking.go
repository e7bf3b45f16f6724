package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"zest-backend/db"
	"zest-backend/models"
	"zest-backend/monitoring"
	"zest-backend/repositories"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrEventNotFound        = errors.New("EVENT_NOT_FOUND")
	ErrSessionNotFound      = errors.New("SESSION_NOT_FOUND")
	ErrTicketTypeNotFound   = errors.New("TICKET_TYPE_NOT_FOUND")
	ErrInsufficientCapacity = errors.New("INSUFFICIENT_CAPACITY")
	ErrInvalidBooking       = errors.New("INVALID_BOOKING")
)

// BookingService is the one place where collected money becomes held
// inventory plus issued seats. Capacity check, attendee writes, capacity
// decrement and ticket minting all commit in a single transaction; it is the
// sole writer of available_capacity. Events and activities share this path.
type BookingService struct {
	db        *db.DB
	events    *repositories.EventRepository
	sessions  *repositories.SessionRepository
	attendees *repositories.AttendeeRepository
	generator *TicketGenerator
}

func NewBookingService(
	db *db.DB,
	events *repositories.EventRepository,
	sessions *repositories.SessionRepository,
	attendees *repositories.AttendeeRepository,
	generator *TicketGenerator,
) *BookingService {
	return &BookingService{
		db:        db,
		events:    events,
		sessions:  sessions,
		attendees: attendees,
		generator: generator,
	}
}

// CreateBooking atomically reserves capacity and mints one attendee and one
// ticket per purchased seat. Invoked after payment confirmation.
func (s *BookingService) CreateBooking(req *models.BookingRequest) (*models.BookingData, error) {
	data, err := s.createBooking(req)
	if err != nil {
		monitoring.TrackBooking(bookingFailureLabel(err))
		return nil, err
	}

	monitoring.TrackBooking("created")
	monitoring.TrackTicketsIssued(data.TotalTickets)

	logrus.Infof("booking created: ref=%s session=%d tickets=%d",
		data.BookingReference, data.SessionID, data.TotalTickets)

	return data, nil
}

func (s *BookingService) createBooking(req *models.BookingRequest) (*models.BookingData, error) {
	kind, ownerID, err := resolveTarget(req)
	if err != nil {
		return nil, err
	}

	totalSeats := 0
	for ticketType, qty := range req.SelectedTickets {
		if qty <= 0 {
			return nil, fmt.Errorf("%w: quantity for %q must be positive", ErrInvalidBooking, ticketType)
		}
		totalSeats += qty
	}
	if totalSeats == 0 {
		return nil, fmt.Errorf("%w: no tickets selected", ErrInvalidBooking)
	}
	if req.TotalAmount <= 0 {
		return nil, fmt.Errorf("%w: totalAmount must be positive", ErrInvalidBooking)
	}

	owner, err := s.events.GetOwner(kind, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %d", ErrEventNotFound, kind, ownerID)
		}
		return nil, err
	}

	amounts := splitAmount(decimal.NewFromFloat(req.TotalAmount), totalSeats)
	holders := seatHolders(req, totalSeats)
	bookingRef := uuid.NewString()

	var data *models.BookingData

	err = s.db.WithTx(func(tx *sqlx.Tx) error {
		session, err := s.sessions.GetSessionTx(tx, req.SessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: session %d", ErrSessionNotFound, req.SessionID)
			}
			return err
		}
		if session.OwnerType != kind || session.OwnerID != ownerID {
			return fmt.Errorf("%w: session %d does not belong to %s %d",
				ErrSessionNotFound, req.SessionID, kind, ownerID)
		}

		// Deterministic type order so failures are reproducible.
		types := make([]string, 0, len(req.SelectedTickets))
		for ticketType := range req.SelectedTickets {
			types = append(types, ticketType)
		}
		sort.Strings(types)

		for _, ticketType := range types {
			quantity := req.SelectedTickets[ticketType]

			rowsAffected, err := s.sessions.DecrementCapacity(tx, session.ID, ticketType, quantity)
			if err != nil {
				return err
			}
			if rowsAffected == 0 {
				remaining, err := s.sessions.GetTypeRemaining(tx, session.ID, ticketType)
				if err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						return fmt.Errorf("%w: %q", ErrTicketTypeNotFound, ticketType)
					}
					return err
				}
				return fmt.Errorf("%w: %q has %d remaining, %d requested",
					ErrInsufficientCapacity, ticketType, remaining, quantity)
			}
		}

		attendeeIDs := make([]int64, 0, totalSeats)
		seats := make([]seatIssue, 0, totalSeats)
		seatIdx := 0

		for _, ticketType := range types {
			for i := 0; i < req.SelectedTickets[ticketType]; i++ {
				holder := holders[seatIdx]

				attendee := &models.Attendee{
					BookingReference: bookingRef,
					OwnerType:        kind,
					OwnerID:          ownerID,
					SessionID:        session.ID,
					UserID:           req.UserID,
					Name:             holder.Name,
					Email:            holder.Email,
					Phone:            holder.Phone,
					TicketType:       ticketType,
					EventTitle:       owner.Title,
					SessionDate:      session.SessionDate,
					StartTime:        session.StartTime,
					Venue:            session.Venue,
				}

				attendeeID, err := s.attendees.InsertAttendee(tx, attendee)
				if err != nil {
					return err
				}

				attendeeIDs = append(attendeeIDs, attendeeID)
				seats = append(seats, seatIssue{
					AttendeeID: attendeeID,
					TicketType: ticketType,
					Holder:     holder,
					Amount:     amounts[seatIdx],
				})
				seatIdx++
			}
		}

		ticketIDs, numbers, err := s.generator.issueTickets(tx, issueContext{
			OwnerType:   kind,
			OwnerID:     ownerID,
			SessionID:   session.ID,
			SessionDate: session.SessionDate,
			TimeSlot:    session.StartTime,
			UserID:      req.UserID,
			BookingRef:  bookingRef,
			PaymentID:   req.PaymentID,
			TotalSeats:  totalSeats,
		}, seats)
		if err != nil {
			return err
		}

		data = &models.BookingData{
			BookingReference: bookingRef,
			AttendeeIDs:      attendeeIDs,
			TicketIDs:        ticketIDs,
			TicketNumbers:    numbers,
			TotalTickets:     totalSeats,
			SessionID:        session.ID,
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return data, nil
}

// resolveTarget maps the eventId/activityId pair onto the tagged target
// union; exactly one side must be set.
func resolveTarget(req *models.BookingRequest) (models.TargetKind, int, error) {
	switch {
	case req.EventID > 0 && req.ActivityID > 0:
		return "", 0, fmt.Errorf("%w: eventId and activityId are mutually exclusive", ErrInvalidBooking)
	case req.EventID > 0:
		return models.TargetEvent, req.EventID, nil
	case req.ActivityID > 0:
		return models.TargetActivity, req.ActivityID, nil
	default:
		return "", 0, fmt.Errorf("%w: either eventId or activityId is required", ErrInvalidBooking)
	}
}

// seatHolders assigns a holder identity to every seat: explicit per-seat
// attendees first, the purchaser for the rest.
func seatHolders(req *models.BookingRequest, totalSeats int) []models.UserInfo {
	holders := make([]models.UserInfo, totalSeats)
	for i := 0; i < totalSeats; i++ {
		if i < len(req.Attendees) {
			holders[i] = req.Attendees[i]
		} else {
			holders[i] = req.UserInfo
		}
	}
	return holders
}

func bookingFailureLabel(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientCapacity):
		return "insufficient_capacity"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrTicketTypeNotFound):
		return "ticket_type_not_found"
	case errors.Is(err, ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, ErrInvalidBooking):
		return "invalid_request"
	default:
		return "error"
	}
}
