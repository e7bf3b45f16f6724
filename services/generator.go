package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"zest-backend/models"
	"zest-backend/repositories"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ticketNumberAttempts bounds regeneration when an insert loses on the
// ticket_number unique key.
const ticketNumberAttempts = 3

type TicketGenerator struct {
	tickets *repositories.TicketRepository
	marker  string
}

func NewTicketGenerator(tickets *repositories.TicketRepository, platformMarker string) *TicketGenerator {
	return &TicketGenerator{
		tickets: tickets,
		marker:  platformMarker,
	}
}

// issueContext carries the booking-level fields shared by every seat.
type issueContext struct {
	OwnerType   models.TargetKind
	OwnerID     int
	SessionID   int
	SessionDate time.Time
	TimeSlot    string
	UserID      string
	BookingRef  string
	PaymentID   string
	TotalSeats  int
}

// seatIssue describes one seat to mint a ticket for.
type seatIssue struct {
	AttendeeID int64
	TicketType string
	Holder     models.UserInfo
	Amount     decimal.Decimal
}

// qrPayload is the opaque scan payload embedded in each ticket's QR code.
type qrPayload struct {
	TicketID     int64  `json:"ticketId"`
	TicketNumber string `json:"ticketNumber"`
	Platform     string `json:"platform"`
	IssuedAt     string `json:"issuedAt"`
}

// issueTickets mints one ticket per seat inside the booking transaction.
// Either every seat gets a ticket or the whole transaction rolls back.
func (g *TicketGenerator) issueTickets(tx *sqlx.Tx, bctx issueContext, seats []seatIssue) ([]int64, []string, error) {
	ticketIDs := make([]int64, 0, len(seats))
	numbers := make([]string, 0, len(seats))

	for _, seat := range seats {
		ticketID, number, err := g.issueOne(tx, bctx, seat)
		if err != nil {
			return nil, nil, err
		}
		ticketIDs = append(ticketIDs, ticketID)
		numbers = append(numbers, number)
	}

	return ticketIDs, numbers, nil
}

func (g *TicketGenerator) issueOne(tx *sqlx.Tx, bctx issueContext, seat seatIssue) (int64, string, error) {
	var insertErr error

	for attempt := 0; attempt < ticketNumberAttempts; attempt++ {
		number := newTicketNumber(time.Now().UTC())

		t := &models.Ticket{
			TicketNumber:          number,
			Status:                models.TicketActive,
			OwnerType:             bctx.OwnerType,
			OwnerID:               bctx.OwnerID,
			SessionID:             bctx.SessionID,
			AttendeeID:            seat.AttendeeID,
			UserID:                bctx.UserID,
			UserName:              seat.Holder.Name,
			UserEmail:             seat.Holder.Email,
			UserPhone:             seat.Holder.Phone,
			SessionDate:           bctx.SessionDate,
			TimeSlot:              bctx.TimeSlot,
			TicketType:            seat.TicketType,
			Amount:                seat.Amount,
			BookingReference:      bctx.BookingRef,
			TotalTicketsInBooking: bctx.TotalSeats,
			PaymentID:             bctx.PaymentID,
		}
		t.QRPayload = buildQRPayload(0, number, g.marker, time.Now().UTC())

		ticketID, err := g.tickets.InsertTicket(tx, t)
		if err != nil {
			if repositories.IsDuplicateTicketNumber(err) {
				insertErr = err
				continue
			}
			return 0, "", err
		}

		// The payload includes the persisted ticket id, known only after
		// the insert.
		payload := buildQRPayload(ticketID, number, g.marker, time.Now().UTC())
		if err := g.tickets.UpdateQRPayload(tx, ticketID, payload); err != nil {
			return 0, "", err
		}

		if err := g.tickets.AppendValidation(tx, ticketID, models.ValidationCreated, ""); err != nil {
			return 0, "", err
		}

		return ticketID, number, nil
	}

	return 0, "", fmt.Errorf("ticket number collision persisted after %d attempts: %w", ticketNumberAttempts, insertErr)
}

// newTicketNumber builds a scan-readable ticket number: time-based prefix
// plus a random suffix, uppercased. Uniqueness is enforced by the store's
// unique key, not by this generator.
func newTicketNumber(now time.Time) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the
		// clock so a number is still produced.
		return strings.ToUpper(fmt.Sprintf("ZST-%d-%08X", now.UnixMilli(), now.UnixNano()&0xFFFFFFFF))
	}
	return strings.ToUpper(fmt.Sprintf("ZST-%d-%s", now.UnixMilli(), hex.EncodeToString(suffix)))
}

func buildQRPayload(ticketID int64, ticketNumber, marker string, issuedAt time.Time) string {
	payload := qrPayload{
		TicketID:     ticketID,
		TicketNumber: ticketNumber,
		Platform:     marker,
		IssuedAt:     issuedAt.Format(time.RFC3339),
	}

	raw, _ := json.Marshal(payload)
	return string(raw)
}

// splitAmount divides the booking total evenly across seats. The last seat
// absorbs the rounding remainder so the per-seat amounts always sum back to
// the exact total.
func splitAmount(total decimal.Decimal, seats int) []decimal.Decimal {
	if seats <= 0 {
		return nil
	}

	per := total.Div(decimal.NewFromInt(int64(seats))).Round(2)

	amounts := make([]decimal.Decimal, seats)
	for i := 0; i < seats-1; i++ {
		amounts[i] = per
	}
	amounts[seats-1] = total.Sub(per.Mul(decimal.NewFromInt(int64(seats - 1))))

	return amounts
}
