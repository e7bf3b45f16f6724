package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Database Models

// TargetKind discriminates the parent a session or ticket belongs to.
// A ticket admits entry to exactly one event or one activity, never both.
type TargetKind string

const (
	TargetEvent    TargetKind = "event"
	TargetActivity TargetKind = "activity"
)

// TicketStatus is the ticket lifecycle state. It only moves forward:
// active -> used | cancelled | expired.
type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketExpired   TicketStatus = "expired"
)

// Validation history actions.
const (
	ValidationCreated   = "created"
	ValidationValidated = "validated"
	ValidationCancelled = "cancelled"
	ValidationExpired   = "expired"
)

type Event struct {
	ID          int        `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Venue       string     `db:"venue" json:"venue"`
	City        string     `db:"city" json:"city"`
	OrganizerID string     `db:"organizer_id" json:"-"`
	CreatedAt   *time.Time `db:"created_at" json:"createdAt,omitempty"`
}

type Session struct {
	ID          int        `db:"id" json:"id"`
	OwnerType   TargetKind `db:"owner_type" json:"-"`
	OwnerID     int        `db:"owner_id" json:"-"`
	SessionDate time.Time  `db:"session_date" json:"date"`
	StartTime   string     `db:"start_time" json:"startTime"`
	EndTime     string     `db:"end_time" json:"endTime"`
	Venue       string     `db:"venue" json:"venue"`
}

// EndAt returns the wall-clock end of the session. Tickets become invalid
// for entry once this instant has passed, independent of stored status.
func (s *Session) EndAt() time.Time {
	t, err := time.Parse("15:04", s.EndTime)
	if err != nil {
		// No usable end time recorded; the session runs to the end of its day.
		return s.SessionDate.AddDate(0, 0, 1)
	}
	return time.Date(
		s.SessionDate.Year(), s.SessionDate.Month(), s.SessionDate.Day(),
		t.Hour(), t.Minute(), 0, 0, s.SessionDate.Location(),
	)
}

type Attendee struct {
	ID               int64      `db:"id" json:"id"`
	BookingReference string     `db:"booking_reference" json:"bookingReference"`
	OwnerType        TargetKind `db:"owner_type" json:"-"`
	OwnerID          int        `db:"owner_id" json:"-"`
	SessionID        int        `db:"session_id" json:"sessionId"`
	UserID           string     `db:"user_id" json:"userId"`
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone"`
	TicketType       string     `db:"ticket_type" json:"ticketType"`
	EventTitle       string     `db:"event_title" json:"eventTitle"`
	SessionDate      time.Time  `db:"session_date" json:"sessionDate"`
	StartTime        string     `db:"start_time" json:"startTime"`
	Venue            string     `db:"venue" json:"venue"`
	CheckedIn        bool       `db:"checked_in" json:"checkedIn"`
	CheckedInAt      *time.Time `db:"checked_in_at" json:"checkedAt,omitempty"`
	CheckedInBy      *string    `db:"checked_in_by" json:"checkedInBy,omitempty"`
	CreatedAt        *time.Time `db:"created_at" json:"createdAt,omitempty"`
}

type Ticket struct {
	ID                    int64           `db:"id" json:"id"`
	TicketNumber          string          `db:"ticket_number" json:"ticketNumber"`
	QRPayload             string          `db:"qr_payload" json:"qrCode"`
	Status                TicketStatus    `db:"status" json:"status"`
	OwnerType             TargetKind      `db:"owner_type" json:"-"`
	OwnerID               int             `db:"owner_id" json:"-"`
	SessionID             int             `db:"session_id" json:"sessionId"`
	AttendeeID            int64           `db:"attendee_id" json:"-"`
	UserID                string          `db:"user_id" json:"userId"`
	UserName              string          `db:"user_name" json:"userName"`
	UserEmail             string          `db:"user_email" json:"userEmail"`
	UserPhone             string          `db:"user_phone" json:"userPhone"`
	SessionDate           time.Time       `db:"session_date" json:"selectedDate"`
	TimeSlot              string          `db:"time_slot" json:"selectedTimeSlot"`
	TicketType            string          `db:"ticket_type" json:"ticketType"`
	Amount                decimal.Decimal `db:"amount" json:"amount"`
	BookingReference      string          `db:"booking_reference" json:"bookingReference"`
	TotalTicketsInBooking int             `db:"total_tickets_in_booking" json:"totalTicketsInBooking"`
	PaymentID             string          `db:"payment_id" json:"paymentId,omitempty"`
	UsedAt                *time.Time      `db:"used_at" json:"usedAt,omitempty"`
	UsedBy                *string         `db:"used_by" json:"usedBy,omitempty"`
	ExpiredAt             *time.Time      `db:"expired_at" json:"expiredAt,omitempty"`
	ExpiredReason         *string         `db:"expired_reason" json:"expiredReason,omitempty"`
	CreatedAt             *time.Time      `db:"created_at" json:"createdAt,omitempty"`
}

// EventID reports the parent event id in JSON-facing responses; zero when the
// ticket targets an activity. ActivityID is the mirror accessor.
func (t *Ticket) EventID() int {
	if t.OwnerType == TargetEvent {
		return t.OwnerID
	}
	return 0
}

func (t *Ticket) ActivityID() int {
	if t.OwnerType == TargetActivity {
		return t.OwnerID
	}
	return 0
}

type ValidationEntry struct {
	ID        int64      `db:"id" json:"-"`
	TicketID  int64      `db:"ticket_id" json:"-"`
	Action    string     `db:"action" json:"action"`
	Location  string     `db:"location" json:"location"`
	CreatedAt *time.Time `db:"created_at" json:"timestamp"`
}

type EntryLog struct {
	ID           string     `db:"id"`
	OwnerType    TargetKind `db:"owner_type"`
	OwnerID      int        `db:"owner_id"`
	TicketNumber string     `db:"ticket_number"`
	ScannerID    string     `db:"scanner_id"`
	ScannerType  string     `db:"scanner_type"`
	Location     string     `db:"location"`
	Result       string     `db:"result"`
	CreatedAt    *time.Time `db:"created_at"`
}

// API Request/Response DTOs

type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BookingRequest is the post-payment booking payload. Exactly one of eventId
// and activityId must be set. Attendees optionally carries per-seat holder
// identities; seats without one fall back to the purchaser.
type BookingRequest struct {
	EventID         int            `json:"eventId,omitempty"`
	ActivityID      int            `json:"activityId,omitempty"`
	SessionID       int            `json:"sessionId"`
	UserID          string         `json:"userId"`
	UserInfo        UserInfo       `json:"userInfo"`
	SelectedTickets map[string]int `json:"selectedTickets"`
	TotalAmount     float64        `json:"totalAmount"`
	PaymentID       string         `json:"paymentId,omitempty"`
	Attendees       []UserInfo     `json:"attendees,omitempty"`
}

type BookingData struct {
	BookingReference string   `json:"bookingReference"`
	AttendeeIDs      []int64  `json:"attendeeIds"`
	TicketIDs        []int64  `json:"ticketIds"`
	TicketNumbers    []string `json:"ticketNumbers"`
	TotalTickets     int      `json:"totalTickets"`
	SessionID        int      `json:"sessionId"`
}

type BookingResponse struct {
	Success bool         `json:"success"`
	Data    *BookingData `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ScanRequest identifies the gate a scanner operates: exactly one of eventId
// and activityId must be set, matching the booking payload's target pair.
type ScanRequest struct {
	TicketNumber    string `json:"ticketNumber"`
	ScannerID       string `json:"scannerId"`
	ScannerType     string `json:"scannerType"`
	EventID         int    `json:"eventId,omitempty"`
	ActivityID      int    `json:"activityId,omitempty"`
	ScannerLocation string `json:"scannerLocation"`
}

// TicketSummary is the normalized ticket view returned to a door scanner.
type TicketSummary struct {
	TicketNumber string  `json:"ticketNumber"`
	HolderName   string  `json:"name"`
	EventTitle   string  `json:"eventTitle"`
	TicketType   string  `json:"ticketType"`
	Amount       float64 `json:"amount"`
	SessionDate  string  `json:"sessionDate"`
	TimeSlot     string  `json:"timeSlot"`
	UsedAt       string  `json:"usedAt,omitempty"`
}

// ScanResult is the final allow/deny decision for an entry scan. Status is
// the HTTP status the handler writes; Code is the stable machine code the
// scanner client branches on.
type ScanResult struct {
	Success       bool           `json:"success"`
	Code          string         `json:"code,omitempty"`
	Status        int            `json:"-"`
	Message       string         `json:"error,omitempty"`
	SecurityFlags []string       `json:"securityFlags,omitempty"`
	Ticket        *TicketSummary `json:"ticket,omitempty"`
}

type ValidateRequest struct {
	TicketNumber    string `json:"ticketNumber"`
	ScannerID       string `json:"scannerId"`
	ScannerLocation string `json:"scannerLocation"`
}

type ValidationResponse struct {
	Valid         bool     `json:"valid"`
	Code          string   `json:"code,omitempty"`
	Message       string   `json:"error,omitempty"`
	SecurityFlags []string `json:"securityFlags"`
	Ticket        *Ticket  `json:"ticket,omitempty"`
}

type TicketDetailResponse struct {
	Ticket            *Ticket            `json:"ticket"`
	QRImage           string             `json:"qrImage,omitempty"`
	ValidationHistory []*ValidationEntry `json:"validationHistory"`
}

type PaymentOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt,omitempty"`
}

type PaymentOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Amount  int64  `json:"amount,omitempty"`
	Receipt string `json:"receipt,omitempty"`
	Error   string `json:"error,omitempty"`
}

type PaymentVerifyRequest struct {
	OrderID   string          `json:"razorpayOrderId"`
	PaymentID string          `json:"razorpayPaymentId"`
	Signature string          `json:"razorpaySignature"`
	Booking   *BookingRequest `json:"booking"`
}

type TierAvailability struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Capacity  int     `json:"capacity"`
	Remaining int     `json:"remaining"`
}

type AvailabilityResponse struct {
	SessionID int                 `json:"sessionId"`
	Tiers     []*TierAvailability `json:"tiers"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
