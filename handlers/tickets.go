package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"zest-backend/models"
	"zest-backend/pdf"
	"zest-backend/qr"
	"zest-backend/repositories"
	"zest-backend/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type TicketHandler struct {
	validator  *services.TicketValidator
	ticketRepo *repositories.TicketRepository
	eventRepo  *repositories.EventRepository
}

func NewTicketHandler(
	validator *services.TicketValidator,
	ticketRepo *repositories.TicketRepository,
	eventRepo *repositories.EventRepository,
) *TicketHandler {
	return &TicketHandler{
		validator:  validator,
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
	}
}

// Validate handles POST /api/tickets/validate. Read-only: repeated calls
// never change ticket state.
func (h *TicketHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.validator.Validate(req.TicketNumber, req.ScannerLocation)
	if err != nil {
		logrus.Errorf("ticket validation failed for %s: %v", req.TicketNumber, err)
		InternalServerError(w, "Failed to validate ticket")
		return
	}

	resp := models.ValidationResponse{
		Valid:         result.Valid,
		Code:          result.Code,
		Message:       result.Message,
		SecurityFlags: result.SecurityFlags,
	}
	if result.Valid {
		resp.Ticket = result.Ticket
	}

	JSON(w, result.Status, resp)
}

// GetTicket handles GET /api/tickets/{ticketNumber}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketNumber := chi.URLParam(r, "ticketNumber")

	ticket, err := h.ticketRepo.GetByNumber(ticketNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			NotFound(w, "TICKET_NOT_FOUND", "No ticket found for that number")
			return
		}
		InternalServerError(w, "Failed to fetch ticket")
		return
	}

	history, err := h.ticketRepo.GetValidationHistory(ticket.ID)
	if err != nil {
		InternalServerError(w, "Failed to fetch ticket history")
		return
	}

	// Rendering is best-effort; the record is still useful without the image.
	qrImage, err := qr.EncodeDataURI(ticket.QRPayload, 300)
	if err != nil {
		logrus.Warnf("QR render failed for ticket %s: %v", ticketNumber, err)
		qrImage = ""
	}

	JSON(w, http.StatusOK, models.TicketDetailResponse{
		Ticket:            ticket,
		QRImage:           qrImage,
		ValidationHistory: history,
	})
}

// GetTicketPDF handles GET /api/tickets/{ticketNumber}/pdf
func (h *TicketHandler) GetTicketPDF(w http.ResponseWriter, r *http.Request) {
	ticketNumber := chi.URLParam(r, "ticketNumber")

	ticket, err := h.ticketRepo.GetByNumber(ticketNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			NotFound(w, "TICKET_NOT_FOUND", "No ticket found for that number")
			return
		}
		InternalServerError(w, "Failed to fetch ticket")
		return
	}

	owner, err := h.eventRepo.GetOwner(ticket.OwnerType, ticket.OwnerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		InternalServerError(w, "Failed to fetch event")
		return
	}
	eventTitle := ""
	venue := ""
	if owner != nil {
		eventTitle = owner.Title
		venue = owner.Venue
	}

	qrPNG, err := qr.EncodePNG(ticket.QRPayload, 300)
	if err != nil {
		InternalServerError(w, "Failed to render ticket QR code")
		return
	}

	doc, err := pdf.GenerateTicketPDF(&pdf.TicketData{
		TicketNumber: ticket.TicketNumber,
		EventTitle:   eventTitle,
		SessionDate:  ticket.SessionDate.Format("2006-01-02"),
		TimeSlot:     ticket.TimeSlot,
		Venue:        venue,
		TicketType:   ticket.TicketType,
		Amount:       ticket.Amount.InexactFloat64(),
		HolderName:   ticket.UserName,
		HolderEmail:  ticket.UserEmail,
		QRCodePNG:    qrPNG,
	})
	if err != nil {
		logrus.Errorf("ticket PDF render failed for %s: %v", ticketNumber, err)
		InternalServerError(w, "Failed to render ticket PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", ticket.TicketNumber))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}
