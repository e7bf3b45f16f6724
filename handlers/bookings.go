package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"zest-backend/models"
	"zest-backend/services"

	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}

	if req.SessionID == 0 {
		BadRequest(w, "sessionId is required")
		return
	}
	if req.UserID == "" {
		BadRequest(w, "userId is required")
		return
	}
	if req.UserInfo.Name == "" || req.UserInfo.Email == "" {
		BadRequest(w, "userInfo.name and userInfo.email are required")
		return
	}
	if len(req.SelectedTickets) == 0 {
		BadRequest(w, "selectedTickets must not be empty")
		return
	}

	data, err := h.bookingService.CreateBooking(&req)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	JSON(w, http.StatusCreated, models.BookingResponse{
		Success: true,
		Data:    data,
	})
}

func writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidBooking):
		BadRequest(w, err.Error())
	case errors.Is(err, services.ErrEventNotFound):
		NotFound(w, "EVENT_NOT_FOUND", "Event or activity not found")
	case errors.Is(err, services.ErrSessionNotFound):
		NotFound(w, "SESSION_NOT_FOUND", "Session not found for this event")
	case errors.Is(err, services.ErrTicketTypeNotFound):
		NotFound(w, "TICKET_TYPE_NOT_FOUND", "One or more requested ticket types do not exist")
	case errors.Is(err, services.ErrInsufficientCapacity):
		Conflict(w, "INSUFFICIENT_CAPACITY", err.Error())
	default:
		logrus.Errorf("create booking failed: %v", err)
		InternalServerError(w, "Failed to create booking")
	}
}
