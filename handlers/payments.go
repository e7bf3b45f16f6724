package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"zest-backend/models"
	"zest-backend/payments"
	"zest-backend/services"

	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	gateway        *payments.Client
	bookingService *services.BookingService
}

func NewPaymentHandler(gateway *payments.Client, bookingService *services.BookingService) *PaymentHandler {
	return &PaymentHandler{
		gateway:        gateway,
		bookingService: bookingService,
	}
}

// CreateOrder handles POST /api/payments/order
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}

	if req.Currency == "" {
		req.Currency = payments.SupportedCurrency
	}

	order, err := h.gateway.CreateOrder(req.Amount, req.Currency, req.Receipt)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidAmount) || errors.Is(err, payments.ErrInvalidCurrency) {
			BadRequest(w, err.Error())
			return
		}
		logrus.Errorf("payment order creation failed: %v", err)
		InternalServerError(w, "Failed to create payment order")
		return
	}

	JSON(w, http.StatusOK, models.PaymentOrderResponse{
		Success: true,
		OrderID: order.ID,
		Amount:  order.Amount,
		Receipt: order.Receipt,
	})
}

// VerifyAndBook handles POST /api/payments/verify: checks the gateway
// signature and, only then, runs the booking transaction for the pending
// payload.
func (h *PaymentHandler) VerifyAndBook(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}

	if req.Booking == nil {
		BadRequest(w, "booking payload is required")
		return
	}

	if err := h.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		Forbidden(w, "INVALID_SIGNATURE", "Payment signature verification failed")
		return
	}

	req.Booking.PaymentID = req.PaymentID

	data, err := h.bookingService.CreateBooking(req.Booking)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	JSON(w, http.StatusCreated, models.BookingResponse{
		Success: true,
		Data:    data,
	})
}
