package handlers

import (
	"encoding/json"
	"net/http"

	"zest-backend/models"
	"zest-backend/services"

	"github.com/sirupsen/logrus"
)

type CheckinHandler struct {
	checkinService *services.CheckinService
}

func NewCheckinHandler(checkinService *services.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService}
}

// Scan handles POST /api/entry/scan, the door-scanner entry decision
func (h *CheckinHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}

	if req.TicketNumber == "" || req.ScannerID == "" || req.ScannerType == "" {
		BadRequest(w, "ticketNumber, scannerId and scannerType are required")
		return
	}
	if (req.EventID == 0) == (req.ActivityID == 0) {
		BadRequest(w, "exactly one of eventId and activityId is required")
		return
	}

	result, err := h.checkinService.ProcessScan(&req)
	if err != nil {
		logrus.Errorf("entry scan failed for ticket %s: %v", req.TicketNumber, err)
		InternalServerError(w, "Failed to process entry scan")
		return
	}

	JSON(w, result.Status, result)
}
