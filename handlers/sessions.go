package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"zest-backend/models"
	"zest-backend/repositories"

	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	sessionRepo *repositories.SessionRepository
}

func NewSessionHandler(sessionRepo *repositories.SessionRepository) *SessionHandler {
	return &SessionHandler{sessionRepo: sessionRepo}
}

// GetAvailability handles GET /api/sessions/{id}/availability
func (h *SessionHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		BadRequest(w, "Invalid session ID")
		return
	}

	if _, err := h.sessionRepo.GetSessionByID(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			NotFound(w, "SESSION_NOT_FOUND", "Session not found")
			return
		}
		InternalServerError(w, "Failed to fetch session")
		return
	}

	tiers, err := h.sessionRepo.GetAvailability(id)
	if err != nil {
		InternalServerError(w, "Failed to fetch availability")
		return
	}
	if tiers == nil {
		tiers = []*models.TierAvailability{}
	}

	JSON(w, http.StatusOK, models.AvailabilityResponse{
		SessionID: id,
		Tiers:     tiers,
	})
}
