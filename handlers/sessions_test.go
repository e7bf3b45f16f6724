package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zest-backend/db"
	"zest-backend/models"
	"zest-backend/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*db.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return db.New(sqlx.NewDb(mockDB, "mysql")), mock
}

func sessionRouter(handler *SessionHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/sessions/{id}/availability", handler.GetAvailability)
	return r
}

func TestGetAvailability(t *testing.T) {
	database, mock := newMockDB(t)
	handler := NewSessionHandler(repositories.NewSessionRepository(database))

	mock.ExpectQuery("SELECT (.+) FROM event_session").
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_type", "owner_id", "session_date", "start_time", "end_time", "venue",
		}).AddRow(21, "event", 11, time.Now().AddDate(0, 0, 7), "18:00", "22:00", "Phoenix Arena"))
	mock.ExpectQuery("SELECT name, price, capacity, available_capacity").
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "capacity", "available_capacity"}).
			AddRow("General", 250.0, 100, 42).
			AddRow("VIP", 750.0, 20, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/21/availability", nil)
	rec := httptest.NewRecorder()
	sessionRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 21, resp.SessionID)
	require.Len(t, resp.Tiers, 2)
	assert.Equal(t, "General", resp.Tiers[0].Name)
	assert.Equal(t, 42, resp.Tiers[0].Remaining)
	assert.Equal(t, 0, resp.Tiers[1].Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAvailabilitySessionNotFound(t *testing.T) {
	database, mock := newMockDB(t)
	handler := NewSessionHandler(repositories.NewSessionRepository(database))

	mock.ExpectQuery("SELECT (.+) FROM event_session").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_type", "owner_id", "session_date", "start_time", "end_time", "venue",
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/404/availability", nil)
	rec := httptest.NewRecorder()
	sessionRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SESSION_NOT_FOUND", resp.Error)
}

func TestGetAvailabilityRejectsBadID(t *testing.T) {
	database, _ := newMockDB(t)
	handler := NewSessionHandler(repositories.NewSessionRepository(database))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/not-a-number/availability", nil)
	rec := httptest.NewRecorder()
	sessionRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
