package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func postScan(handler *CheckinHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/entry/scan", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	handler.Scan(rec, req)
	return rec
}

func TestScanRejectsIncompleteRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{not json`},
		{"missing ticketNumber", `{"scannerId":"org-1","scannerType":"organizer","eventId":11}`},
		{"missing scannerId", `{"ticketNumber":"ZST-1","scannerType":"organizer","eventId":11}`},
		{"no target", `{"ticketNumber":"ZST-1","scannerId":"org-1","scannerType":"organizer"}`},
		{"both targets", `{"ticketNumber":"ZST-1","scannerId":"org-1","scannerType":"organizer","eventId":11,"activityId":44}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCheckinHandler(nil)

			rec := postScan(handler, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
