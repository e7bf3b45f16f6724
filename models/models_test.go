package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionEndAt(t *testing.T) {
	session := &Session{
		SessionDate: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		EndTime:     "22:30",
	}

	end := session.EndAt()

	assert.Equal(t, time.Date(2026, 6, 15, 22, 30, 0, 0, time.UTC), end)
}

func TestSessionEndAtFallsBackToEndOfDay(t *testing.T) {
	session := &Session{
		SessionDate: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		EndTime:     "garbage",
	}

	end := session.EndAt()

	assert.Equal(t, time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC), end)
}

func TestTicketTargetAccessors(t *testing.T) {
	eventTicket := &Ticket{OwnerType: TargetEvent, OwnerID: 11}
	assert.Equal(t, 11, eventTicket.EventID())
	assert.Equal(t, 0, eventTicket.ActivityID())

	activityTicket := &Ticket{OwnerType: TargetActivity, OwnerID: 7}
	assert.Equal(t, 0, activityTicket.EventID())
	assert.Equal(t, 7, activityTicket.ActivityID())
}
