package workers

import (
	"time"

	"zest-backend/db"
	"zest-backend/models"
	"zest-backend/monitoring"
	"zest-backend/repositories"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const expiredReason = "session ended before the ticket was used"

// ExpiryWorker periodically sweeps active tickets whose session has ended
// into the expired state. The sweep is best-effort and off the entry
// critical path: the validator already treats a past session end as expired,
// so a missed sweep never admits anyone.
type ExpiryWorker struct {
	db       *db.DB
	tickets  *repositories.TicketRepository
	interval time.Duration
	stopChan chan struct{}
}

func NewExpiryWorker(db *db.DB, tickets *repositories.TicketRepository, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		db:       db,
		tickets:  tickets,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs one sweep immediately, then on every tick until Stop is called
func (w *ExpiryWorker) Start() {
	logrus.Infof("ticket expiry sweep started (every %v)", w.interval)

	w.Sweep()

	ticker := time.NewTicker(w.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				w.Sweep()
			case <-w.stopChan:
				ticker.Stop()
				logrus.Info("ticket expiry sweep stopped")
				return
			}
		}
	}()
}

// Stop halts the periodic sweep
func (w *ExpiryWorker) Stop() {
	close(w.stopChan)
}

// Sweep expires every active ticket whose session end has passed. Errors are
// logged and swallowed; the next tick retries.
func (w *ExpiryWorker) Sweep() {
	ids, err := w.tickets.FindExpiredActive(time.Now())
	if err != nil {
		logrus.Warnf("expiry sweep query failed: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	expired := 0
	for _, ticketID := range ids {
		err := w.db.WithTx(func(tx *sqlx.Tx) error {
			rowsAffected, err := w.tickets.ExpireTicket(tx, ticketID, expiredReason)
			if err != nil {
				return err
			}
			if rowsAffected == 0 {
				// Lost a race with a scan or a cancel; nothing to record.
				return nil
			}
			if err := w.tickets.AppendValidation(tx, ticketID, models.ValidationExpired, ""); err != nil {
				return err
			}
			expired++
			return nil
		})
		if err != nil {
			logrus.Warnf("expiry sweep failed for ticket %d: %v", ticketID, err)
		}
	}

	if expired > 0 {
		monitoring.TrackExpired(expired)
		logrus.Infof("expiry sweep marked %d tickets expired", expired)
	}
}
