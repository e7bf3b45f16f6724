package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zest_bookings_total",
			Help: "Total booking attempts by outcome",
		},
		[]string{"status"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zest_tickets_issued_total",
			Help: "Total individual tickets minted",
		},
	)

	entryScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zest_entry_scans_total",
			Help: "Total entry scans by result code",
		},
		[]string{"result"},
	)

	ticketsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zest_tickets_expired_total",
			Help: "Total tickets expired by the background sweep",
		},
	)
)

// TrackBooking records a booking attempt outcome
func TrackBooking(status string) {
	bookingsTotal.WithLabelValues(status).Inc()
}

// TrackTicketsIssued records minted ticket count
func TrackTicketsIssued(n int) {
	ticketsIssued.Add(float64(n))
}

// TrackScan records an entry scan result code
func TrackScan(result string) {
	entryScans.WithLabelValues(result).Inc()
}

// TrackExpired records tickets swept into the expired state
func TrackExpired(n int) {
	ticketsExpired.Add(float64(n))
}
