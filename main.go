package main

import (
	"net/http"
	"os"
	"time"

	"zest-backend/db"
	"zest-backend/handlers"
	"zest-backend/payments"
	"zest-backend/repositories"
	"zest-backend/services"
	"zest-backend/workers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment")
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		logrus.Fatal("DB_DSN not set")
	}

	razorpayKeyID := os.Getenv("RAZORPAY_KEY_ID")
	razorpaySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if razorpayKeyID == "" || razorpaySecret == "" {
		logrus.Fatal("RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET not set")
	}

	platformMarker := os.Getenv("PLATFORM_MARKER")
	if platformMarker == "" {
		platformMarker = "zest"
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":4000"
	}

	database, err := db.Connect(dsn)
	if err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}

	// Initialize repositories
	eventRepo := repositories.NewEventRepository(database)
	sessionRepo := repositories.NewSessionRepository(database)
	ticketRepo := repositories.NewTicketRepository(database)
	attendeeRepo := repositories.NewAttendeeRepository(database)
	entryLogRepo := repositories.NewEntryLogRepository(database)

	// Initialize services
	generator := services.NewTicketGenerator(ticketRepo, platformMarker)
	validator := services.NewTicketValidator(ticketRepo, sessionRepo)
	bookingService := services.NewBookingService(database, eventRepo, sessionRepo, attendeeRepo, generator)
	checkinService := services.NewCheckinService(database, validator, eventRepo, ticketRepo, attendeeRepo, entryLogRepo)
	gateway := payments.NewClient(razorpayKeyID, razorpaySecret)

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(bookingService)
	checkinHandler := handlers.NewCheckinHandler(checkinService)
	ticketHandler := handlers.NewTicketHandler(validator, ticketRepo, eventRepo)
	sessionHandler := handlers.NewSessionHandler(sessionRepo)
	paymentHandler := handlers.NewPaymentHandler(gateway, bookingService)

	// Background expiry sweep
	expiryWorker := workers.NewExpiryWorker(database, ticketRepo, time.Hour)
	expiryWorker.Start()
	defer expiryWorker.Stop()

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Bookings
		r.Post("/bookings", bookingHandler.CreateBooking)

		// Entry check-in
		r.Post("/entry/scan", checkinHandler.Scan)

		// Tickets
		r.Post("/tickets/validate", ticketHandler.Validate)
		r.Get("/tickets/{ticketNumber}", ticketHandler.GetTicket)
		r.Get("/tickets/{ticketNumber}/pdf", ticketHandler.GetTicketPDF)

		// Sessions
		r.Get("/sessions/{id}/availability", sessionHandler.GetAvailability)

		// Payments
		r.Post("/payments/order", paymentHandler.CreateOrder)
		r.Post("/payments/verify", paymentHandler.VerifyAndBook)
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	logrus.Infof("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.Fatal(err)
	}
}
