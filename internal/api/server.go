package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"granbokning/internal/config"
	"granbokning/internal/database"
	"granbokning/internal/domain"
	"granbokning/internal/metrics"
	"granbokning/internal/models"
	"granbokning/internal/service"

	"github.com/rs/zerolog"
)

// Server exposes the public booking form endpoints and the admin triage API.
type Server struct {
	cfg      config.ServerConfig
	bookings *service.BookingService
	admin    *service.AdminService
	state    domain.StateRepository
	db       *database.DB
	dates    []models.PickupDate
	logger   *zerolog.Logger
	server   *http.Server
	limiters sync.Map // map[string]*rate.Limiter, keyed by session token
}

func NewServer(cfg config.ServerConfig, bookings *service.BookingService, admin *service.AdminService, state domain.StateRepository, db *database.DB, dates []models.PickupDate, logger *zerolog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		bookings: bookings,
		admin:    admin,
		state:    state,
		db:       db,
		dates:    dates,
		logger:   logger,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler builds the full route table. Exposed separately so tests can drive
// it through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.HandleFunc("/api/v1/pickup-dates", s.handlePickupDates)
	mux.HandleFunc("/api/v1/bookings", s.handleCreateBooking)

	mux.HandleFunc("/api/v1/admin/login", s.handleLogin)
	mux.HandleFunc("/api/v1/admin/logout", s.requireSession(s.handleLogout))
	mux.HandleFunc("/api/v1/admin/bookings", s.requireSession(s.handleAdminBookings))
	mux.HandleFunc("/api/v1/admin/bookings/export", s.requireSession(s.handleExport))
	mux.HandleFunc("/api/v1/admin/bookings/", s.requireSession(s.handleToggle))
	mux.HandleFunc("/api/v1/admin/toggle/confirm", s.requireSession(s.handleToggleConfirm))
	mux.HandleFunc("/api/v1/admin/toggle/cancel", s.requireSession(s.handleToggleCancel))
	mux.HandleFunc("/api/v1/admin/tab", s.requireSession(s.handleTab))

	return s.loggingMiddleware(mux)
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel collapses booking ids so the metric stays low-cardinality.
func endpointLabel(path string) string {
	const prefix = "/api/v1/admin/bookings/"
	if strings.HasPrefix(path, prefix) && path != prefix+"export" {
		return prefix + ":id/toggle"
	}
	return path
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
