package api

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"granbokning/internal/intake"
	"granbokning/internal/models"
)

func (s *Server) handlePickupDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": s.dates})
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !s.allowSubmit(r) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var sub intake.Submission
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, fieldErrs, err := s.bookings.SubmitBooking(r.Context(), sub)
	if fieldErrs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save booking")
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// allowSubmit counts submissions per client IP in the state repository.
// Fail open: a broken counter must not block the form.
func (s *Server) allowSubmit(r *http.Request) bool {
	limit := s.cfg.Submit.Limit
	if limit <= 0 {
		limit = models.DefaultSubmitLimit
	}
	window := s.cfg.Submit.WindowSeconds
	if window <= 0 {
		window = models.DefaultSubmitWindowSeconds
	}

	ok, err := s.state.CheckRateLimit(r.Context(), "submit:"+clientIP(r), limit, time.Duration(window)*time.Second)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to check submit rate limit")
		return true
	}
	return ok
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
