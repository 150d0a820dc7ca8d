package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"granbokning/internal/database"
	"granbokning/internal/models"
	"granbokning/internal/service"

	"golang.org/x/time/rate"
)

type contextKey string

const sessionTokenKey contextKey = "session_token"

// requireSession checks the X-Admin-Token header against the state repository
// and rate-limits each session. The token travels down via the request context.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
		ok, err := s.admin.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check session")
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		if s.cfg.RateLimit.RPS > 0 && !s.getLimiter(token).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ctx := context.WithValue(r.Context(), sessionTokenKey, token)
		next(w, r.WithContext(ctx))
	}
}

func sessionToken(r *http.Request) string {
	token, _ := r.Context().Value(sessionTokenKey).(string)
	return token
}

func (s *Server) getLimiter(key string) *rate.Limiter {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := s.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RPS), burst)
	actual, loaded := s.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := s.admin.Login(r.Context(), body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			writeError(w, http.StatusUnauthorized, "invalid password")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token := sessionToken(r)
	if err := s.admin.Logout(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to destroy session")
		return
	}
	s.limiters.Delete(token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	overview, err := s.admin.Overview(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load bookings")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// handleToggle serves POST /api/v1/admin/bookings/{id}/toggle. It records the
// pending flip and echoes it back so the client can render a confirm dialog.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := toggleBookingID(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	proposal, err := s.admin.ProposeToggle(r.Context(), sessionToken(r), id)
	if err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to prepare toggle")
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}

func toggleBookingID(path string) (int64, bool) {
	const prefix = "/api/v1/admin/bookings/"
	rest := strings.TrimPrefix(path, prefix)
	idStr, action, found := strings.Cut(rest, "/")
	if !found || action != "toggle" {
		return 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleToggleConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	booking, err := s.admin.ConfirmToggle(r.Context(), sessionToken(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoProposal):
			writeError(w, http.StatusConflict, "no pending toggle")
		case errors.Is(err, database.ErrBookingNotFound):
			writeError(w, http.StatusNotFound, "could not update booking")
		default:
			writeError(w, http.StatusInternalServerError, "could not update booking")
		}
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleToggleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.admin.CancelToggle(r.Context(), sessionToken(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cancel toggle")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tab, err := s.admin.ActiveTab(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read tab")
			return
		}
		if tab == "" {
			tab = models.TabAll
		}
		writeJSON(w, http.StatusOK, map[string]string{"tab": tab})
	case http.MethodPut:
		var body struct {
			Tab string `json:"tab"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.admin.SetActiveTab(r.Context(), body.Tab); err != nil {
			writeError(w, http.StatusBadRequest, "unknown tab")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"tab": body.Tab})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
