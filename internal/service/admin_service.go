package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"granbokning/internal/domain"
	"granbokning/internal/events"
	"granbokning/internal/metrics"
	"granbokning/internal/models"
	"granbokning/internal/triage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidPassword = errors.New("invalid admin password")
	ErrNoProposal      = errors.New("no pending toggle proposal")
)

// Overview is what the triage view renders: every grouping is precomputed
// server side so the client only has to display it.
type Overview struct {
	All            []*models.Booking            `json:"all"`
	PickedUp       []*models.Booking            `json:"picked_up"`
	ByDate         map[string][]*models.Booking `json:"by_date"`
	OpenCount      int                          `json:"open_count"`
	CollectedCount int                          `json:"collected_count"`
	ActiveTab      string                       `json:"active_tab"`
}

// AdminService handles the shared-password sessions and everything behind
// them. Toggle changes are two-step: ProposeToggle parks the intent in the
// state repository under the session token, ConfirmToggle applies it.
type AdminService struct {
	store      domain.BookingStore
	state      domain.StateRepository
	eventBus   domain.EventPublisher
	password   string
	sessionTTL time.Duration
	logger     *zerolog.Logger
}

func NewAdminService(store domain.BookingStore, state domain.StateRepository, eventBus domain.EventPublisher, password string, sessionTTL time.Duration, logger *zerolog.Logger) *AdminService {
	return &AdminService{
		store:      store,
		state:      state,
		eventBus:   eventBus,
		password:   password,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login checks the shared password in constant time and mints a session token.
func (s *AdminService) Login(ctx context.Context, password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", ErrInvalidPassword
	}

	token := uuid.NewString()
	if err := s.state.CreateSession(ctx, token, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().Msg("admin logged in")
	return token, nil
}

func (s *AdminService) Logout(ctx context.Context, token string) error {
	if err := s.state.ClearProposal(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear proposal on logout")
	}
	return s.state.DeleteSession(ctx, token)
}

func (s *AdminService) Authenticate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.state.SessionExists(ctx, token)
}

// Overview loads every booking and derives the triage views. Open bookings
// sort before collected ones, newest first within each partition.
func (s *AdminService) Overview(ctx context.Context) (*Overview, error) {
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	byDate := make(map[string][]*models.Booking)
	for date, group := range triage.GroupByDate(bookings) {
		byDate[date] = triage.OrderForDisplay(group)
	}

	open := 0
	for _, b := range bookings {
		if !b.PickedUp {
			open++
		}
	}

	tab, err := s.state.GetActiveTab(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read active tab")
		tab = ""
	}
	if tab == "" {
		tab = models.TabAll
	}

	return &Overview{
		All:            triage.OrderForDisplay(bookings),
		PickedUp:       triage.FilterPickedUp(bookings),
		ByDate:         byDate,
		OpenCount:      open,
		CollectedCount: len(bookings) - open,
		ActiveTab:      tab,
	}, nil
}

// ProposeToggle records the intent to flip a booking's picked_up flag. The
// booking itself is untouched until ConfirmToggle.
func (s *AdminService) ProposeToggle(ctx context.Context, token string, bookingID int64) (*models.ToggleProposal, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	proposal := &models.ToggleProposal{
		BookingID: booking.ID,
		Name:      booking.Name,
		PickedUp:  !booking.PickedUp,
	}
	if err := s.state.SetProposal(ctx, token, proposal); err != nil {
		return nil, fmt.Errorf("failed to store proposal: %w", err)
	}
	return proposal, nil
}

// ConfirmToggle applies the pending proposal. The proposal is consumed either
// way; a vanished booking surfaces as database.ErrBookingNotFound with the
// store left untouched.
func (s *AdminService) ConfirmToggle(ctx context.Context, token string) (*models.Booking, error) {
	proposal, err := s.state.GetProposal(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposal: %w", err)
	}
	if proposal == nil {
		return nil, ErrNoProposal
	}

	if err := s.state.ClearProposal(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear proposal")
	}

	booking, err := s.store.UpdatePickedUp(ctx, proposal.BookingID, proposal.PickedUp)
	if err != nil {
		return nil, err
	}

	event := events.EventBookingReopened
	direction := "reopened"
	if booking.PickedUp {
		event = events.EventBookingPickedUp
		direction = "picked_up"
	}
	metrics.IncToggle(direction)

	if err := s.eventBus.PublishJSON(event, events.BookingEventPayload{
		BookingID:  booking.ID,
		Name:       booking.Name,
		PickupDate: booking.PickupDate,
		PickedUp:   booking.PickedUp,
		CreatedAt:  booking.CreatedAt,
	}); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to publish toggle event")
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Bool("picked_up", booking.PickedUp).
		Msg("booking toggled")
	return booking, nil
}

func (s *AdminService) CancelToggle(ctx context.Context, token string) error {
	return s.state.ClearProposal(ctx, token)
}

func (s *AdminService) ActiveTab(ctx context.Context) (string, error) {
	return s.state.GetActiveTab(ctx)
}

func (s *AdminService) SetActiveTab(ctx context.Context, tab string) error {
	if tab != models.TabAll && tab != models.TabPickedUp {
		return fmt.Errorf("unknown tab %q", tab)
	}
	return s.state.SetActiveTab(ctx, tab)
}
