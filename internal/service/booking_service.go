package service

import (
	"context"

	"granbokning/internal/domain"
	"granbokning/internal/events"
	"granbokning/internal/intake"
	"granbokning/internal/metrics"
	"granbokning/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the submission path: validate, persist, announce.
type BookingService struct {
	store     domain.BookingStore
	eventBus  domain.EventPublisher
	validator *intake.Validator
	logger    *zerolog.Logger
}

func NewBookingService(store domain.BookingStore, eventBus domain.EventPublisher, validator *intake.Validator, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:     store,
		eventBus:  eventBus,
		validator: validator,
		logger:    logger,
	}
}

// SubmitBooking validates the submission and, when it passes, persists it and
// publishes booking_created. Field errors mean nothing was written; a store
// error is terminal for this attempt. The confirmation email is someone
// else's problem: failures there never reach the submitter.
func (s *BookingService) SubmitBooking(ctx context.Context, sub intake.Submission) (*models.Booking, intake.FieldErrors, error) {
	booking, fieldErrs := s.validator.Validate(sub)
	if fieldErrs != nil {
		return nil, fieldErrs, nil
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		s.logger.Error().Err(err).Msg("failed to create booking")
		return nil, nil, err
	}

	metrics.IncBookingCreated()
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("pickup_date", booking.PickupDate).
		Msg("booking created")

	s.publishCreated(booking)

	return booking, nil, nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.store.ListBookings(ctx)
}

func (s *BookingService) publishCreated(booking *models.Booking) {
	err := s.eventBus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		BookingID:      booking.ID,
		Name:           booking.Name,
		Email:          booking.Email,
		Phone:          booking.Phone,
		Address:        booking.Address,
		PickupDate:     booking.PickupDate,
		TimePreference: booking.TimePreference,
		AdditionalInfo: booking.AdditionalInfo,
		PickedUp:       booking.PickedUp,
		CreatedAt:      booking.CreatedAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to publish booking_created")
	}
}
