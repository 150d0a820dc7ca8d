package notifier

import (
	"context"
	"encoding/json"

	"granbokning/internal/domain"
	"granbokning/internal/events"
	"granbokning/internal/metrics"
	"granbokning/internal/models"

	"github.com/rs/zerolog"
)

// Dispatcher decouples confirmation delivery from the submission path. It
// subscribes to booking_created events and drains a buffered channel from a
// single worker goroutine. Delivery is at-most-once: a failed send is logged
// and counted, never retried, and never reported to the submitter.
type Dispatcher struct {
	mailer domain.Mailer
	queue  chan *models.Booking
	logger zerolog.Logger
}

func NewDispatcher(mailer domain.Mailer, logger *zerolog.Logger) *Dispatcher {
	var dispatcherLogger zerolog.Logger
	if logger != nil {
		dispatcherLogger = logger.With().Str("component", "notifier").Logger()
	}
	return &Dispatcher{
		mailer: mailer,
		queue:  make(chan *models.Booking, models.MailQueueSize),
		logger: dispatcherLogger,
	}
}

// HandleEvent is the event-bus subscription point for booking_created.
func (d *Dispatcher) HandleEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		d.logger.Error().Err(err).Msg("decode booking event payload")
		return err
	}

	d.Enqueue(&models.Booking{
		ID:             payload.BookingID,
		Name:           payload.Name,
		Email:          payload.Email,
		Phone:          payload.Phone,
		Address:        payload.Address,
		PickupDate:     payload.PickupDate,
		TimePreference: payload.TimePreference,
		AdditionalInfo: payload.AdditionalInfo,
		PickedUp:       payload.PickedUp,
		CreatedAt:      payload.CreatedAt,
	})
	return nil
}

// Enqueue hands a booking to the worker without blocking the caller. When the
// queue is full the message is dropped; delivery is best-effort.
func (d *Dispatcher) Enqueue(booking *models.Booking) {
	select {
	case d.queue <- booking:
	default:
		d.logger.Warn().Int64("booking_id", booking.ID).Msg("mail queue full, confirmation dropped")
		metrics.IncEmailFailed()
	}
}

// Start runs the delivery loop until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info().Msg("confirmation dispatcher started")
	defer d.logger.Info().Msg("confirmation dispatcher stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case booking := <-d.queue:
			d.deliver(ctx, booking)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, booking *models.Booking) {
	messageID, err := d.mailer.Send(ctx, booking)
	if err != nil {
		d.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("confirmation email failed")
		metrics.IncEmailFailed()
		return
	}

	d.logger.Info().
		Int64("booking_id", booking.ID).
		Str("message_id", messageID).
		Msg("confirmation email sent")
	metrics.IncEmailSent()
}
