package domain

import (
	"context"
	"time"

	"granbokning/internal/models"
)

// BookingStore is the persistence boundary for booking records. Creation is
// append-only; picked_up is the only field mutable after creation.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdatePickedUp(ctx context.Context, id int64, pickedUp bool) (*models.Booking, error)
	CountByPickedUp(ctx context.Context) (open, collected int, err error)
}

// StateRepository keeps operator UI state outside the booking store: session
// tokens, the persisted tab selection and pending toggle proposals. It also
// provides the counter used to rate-limit public submissions.
type StateRepository interface {
	CreateSession(ctx context.Context, token string, ttl time.Duration) error
	SessionExists(ctx context.Context, token string) (bool, error)
	DeleteSession(ctx context.Context, token string) error

	GetActiveTab(ctx context.Context) (string, error)
	SetActiveTab(ctx context.Context, tab string) error

	GetProposal(ctx context.Context, token string) (*models.ToggleProposal, error)
	SetProposal(ctx context.Context, token string, proposal *models.ToggleProposal) error
	ClearProposal(ctx context.Context, token string) error

	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// EventPublisher publishes domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Mailer delivers one confirmation message and returns the provider's
// message identifier.
type Mailer interface {
	Send(ctx context.Context, booking *models.Booking) (string, error)
}
