package repository

import (
	"context"
	"sync/atomic"
	"time"

	"granbokning/internal/domain"
	"granbokning/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStateRepository serves from the primary repository and drops to the
// fallback when the primary errors. The primary is probed again after a
// minute.
type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed primary call
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	// Try to recover after 1 minute
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverStateRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverStateRepository) CreateSession(ctx context.Context, token string, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.CreateSession(ctx, token, ttl)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.CreateSession(ctx, token, ttl)
}

func (r *FailoverStateRepository) SessionExists(ctx context.Context, token string) (bool, error) {
	if r.usePrimary() {
		ok, err := r.primary.SessionExists(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			return ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.SessionExists(ctx, token)
}

func (r *FailoverStateRepository) DeleteSession(ctx context.Context, token string) error {
	if r.usePrimary() {
		err := r.primary.DeleteSession(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.DeleteSession(ctx, token)
}

func (r *FailoverStateRepository) GetActiveTab(ctx context.Context) (string, error) {
	if r.usePrimary() {
		tab, err := r.primary.GetActiveTab(ctx)
		if err == nil {
			r.isDown.Store(false)
			return tab, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetActiveTab(ctx)
}

func (r *FailoverStateRepository) SetActiveTab(ctx context.Context, tab string) error {
	if r.usePrimary() {
		err := r.primary.SetActiveTab(ctx, tab)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetActiveTab(ctx, tab)
}

func (r *FailoverStateRepository) GetProposal(ctx context.Context, token string) (*models.ToggleProposal, error) {
	if r.usePrimary() {
		proposal, err := r.primary.GetProposal(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			return proposal, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetProposal(ctx, token)
}

func (r *FailoverStateRepository) SetProposal(ctx context.Context, token string, proposal *models.ToggleProposal) error {
	if r.usePrimary() {
		err := r.primary.SetProposal(ctx, token, proposal)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetProposal(ctx, token, proposal)
}

func (r *FailoverStateRepository) ClearProposal(ctx context.Context, token string) error {
	if r.usePrimary() {
		err := r.primary.ClearProposal(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.ClearProposal(ctx, token)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.isDown.Store(false)
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
