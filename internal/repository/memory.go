package repository

import (
	"context"
	"sync"
	"time"

	"granbokning/internal/models"
)

type MemoryStateRepository struct {
	sessions   sync.Map // token -> expiry time.Time
	proposals  sync.Map // token -> *models.ToggleProposal
	rateLimits sync.Map

	mu        sync.RWMutex
	activeTab string
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{}
}

func (r *MemoryStateRepository) CreateSession(ctx context.Context, token string, ttl time.Duration) error {
	r.sessions.Store(token, time.Now().Add(ttl))
	return nil
}

func (r *MemoryStateRepository) SessionExists(ctx context.Context, token string) (bool, error) {
	val, ok := r.sessions.Load(token)
	if !ok {
		return false, nil
	}
	expiry := val.(time.Time)
	if time.Now().After(expiry) {
		r.sessions.Delete(token)
		return false, nil
	}
	return true, nil
}

func (r *MemoryStateRepository) DeleteSession(ctx context.Context, token string) error {
	r.sessions.Delete(token)
	r.proposals.Delete(token)
	return nil
}

func (r *MemoryStateRepository) GetActiveTab(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeTab, nil
}

func (r *MemoryStateRepository) SetActiveTab(ctx context.Context, tab string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeTab = tab
	return nil
}

func (r *MemoryStateRepository) GetProposal(ctx context.Context, token string) (*models.ToggleProposal, error) {
	val, ok := r.proposals.Load(token)
	if !ok {
		return nil, nil
	}
	return val.(*models.ToggleProposal), nil
}

func (r *MemoryStateRepository) SetProposal(ctx context.Context, token string, proposal *models.ToggleProposal) error {
	r.proposals.Store(token, proposal)
	return nil
}

func (r *MemoryStateRepository) ClearProposal(ctx context.Context, token string) error {
	r.proposals.Delete(token)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
