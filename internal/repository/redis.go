package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"granbokning/internal/config"
	"granbokning/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisStateRepository struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisStateRepository(client *redis.Client) *RedisStateRepository {
	return &RedisStateRepository{client: client}
}

func (r *RedisStateRepository) CreateSession(ctx context.Context, token string, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("admin_session:%s", token)
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to create session in redis: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) SessionExists(ctx context.Context, token string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("admin_session:%s", token)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session in redis: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStateRepository) DeleteSession(ctx context.Context, token string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	sessionKey := fmt.Sprintf("admin_session:%s", token)
	proposalKey := fmt.Sprintf("toggle_proposal:%s", token)
	if err := r.client.Del(ctx, sessionKey, proposalKey).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) GetActiveTab(ctx context.Context) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, "admin_active_tab").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get active tab from redis: %w", err)
	}
	return val, nil
}

func (r *RedisStateRepository) SetActiveTab(ctx context.Context, tab string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	// Tab selection outlives sessions, no TTL.
	if err := r.client.Set(ctx, "admin_active_tab", tab, 0).Err(); err != nil {
		return fmt.Errorf("failed to set active tab in redis: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) GetProposal(ctx context.Context, token string) (*models.ToggleProposal, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("toggle_proposal:%s", token)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal from redis: %w", err)
	}

	var proposal models.ToggleProposal
	if err := json.Unmarshal([]byte(val), &proposal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal: %w", err)
	}
	return &proposal, nil
}

func (r *RedisStateRepository) SetProposal(ctx context.Context, token string, proposal *models.ToggleProposal) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("toggle_proposal:%s", token)
	data, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("failed to marshal proposal: %w", err)
	}
	ttl := time.Duration(models.ProposalTTLSeconds) * time.Second
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set proposal in redis: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) ClearProposal(ctx context.Context, token string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("toggle_proposal:%s", token)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete proposal from redis: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	redisKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, redisKey, window)
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
