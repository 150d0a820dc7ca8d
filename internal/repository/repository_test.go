package repository

import (
	"context"
	"testing"
	"time"

	"granbokning/internal/domain"
	"granbokning/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisRepo(t *testing.T) (*RedisStateRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStateRepository(client), mr
}

// stateRepositorySuite runs the shared contract against any implementation.
func stateRepositorySuite(t *testing.T, repo domain.StateRepository) {
	ctx := context.Background()

	t.Run("sessions", func(t *testing.T) {
		require.NoError(t, repo.CreateSession(ctx, "tok-1", time.Hour))

		ok, err := repo.SessionExists(ctx, "tok-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.SessionExists(ctx, "tok-unknown")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, repo.DeleteSession(ctx, "tok-1"))
		ok, err = repo.SessionExists(ctx, "tok-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("active tab", func(t *testing.T) {
		tab, err := repo.GetActiveTab(ctx)
		require.NoError(t, err)
		assert.Empty(t, tab)

		require.NoError(t, repo.SetActiveTab(ctx, models.TabPickedUp))
		tab, err = repo.GetActiveTab(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.TabPickedUp, tab)
	})

	t.Run("proposals", func(t *testing.T) {
		got, err := repo.GetProposal(ctx, "tok-2")
		require.NoError(t, err)
		assert.Nil(t, got)

		proposal := &models.ToggleProposal{BookingID: 42, Name: "Anna", PickedUp: true}
		require.NoError(t, repo.SetProposal(ctx, "tok-2", proposal))

		got, err = repo.GetProposal(ctx, "tok-2")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(42), got.BookingID)
		assert.True(t, got.PickedUp)

		require.NoError(t, repo.ClearProposal(ctx, "tok-2"))
		got, err = repo.GetProposal(ctx, "tok-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("rate limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ok, err := repo.CheckRateLimit(ctx, "ip-1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := repo.CheckRateLimit(ctx, "ip-1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		// An unrelated key carries its own counter.
		ok, err = repo.CheckRateLimit(ctx, "ip-2", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestMemoryStateRepository(t *testing.T) {
	stateRepositorySuite(t, NewMemoryStateRepository())
}

func TestMemoryStateRepository_SessionExpiry(t *testing.T) {
	repo := NewMemoryStateRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, "tok", -time.Second))
	ok, err := repo.SessionExists(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStateRepository_RateLimitWindowReset(t *testing.T) {
	repo := NewMemoryStateRepository()
	ctx := context.Background()

	ok, err := repo.CheckRateLimit(ctx, "ip", 1, time.Nanosecond)
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(5 * time.Millisecond)

	ok, err = repo.CheckRateLimit(ctx, "ip", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStateRepository(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	stateRepositorySuite(t, repo)
}

func TestRedisStateRepository_SessionTTL(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, "tok", time.Hour))

	mr.FastForward(2 * time.Hour)

	ok, err := repo.SessionExists(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStateRepository_ProposalTTL(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetProposal(ctx, "tok", &models.ToggleProposal{BookingID: 1}))

	mr.FastForward(time.Duration(models.ProposalTTLSeconds+1) * time.Second)

	got, err := repo.GetProposal(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStateRepository_DeleteSessionClearsProposal(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, "tok", time.Hour))
	require.NoError(t, repo.SetProposal(ctx, "tok", &models.ToggleProposal{BookingID: 7}))

	require.NoError(t, repo.DeleteSession(ctx, "tok"))

	got, err := repo.GetProposal(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStateRepository_NilClient(t *testing.T) {
	repo := NewRedisStateRepository(nil)
	ctx := context.Background()

	assert.Error(t, repo.CreateSession(ctx, "tok", time.Hour))
	_, err := repo.SessionExists(ctx, "tok")
	assert.Error(t, err)
	_, err = repo.GetActiveTab(ctx)
	assert.Error(t, err)
}
