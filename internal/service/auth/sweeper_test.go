package auth

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSweeper_SweepOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokens := mocks.NewMockTokenStore()
	now := time.Now().UTC()

	require.NoError(t, tokens.Save(ctx, domain.NewBearerToken(1, "elapsed", now.Add(-time.Minute))))
	require.NoError(t, tokens.Save(ctx, domain.NewBearerToken(1, "live", now.Add(time.Hour))))

	sweeper := NewTokenSweeper(tokens, time.Minute, nil)
	sweeper.now = func() time.Time { return now }

	n, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	elapsed, err := tokens.FindByValue(ctx, "elapsed")
	require.NoError(t, err)
	assert.True(t, elapsed.Expired)
	assert.False(t, elapsed.Revoked)

	live, err := tokens.FindByValue(ctx, "live")
	require.NoError(t, err)
	assert.False(t, live.Expired)

	n, err = sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTokenSweeper_StartStop(t *testing.T) {
	t.Parallel()

	tokens := mocks.NewMockTokenStore()
	require.NoError(t, tokens.Save(context.Background(),
		domain.NewBearerToken(1, "elapsed", time.Now().Add(-time.Minute))))

	sweeper := NewTokenSweeper(tokens, 10*time.Millisecond, nil)
	sweeper.Start()

	assert.Eventually(t, func() bool {
		entry, err := tokens.FindByValue(context.Background(), "elapsed")
		return err == nil && entry.Expired
	}, time.Second, 10*time.Millisecond)

	sweeper.Stop()

	disabled := NewTokenSweeper(tokens, 0, nil)
	disabled.Start()
	disabled.Stop()
}
