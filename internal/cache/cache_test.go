package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solyield/ysa/internal/types"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func resultWithCount(n int) types.CollectionResult {
	opportunities := make([]types.Opportunity, n)
	for i := range opportunities {
		opportunities[i] = types.Opportunity{Protocol: "orca", Pair: "SOL-USDC", APY: 5, TVL: 100_000}
	}
	return types.CollectionResult{Opportunities: opportunities, RawPoolCount: n}
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh hit does not refetch", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1_000_000, 0)}
		calls := 0
		c := New(func(ctx context.Context) (types.CollectionResult, error) {
			calls++
			return resultWithCount(calls), nil
		}, 5*time.Minute, WithClock(clock.Now))

		first, stale, err := c.Get(ctx)
		require.NoError(t, err)
		require.False(t, stale)
		require.Equal(t, 1, calls)

		clock.Advance(4 * time.Minute)
		second, stale, err := c.Get(ctx)
		require.NoError(t, err)
		require.False(t, stale)
		require.Equal(t, 1, calls)
		require.Equal(t, first, second)
	})

	t.Run("expiry triggers refresh", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1_000_000, 0)}
		calls := 0
		c := New(func(ctx context.Context) (types.CollectionResult, error) {
			calls++
			return resultWithCount(calls), nil
		}, 5*time.Minute, WithClock(clock.Now))

		_, _, err := c.Get(ctx)
		require.NoError(t, err)

		clock.Advance(5 * time.Minute)
		result, stale, err := c.Get(ctx)
		require.NoError(t, err)
		require.False(t, stale)
		require.Equal(t, 2, calls)
		require.Equal(t, 2, result.RawPoolCount)
	})

	t.Run("failed refresh serves stale data", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1_000_000, 0)}
		calls := 0
		c := New(func(ctx context.Context) (types.CollectionResult, error) {
			calls++
			if calls > 1 {
				return types.CollectionResult{}, errors.New("upstream down")
			}
			return resultWithCount(1), nil
		}, 5*time.Minute, WithClock(clock.Now))

		first, _, err := c.Get(ctx)
		require.NoError(t, err)

		clock.Advance(10 * time.Minute)
		result, stale, err := c.Get(ctx)
		require.NoError(t, err)
		require.True(t, stale)
		require.Equal(t, first, result)
	})

	t.Run("failure with no prior data is an error", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1_000_000, 0)}
		fetchErr := errors.New("upstream down")
		c := New(func(ctx context.Context) (types.CollectionResult, error) {
			return types.CollectionResult{}, fetchErr
		}, 5*time.Minute, WithClock(clock.Now))

		_, stale, err := c.Get(ctx)
		require.ErrorIs(t, err, fetchErr)
		require.False(t, stale)
	})

	t.Run("last refreshed reports population time", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1_000_000, 0)}
		c := New(func(ctx context.Context) (types.CollectionResult, error) {
			return resultWithCount(1), nil
		}, 5*time.Minute, WithClock(clock.Now))

		require.True(t, c.LastRefreshed().IsZero())

		_, _, err := c.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, clock.Now(), c.LastRefreshed())
	})
}
