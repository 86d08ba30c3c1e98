package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/cache"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time           { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newMemory[V any](clock *fakeClock) *cache.Memory[V] {
	m := cache.NewMemory[V]()
	m.Now = clock.Now
	return m
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newMemory[string](clock)

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)

	clock.Advance(time.Minute)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryAddWithinWindow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newMemory[bool](clock)

	added, err := m.Add(ctx, "event", true, 5*time.Minute)
	require.NoError(t, err)
	require.True(t, added)

	clock.Advance(4 * time.Minute)
	added, err = m.Add(ctx, "event", true, 5*time.Minute)
	require.NoError(t, err)
	require.False(t, added)

	clock.Advance(time.Minute)
	added, err = m.Add(ctx, "event", true, 5*time.Minute)
	require.NoError(t, err)
	require.True(t, added)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory[int]()
	require.NoError(t, m.Set(ctx, "a", 1, time.Hour))
	require.NoError(t, m.Set(ctx, "b", 2, time.Hour))

	require.NoError(t, m.Delete(ctx, "a", "b", "missing"))
	_, ok, _ := m.Get(ctx, "a")
	require.False(t, ok)
}

func TestMemorySweepsPastMaxEntries(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newMemory[int](clock)
	m.MaxEntries = 10

	for i := range 10 {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("old-%d", i), i, time.Second))
	}
	clock.Advance(2 * time.Second)

	require.NoError(t, m.Set(ctx, "fresh", 1, time.Minute))
	require.Equal(t, 1, m.Len())
}

func TestMemoryConcurrentAddHasOneWinner(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory[bool]()

	const n = 50
	wins := make(chan bool, n)
	for range n {
		go func() {
			ok, _ := m.Add(ctx, "same", true, time.Minute)
			wins <- ok
		}()
	}

	count := 0
	for range n {
		if <-wins {
			count++
		}
	}
	require.Equal(t, 1, count)
}
