package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExplainEviction(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(10)
	cfg.now = clock.Now
	c := newTestCache[int](t, cfg)

	// LRU -> MRU after these puts: a(2) b(5) c(2) d(9)
	c.Put("a", 1, time.Minute, 2)
	c.Put("b", 2, time.Minute, 5)
	c.Put("c", 3, time.Minute, 2)
	c.Put("d", 4, 0, 9)

	tests := []struct {
		key      string
		position int
		rank     int
	}{
		{key: "a", position: 0, rank: 0},
		{key: "b", position: 1, rank: 2},
		{key: "c", position: 2, rank: 1},
		{key: "d", position: 3, rank: 3},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			x := c.ExplainEviction(tt.key)
			require.True(t, x.Present)
			require.False(t, x.Expired)
			require.Equal(t, tt.position, x.LRUPosition)
			require.Equal(t, tt.rank, x.EvictionRank)
		})
	}

	require.Contains(t, c.ExplainEviction("a").Reason, "next eviction victim")
	require.Contains(t, c.ExplainEviction("b").Reason, "2 entries evicted first")
}

func TestExplainEviction_MatchesVictim(t *testing.T) {
	c := newTestCache[int](t, testConfig(3))

	c.Put("x", 0, 0, 3)
	c.Put("y", 0, 0, 3)
	c.Put("z", 0, 0, 7)
	c.Get("x")

	require.Zero(t, c.ExplainEviction("y").EvictionRank)

	c.Put("w", 0, 0, 5)
	require.False(t, c.Contains("y"))
}

func TestExplainEviction_IsReadOnly(t *testing.T) {
	c := newTestCache[int](t, testConfig(10))

	c.Put("a", 1, 0, 1)
	c.Put("b", 1, 0, 1)
	keys := c.Keys()
	stats := c.Stats()

	c.ExplainEviction("a")
	c.ExplainEviction("missing")

	require.Equal(t, keys, c.Keys())
	require.Equal(t, stats, c.Stats())
}

func TestExplainEviction_MissingAndExpired(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(10)
	cfg.now = clock.Now
	c := newTestCache[int](t, cfg)

	x := c.ExplainEviction("nope")
	require.False(t, x.Present)
	require.Equal(t, "not in cache", x.Reason)

	c.Put("t", 1, time.Second, 8)
	clock.Advance(time.Minute)

	x = c.ExplainEviction("t")
	require.True(t, x.Present)
	require.True(t, x.Expired)
	require.Equal(t, 8, x.Priority)
	require.Zero(t, x.TTLRemaining)
	require.Contains(t, x.Reason, "expired")
}
