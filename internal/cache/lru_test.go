package cache

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(t *testing.T, size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(t, 2, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	c.Set("a", "2")
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, Stats{Hits: 2, Misses: 1}, c.Stats())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(t, 2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(t, 10, time.Minute)

	c.Set("a", "1")
	clock.advance(30 * time.Second)
	c.Set("b", "2")

	clock.advance(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	clock.advance(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 1, c.Size())

	c.Purge()
	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestNewLRUCache_MinimumSize(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 1, c.Size())
}

type countingCleaner struct{ calls, removed int }

func (c *countingCleaner) CleanExpired() int {
	c.calls++
	return c.removed
}

func TestJanitor(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	_, err := NewJanitor("not a schedule", log)
	assert.Error(t, err)

	a, b := &countingCleaner{removed: 2}, &countingCleaner{}
	j, err := NewJanitor("@every 1h", log, a, b)
	require.NoError(t, err)

	j.Sweep()
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, 2, hook.LastEntry().Data["removed"])

	j.Start()
	j.Stop()
}
