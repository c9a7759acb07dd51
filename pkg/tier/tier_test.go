package tier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEntry is a minimal Entry[T] implementation for exercising Store
// without depending on pkg/entity.
type fakeEntry struct {
	id           string
	accessCount  int64
	lastAccessed time.Time
}

func (f fakeEntry) WithAccess(now time.Time) fakeEntry {
	f.accessCount++
	f.lastAccessed = now
	return f
}

func (f fakeEntry) AccessCount() int64 { return f.accessCount }

func (f fakeEntry) LastAccessed() time.Time { return f.lastAccessed }

func stringLess(a, b string) bool { return a < b }

func TestPutEntersRuntime(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	s.Put("a", fakeEntry{id: "a"})

	tier, ok := s.TierOf("a")
	require.True(t, ok)
	assert.Equal(t, Runtime, tier)
}

func TestGetPromotesFromColdToRuntime(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	s.tiers[Cold]["a"] = fakeEntry{id: "a"}

	v, tier, ok := s.Get("a", time.Now())
	require.True(t, ok)
	assert.Equal(t, Runtime, tier)
	assert.Equal(t, int64(1), v.AccessCount())

	_, stillCold := s.tiers[Cold]["a"]
	assert.False(t, stillCold)
	rt, _ := s.TierOf("a")
	assert.Equal(t, Runtime, rt)
}

func TestGetMissTouchesNothing(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	_, _, ok := s.Get("missing", time.Now())
	assert.False(t, ok)
	assert.Equal(t, 0, s.Total())
}

func TestPeekDoesNotPromoteOrBumpAccess(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	s.tiers[Warm]["a"] = fakeEntry{id: "a"}

	v, tier, ok := s.Peek("a")
	require.True(t, ok)
	assert.Equal(t, Warm, tier)
	assert.Equal(t, int64(0), v.AccessCount())

	rt, _ := s.TierOf("a")
	assert.Equal(t, Warm, rt)
}

func TestDeleteRemovesFromWhicheverTier(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	s.tiers[Warm]["a"] = fakeEntry{id: "a"}
	s.Delete("a")

	_, ok := s.TierOf("a")
	assert.False(t, ok)
}

func TestCountAndTotal(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	s.Put("a", fakeEntry{id: "a"})
	s.Put("b", fakeEntry{id: "b"})
	s.tiers[Cold]["c"] = fakeEntry{id: "c"}

	assert.Equal(t, 2, s.Count(Runtime))
	assert.Equal(t, 1, s.Count(Cold))
	assert.Equal(t, 3, s.Total())
}

func TestPruneDemotesLeastAccessedFirst(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	now := time.Now()
	s.tiers[Runtime]["a"] = fakeEntry{id: "a", accessCount: 5, lastAccessed: now}
	s.tiers[Runtime]["b"] = fakeEntry{id: "b", accessCount: 1, lastAccessed: now}
	s.tiers[Runtime]["c"] = fakeEntry{id: "c", accessCount: 3, lastAccessed: now}

	demoted := s.Prune(1, 100, stringLess)
	assert.Equal(t, 2, demoted)

	_, tier, ok := s.Peek("a")
	require.True(t, ok)
	assert.Equal(t, Runtime, tier, "most-accessed entry stays")

	_, tier, ok = s.Peek("b")
	require.True(t, ok)
	assert.Equal(t, Warm, tier, "least-accessed entry demoted first")
}

func TestPruneTieBreaksOnLastAccessedThenID(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	s.tiers[Runtime]["z"] = fakeEntry{id: "z", accessCount: 0, lastAccessed: newer}
	s.tiers[Runtime]["a"] = fakeEntry{id: "a", accessCount: 0, lastAccessed: older}

	demoted := s.Prune(1, 100, stringLess)
	assert.Equal(t, 1, demoted)

	_, tier, _ := s.Peek("a")
	assert.Equal(t, Warm, tier, "older last-accessed demoted before newer")
	_, tier, _ = s.Peek("z")
	assert.Equal(t, Runtime, tier)
}

func TestPruneDeterministicIDTieBreak(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	now := time.Now()
	s.tiers[Runtime]["b"] = fakeEntry{id: "b", accessCount: 0, lastAccessed: now}
	s.tiers[Runtime]["a"] = fakeEntry{id: "a", accessCount: 0, lastAccessed: now}

	s.Prune(1, 100, stringLess)

	_, tier, _ := s.Peek("a")
	assert.Equal(t, Warm, tier, "lower identifier demoted first on full tie")
}

func TestPruneColdHasNoLimit(t *testing.T) {
	s := NewStore[string, fakeEntry]()
	for i := 0; i < 50; i++ {
		id := string(rune('a' + i%26))
		s.tiers[Cold][id] = fakeEntry{id: id}
	}
	demoted := s.Prune(100, 100, stringLess)
	assert.Equal(t, 0, demoted)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "runtime", Runtime.String())
	assert.Equal(t, "warm", Warm.String())
	assert.Equal(t, "cold", Cold.String())
}
