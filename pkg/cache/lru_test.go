package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// order walks the cache head-to-tail and returns the keys in recency order,
// least-recently-used first.
func order(c *Cache) []string {
	out := make([]string, 0, len(c.index))
	for i := c.head; i != noNode; i = c.nodes[i].next {
		out = append(out, c.nodes[i].key)
	}
	return out
}

func TestScenarioEvictsMultipleHeadEntriesForOneInsert(t *testing.T) {
	c := New(10)

	require.True(t, c.Put("a", "1"))
	require.True(t, c.Put("bb", "22"))
	require.True(t, c.Put("c", "3"))
	assert.Equal(t, []string{"a", "bb", "c"}, order(c))

	require.True(t, c.Put("dddd", "4")) // size 5; evicts a (2), then bb (4)
	assert.Equal(t, []string{"c", "dddd"}, order(c))
	assert.Equal(t, 7, c.actualSize)
	assert.False(t, c.Contains("a"))
	assert.False(t, c.Contains("bb"))
}

func TestScenarioOversizedEntryFailsAndLeavesCacheEmpty(t *testing.T) {
	c := New(4)

	ok := c.Put("key", "val") // size 6 > 4
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.actualSize)
}

func TestScenarioGetPromotesAndEvictionSparesRecentlyRead(t *testing.T) {
	// max_size=5 rather than the spec's literal 8: with single-character
	// keys and values (size 2 each) the three entries in this scenario
	// only ever total 6 bytes, which an 8-byte budget never needs to
	// evict to satisfy. A smaller budget reproduces the scenario's actual
	// claim (promoting "a" shields it; "b" is evicted instead) without
	// asserting an eviction the stated formula would never trigger.
	c := New(5)

	require.True(t, c.Put("a", "1"))
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"a"}, order(c))

	require.True(t, c.Put("b", "2"))
	_, ok = c.Get("a") // promotes a back to tail, ahead of b
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, order(c))

	require.True(t, c.Put("c", "3")) // must evict b (head), not a
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("a"))
	assert.True(t, c.Contains("c"))
}

func TestPutThenGetRoundTrips(t *testing.T) {
	c := New(100)
	require.True(t, c.Put("k", "v"))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestPutTwiceKeepsLatestValue(t *testing.T) {
	c := New(100)
	require.True(t, c.Put("k", "v1"))
	require.True(t, c.Put("k", "v2"))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 1, c.Len())
}

func TestPutIfAbsentTwiceKeepsFirstValue(t *testing.T) {
	c := New(100)
	require.True(t, c.PutIfAbsent("k", "v1"))
	assert.False(t, c.PutIfAbsent("k", "v2"))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestDeleteThenGetReturnsFalse(t *testing.T) {
	c := New(100)
	require.True(t, c.Put("k", "v"))
	require.True(t, c.Delete("k"))
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Contains("k"))
}

func TestDeleteMissingKeyReturnsFalse(t *testing.T) {
	c := New(100)
	assert.False(t, c.Delete("nope"))
}

func TestSetFailsOnMissingKey(t *testing.T) {
	c := New(100)
	assert.False(t, c.Set("k", "v"))
	assert.Equal(t, 0, c.Len())
}

func TestSetReplacesAndPromotesExistingKey(t *testing.T) {
	c := New(100)
	require.True(t, c.Put("a", "1"))
	require.True(t, c.Put("b", "2"))
	require.True(t, c.Set("a", "11"))
	assert.Equal(t, []string{"b", "a"}, order(c))
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "11", v)
}

func TestGetMissingKeyReturnsFalse(t *testing.T) {
	c := New(100)
	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestPutRejectsOversizedReplacementWithoutChangingState(t *testing.T) {
	c := New(4)
	require.True(t, c.Put("ab", "cd")) // size 4, fills budget exactly

	ok := c.Put("ab", "cdcdcd") // would need size 8 > 4, larger than budget itself
	assert.False(t, ok)

	v, got := c.Get("ab")
	require.True(t, got)
	assert.Equal(t, "cd", v)
	assert.Equal(t, 4, c.actualSize)
}

func TestActualSizeTracksLiveEntriesExactly(t *testing.T) {
	c := New(50)
	require.True(t, c.Put("a", "1"))
	require.True(t, c.Put("bb", "22"))
	assert.Equal(t, 1+1+2+2, c.actualSize)

	require.True(t, c.Delete("a"))
	assert.Equal(t, 2+2, c.actualSize)
}

func TestFreedNodeSlotsAreReusedRatherThanGrowingUnbounded(t *testing.T) {
	c := New(4)
	for i := 0; i < 50; i++ {
		require.True(t, c.Put("k", "v"))
		require.True(t, c.Delete("k"))
	}
	assert.LessOrEqual(t, len(c.nodes), 2)
}

func TestLenReflectsLiveEntryCount(t *testing.T) {
	c := New(100)
	assert.Equal(t, 0, c.Len())
	require.True(t, c.Put("a", "1"))
	require.True(t, c.Put("b", "2"))
	assert.Equal(t, 2, c.Len())
	require.True(t, c.Delete("a"))
	assert.Equal(t, 1, c.Len())
}
