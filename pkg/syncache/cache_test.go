package syncache

import (
	"cmp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	id      string
	version int64
	created int
	label   string
}

func newDocCache() *Cache[doc] {
	return New(Keys[doc]{
		ID:      func(d doc) string { return d.id },
		Version: func(d doc) int64 { return d.version },
		Order:   func(a, b doc) int { return cmp.Compare(b.created, a.created) },
	})
}

func TestUpsertLastWriteWins(t *testing.T) {
	c := newDocCache()

	require.True(t, c.Upsert(doc{id: "a", version: 2, label: "optimistic"}))
	require.False(t, c.Upsert(doc{id: "a", version: 1, label: "stale push"}))

	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "optimistic", got.label)

	require.True(t, c.Upsert(doc{id: "a", version: 2, label: "authoritative"}))
	got, _ = c.Get("a")
	require.Equal(t, "authoritative", got.label)
	require.Equal(t, 1, c.Len())
}

func TestReplaceKeepsNewerAndDropsMissing(t *testing.T) {
	c := newDocCache()
	c.Upsert(doc{id: "a", version: 5, label: "new"})
	c.Upsert(doc{id: "b", version: 1})

	c.Replace([]doc{{id: "a", version: 4, label: "old"}, {id: "c", version: 1}})

	a, _ := c.Get("a")
	assert.Equal(t, "new", a.label)
	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.True(t, c.Loaded())
}

func TestListOrder(t *testing.T) {
	c := newDocCache()
	c.Upsert(doc{id: "b", created: 1})
	c.Upsert(doc{id: "a", created: 1})
	c.Upsert(doc{id: "c", created: 3})

	var ids []string
	for _, d := range c.List() {
		ids = append(ids, d.id)
	}
	require.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestGenerationAdvances(t *testing.T) {
	c := newDocCache()
	g0 := c.Generation()

	c.Upsert(doc{id: "a", version: 1})
	g1 := c.Generation()
	require.Greater(t, g1, g0)

	c.Upsert(doc{id: "a", version: 0})
	require.Equal(t, g1, c.Generation())

	c.Remove("a")
	require.Greater(t, c.Generation(), g1)
	require.False(t, c.Remove("a"))
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	c := newDocCache()

	var mu sync.Mutex
	var kinds []EventKind
	sub := c.Subscribe(func(e Event[doc]) {
		mu.Lock()
		kinds = append(kinds, e.Kind)
		mu.Unlock()
	})

	c.Upsert(doc{id: "a", version: 1})
	c.Remove("a")
	c.Replace(nil)

	sub.Unsubscribe()
	sub.Unsubscribe()
	c.Upsert(doc{id: "b", version: 1})

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []EventKind{EventUpserted, EventRemoved, EventReplaced}, kinds)
}

func TestConcurrentUpserts(t *testing.T) {
	c := newDocCache()

	var wg sync.WaitGroup
	for v := int64(1); v <= 50; v++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			c.Upsert(doc{id: "a", version: v})
			_ = c.List()
		}(v)
	}
	wg.Wait()

	got, _ := c.Get("a")
	require.Equal(t, int64(50), got.version)
}
