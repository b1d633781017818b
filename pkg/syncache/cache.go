// Package syncache holds an in-memory copy of a remote collection, merged by id.
//
// Writes from the local process and pushes from the database both go through
// Upsert; an item replaces the cached one only when its version is not older,
// so a late push for an earlier write cannot roll back a newer value.
package syncache

import (
	"slices"
	"sync"
)

type EventKind string

const (
	EventUpserted EventKind = "upserted"
	EventRemoved  EventKind = "removed"
	EventReplaced EventKind = "replaced"
)

// Event describes one change to the cache. Item is the zero value for
// EventRemoved and EventReplaced.
type Event[T any] struct {
	Kind EventKind
	ID   string
	Item T
}

type Keys[T any] struct {
	ID      func(T) string
	Version func(T) int64
	// Order sorts List output. Ties are broken by id.
	Order func(a, b T) int
}

type Cache[T any] struct {
	keys Keys[T]

	mu         sync.RWMutex
	items      map[string]T
	sorted     []T
	sortedGen  uint64
	generation uint64
	loaded     bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event[T])
}

func New[T any](keys Keys[T]) *Cache[T] {
	return &Cache[T]{
		keys:  keys,
		items: make(map[string]T),
		subs:  make(map[int]func(Event[T])),
	}
}

// Upsert stores item unless the cached copy has a higher version.
// It reports whether the cache changed.
func (c *Cache[T]) Upsert(item T) bool {
	id := c.keys.ID(item)

	c.mu.Lock()
	if cur, ok := c.items[id]; ok && c.keys.Version(cur) > c.keys.Version(item) {
		c.mu.Unlock()
		return false
	}
	c.items[id] = item
	c.generation++
	c.mu.Unlock()

	c.publish(Event[T]{Kind: EventUpserted, ID: id, Item: item})
	return true
}

func (c *Cache[T]) Remove(id string) bool {
	c.mu.Lock()
	if _, ok := c.items[id]; !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.items, id)
	c.generation++
	c.mu.Unlock()

	c.publish(Event[T]{Kind: EventRemoved, ID: id})
	return true
}

// Replace swaps in a full snapshot. Ids absent from the snapshot are dropped;
// cached items newer than their snapshot copy are kept.
func (c *Cache[T]) Replace(snapshot []T) {
	next := make(map[string]T, len(snapshot))

	c.mu.Lock()
	for _, item := range snapshot {
		id := c.keys.ID(item)
		if cur, ok := c.items[id]; ok && c.keys.Version(cur) > c.keys.Version(item) {
			next[id] = cur
			continue
		}
		next[id] = item
	}
	c.items = next
	c.generation++
	c.loaded = true
	c.mu.Unlock()

	c.publish(Event[T]{Kind: EventReplaced})
}

func (c *Cache[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

// List returns the cached items in Order. The returned slice is shared
// between callers until the next change and must not be modified.
func (c *Cache[T]) List() []T {
	c.mu.RLock()
	if c.sorted != nil && c.sortedGen == c.generation {
		out := c.sorted
		c.mu.RUnlock()
		return out
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sorted != nil && c.sortedGen == c.generation {
		return c.sorted
	}

	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b T) int {
		if c.keys.Order != nil {
			if n := c.keys.Order(a, b); n != 0 {
				return n
			}
		}
		ida, idb := c.keys.ID(a), c.keys.ID(b)
		switch {
		case ida < idb:
			return -1
		case ida > idb:
			return 1
		}
		return 0
	})
	c.sorted = out
	c.sortedGen = c.generation
	return out
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Generation increases on every change.
func (c *Cache[T]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Loaded reports whether a full snapshot has been applied at least once.
func (c *Cache[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Subscribe registers fn for every change. fn runs on the goroutine that made
// the change, after the cache lock is released.
func (c *Cache[T]) Subscribe(fn func(Event[T])) *Subscription {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return newSubscription(func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	})
}

func (c *Cache[T]) publish(evt Event[T]) {
	c.subMu.Lock()
	fns := make([]func(Event[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}
