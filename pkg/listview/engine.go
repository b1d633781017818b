// Package listview derives a visible page from a cached collection.
//
// The pipeline runs in a fixed order: status filter, search filter, category
// filter, stable sort, paginate. It never mutates the input slice.
package listview

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"
)

// Compare orders two records by one field, in ascending direction.
type Compare[T any] func(a, b T) int

// Schema tells the pipeline how to read one entity type.
type Schema[T any] struct {
	// Search returns the fields matched by the search term.
	Search func(T) []string
	// Category returns the value compared against State.Category. Nil disables the filter.
	Category func(T) string
	// Active reports the record status. Nil disables the status filter.
	Active func(T) bool
	Sort   map[string]Compare[T]
}

func (s Schema[T]) Sortable(field string) bool {
	_, ok := s.Sort[field]
	return ok
}

func ByString[T any](get func(T) string) Compare[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}
}

// ByTime compares instants; a nil time sorts as the earliest.
func ByTime[T any](get func(T) *time.Time) Compare[T] {
	instant := func(t *time.Time) time.Time {
		if t == nil {
			return time.Time{}
		}
		return *t
	}
	return func(a, b T) int {
		return instant(get(a)).Compare(instant(get(b)))
	}
}

func ByInt[T any](get func(T) int64) Compare[T] {
	return func(a, b T) int {
		return cmp.Compare(get(a), get(b))
	}
}

// ByBool sorts false before true.
func ByBool[T any](get func(T) bool) Compare[T] {
	toInt := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return func(a, b T) int {
		return cmp.Compare(toInt(get(a)), toInt(get(b)))
	}
}

// Filter applies the status, search and category filters and sorts the result.
// An unknown SortBy keeps the input order.
func Filter[T any](items []T, schema Schema[T], st State) []T {
	st = st.Normalize()
	term := strings.ToLower(st.SearchTerm)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if !matchStatus(schema, item, st.Status) {
			continue
		}
		if term != "" && !matchSearch(schema, item, term) {
			continue
		}
		if schema.Category != nil && st.Category != CategoryAll && schema.Category(item) != st.Category {
			continue
		}
		out = append(out, item)
	}

	if compare, ok := schema.Sort[st.SortBy]; ok {
		desc := st.SortOrder == Desc
		slices.SortStableFunc(out, func(a, b T) int {
			if desc {
				return -compare(a, b)
			}
			return compare(a, b)
		})
	}
	return out
}

func matchStatus[T any](schema Schema[T], item T, status Status) bool {
	if schema.Active == nil {
		return true
	}
	switch status {
	case StatusActive:
		return schema.Active(item)
	case StatusInactive:
		return !schema.Active(item)
	}
	return true
}

func matchSearch[T any](schema Schema[T], item T, term string) bool {
	if schema.Search == nil {
		return true
	}
	for _, field := range schema.Search(item) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Apply runs the full pipeline.
func Apply[T any](items []T, schema Schema[T], st State) Page[T] {
	st = st.Normalize()
	return Paginate(Filter(items, schema, st), st.CurrentPage, st.ItemsPerPage)
}

// View memoises the filtered and sorted set per collection generation, so
// moving between pages re-slices the same membership.
type View[T any] struct {
	schema Schema[T]

	mu         sync.Mutex
	valid      bool
	generation uint64
	key        filterKey
	filtered   []T
}

func NewView[T any](schema Schema[T]) *View[T] {
	return &View[T]{schema: schema}
}

func (v *View[T]) Schema() Schema[T] {
	return v.schema
}

// Page returns the requested page. load is only called when the generation
// or the filter parameters changed since the previous call.
func (v *View[T]) Page(generation uint64, load func() []T, st State) Page[T] {
	st = st.Normalize()
	key := st.filterKey()

	v.mu.Lock()
	if !v.valid || v.generation != generation || v.key != key {
		v.filtered = Filter(load(), v.schema, st)
		v.generation = generation
		v.key = key
		v.valid = true
	}
	filtered := v.filtered
	v.mu.Unlock()

	return Paginate(filtered, st.CurrentPage, st.ItemsPerPage)
}
