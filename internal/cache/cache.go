// Package cache implements the engine's memoization service: an
// insert-if-absent memo for compiled artifacts keyed by structural hint
// identity, and a bounded least-recently-used cache for rendered diagnostic
// fragments whose total cardinality is unbounded over a long-running
// process.
//
// The memo guarantees at-most-one logical entry per key. Concurrent
// first-time computations for the same key may both run, but only the first
// stored result survives, so compute functions must be pure and idempotent:
// equal inputs must produce observably equal results.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// Memo is a process-lifetime insert-if-absent map. The zero value is ready
// to use. Entries are never updated in place and never evicted.
type Memo[K comparable, V any] struct {
	entries sync.Map
}

// GetOrCompute returns the cached value for a key, computing and storing it
// on first use. If two goroutines race on the same absent key, both may
// compute but all callers observe the single stored result.
func (m *Memo[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := m.entries.Load(key); ok {
		return v.(V), nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	actual, _ := m.entries.LoadOrStore(key, v)
	return actual.(V), nil
}

// Get returns the cached value for a key without computing.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	if v, ok := m.entries.Load(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

// Len counts stored entries.
func (m *Memo[K, V]) Len() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Fragments is a bounded LRU of rendered diagnostic fragments. Values are
// immutable strings, so eviction can never invalidate a fragment already
// held by an in-flight check: the holder keeps its own reference.
type Fragments struct {
	inner *lru.Cache[string, string]
}

// NewFragments builds a fragment cache, failing with a CacheError for a
// non-positive capacity.
func NewFragments(capacity int) (*Fragments, error) {
	if capacity <= 0 {
		return nil, &hinterr.CacheError{Detail: "fragment capacity must be positive"}
	}
	inner, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, &hinterr.CacheError{Detail: err.Error()}
	}
	return &Fragments{inner: inner}, nil
}

// GetOrRender returns the fragment for a key, rendering and caching it on
// miss. The least recently used fragment is evicted when the cache is full.
func (f *Fragments) GetOrRender(key string, render func() string) string {
	if s, ok := f.inner.Get(key); ok {
		return s
	}
	s := render()
	f.inner.Add(key, s)
	return s
}

// Len counts resident fragments.
func (f *Fragments) Len() int { return f.inner.Len() }
