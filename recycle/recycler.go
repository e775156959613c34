package recycle

import "sync"

// Recycler hands out and reclaims storage slots.
type Recycler[T any] interface {
	// Acquire returns a previously released slot, or false if the caller
	// must allocate fresh storage.
	Acquire() (T, bool)
	// Release returns a slot to the pool.
	Release(v T)
}

// Stats tracks recycler traffic.
type Stats struct {
	Released uint64 // slots handed back
	Acquired uint64 // slots reused
	Misses   uint64 // Acquire calls that found the pool empty
	Dropped  uint64 // slots discarded because the pool was full
}

// FreeList is a LIFO free list. The most recently released slot is reused
// first, which keeps its storage warm in cache.
type FreeList[T any] struct {
	free     []T
	maxItems int
	stats    Stats
}

// NewFreeList creates a free list retaining at most maxItems slots.
// If maxItems <= 0 the list is unbounded.
func NewFreeList[T any](maxItems int) *FreeList[T] {
	return &FreeList[T]{maxItems: maxItems}
}

// Acquire implements Recycler.
func (l *FreeList[T]) Acquire() (T, bool) {
	n := len(l.free)
	if n == 0 {
		l.stats.Misses++
		var zero T
		return zero, false
	}
	v := l.free[n-1]
	var zero T
	l.free[n-1] = zero
	l.free = l.free[:n-1]
	l.stats.Acquired++
	return v, true
}

// Release implements Recycler.
func (l *FreeList[T]) Release(v T) {
	if l.maxItems > 0 && len(l.free) >= l.maxItems {
		l.stats.Dropped++
		return
	}
	l.free = append(l.free, v)
	l.stats.Released++
}

// Len returns the number of slots available for reuse.
func (l *FreeList[T]) Len() int {
	return len(l.free)
}

// Stats returns a snapshot of the traffic counters.
func (l *FreeList[T]) Stats() Stats {
	return l.stats
}

// Reset drops all retained slots and counters.
func (l *FreeList[T]) Reset() {
	clear(l.free)
	l.free = l.free[:0]
	l.stats = Stats{}
}

// Synchronized makes a Recycler safe for concurrent use.
type Synchronized[T any] struct {
	mu    sync.Mutex
	inner Recycler[T]
}

// NewSynchronized wraps r with a mutex.
func NewSynchronized[T any](r Recycler[T]) *Synchronized[T] {
	return &Synchronized[T]{inner: r}
}

// Acquire implements Recycler.
func (s *Synchronized[T]) Acquire() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Acquire()
}

// Release implements Recycler.
func (s *Synchronized[T]) Release(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Release(v)
}

// Noop never retains anything; every Acquire is a miss.
type Noop[T any] struct{}

// Acquire implements Recycler.
func (Noop[T]) Acquire() (T, bool) {
	var zero T
	return zero, false
}

// Release implements Recycler.
func (Noop[T]) Release(T) {}
