package state

import "sync"

// Ring is a fixed-capacity circular buffer. Pushing into a full ring evicts the oldest entry.
// Safe for concurrent use; readers take a copy under a read lock.
type Ring[T any] struct {
	mu    sync.RWMutex
	items []T
	head  int // index of the oldest entry
	size  int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends v and returns true when an old entry was evicted.
func (r *Ring[T]) Push(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	capacity := len(r.items)
	if r.size < capacity {
		r.items[(r.head+r.size)%capacity] = v
		r.size++
		return false
	}
	r.items[r.head] = v
	r.head = (r.head + 1) % capacity
	return true
}

func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Snapshot returns the entries oldest first.
func (r *Ring[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}

// Last returns up to n of the newest entries, newest first.
func (r *Ring[T]) Last(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.size {
		n = r.size
	}
	if n < 0 {
		n = 0
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		idx := (r.head + r.size - 1 - i) % len(r.items)
		out[i] = r.items[idx]
	}
	return out
}

// AllEqual reports whether the ring is full and every entry equals the first.
func AllEqual[T comparable](r *Ring[T]) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.size == 0 || r.size < len(r.items) {
		return false
	}
	first := r.items[r.head]
	for i := 1; i < r.size; i++ {
		if r.items[(r.head+i)%len(r.items)] != first {
			return false
		}
	}
	return true
}

// PushUniform appends v and reports, under the same lock, whether the ring is now full
// of entries equal to v.
func PushUniform[T comparable](r *Ring[T], v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	capacity := len(r.items)
	if r.size < capacity {
		r.items[(r.head+r.size)%capacity] = v
		r.size++
	} else {
		r.items[r.head] = v
		r.head = (r.head + 1) % capacity
	}
	if r.size < capacity {
		return false
	}
	for i := 0; i < r.size; i++ {
		if r.items[(r.head+i)%capacity] != v {
			return false
		}
	}
	return true
}
