package slicer

import "sync"

// Store is an insertion-ordered, capacity-bounded collection of recent
// slices. Eviction is capacity-driven only (FIFO); a slice's age feeds the
// playback volume curve but never triggers eviction itself.
type Store struct {
	mu       sync.Mutex
	capacity int
	slices   []*Slice
}

// NewStore creates a Store holding at most capacity slices.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{capacity: capacity}
}

// Add appends a slice and returns any slices evicted to stay within
// capacity, oldest first.
func (st *Store) Add(s *Slice) []*Slice {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.slices = append(st.slices, s)
	if len(st.slices) <= st.capacity {
		return nil
	}

	n := len(st.slices) - st.capacity
	evicted := make([]*Slice, n)
	copy(evicted, st.slices[:n])
	st.slices = append(st.slices[:0], st.slices[n:]...)
	return evicted
}

// TickAge increments every stored slice's age by one. The engine calls
// this once per second while live mode is on.
func (st *Store) TickAge() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.slices {
		s.bumpAge()
	}
}

// All returns a snapshot of the stored slices in insertion order.
func (st *Store) All() []*Slice {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*Slice, len(st.slices))
	copy(out, st.slices)
	return out
}

// Len returns the number of stored slices.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.slices)
}

// Clear removes all slices and returns them, oldest first. Playback loops
// for cleared slices keep running until their own lifetimes expire unless
// the caller stops them explicitly.
func (st *Store) Clear() []*Slice {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := st.slices
	st.slices = nil
	return out
}
