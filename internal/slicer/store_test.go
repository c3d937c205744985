package slicer

import (
	"fmt"
	"testing"
)

func testSlice(i int) *Slice {
	return &Slice{
		ID:       fmt.Sprintf("test-%d", i),
		Samples:  []float64{0.1, 0.2},
		Category: Noise,
	}
}

func TestStoreCapacityFIFO(t *testing.T) {
	const capacity = 4
	st := NewStore(capacity)

	var evicted []*Slice
	for i := 0; i < capacity+3; i++ {
		evicted = append(evicted, st.Add(testSlice(i))...)
	}

	if st.Len() != capacity {
		t.Fatalf("expected %d stored, got %d", capacity, st.Len())
	}

	// The survivors are the most recently inserted, in order.
	all := st.All()
	for i, s := range all {
		want := fmt.Sprintf("test-%d", i+3)
		if s.ID != want {
			t.Errorf("slot %d: expected %s, got %s", i, want, s.ID)
		}
	}

	// The oldest three were evicted, oldest first.
	if len(evicted) != 3 {
		t.Fatalf("expected 3 evictions, got %d", len(evicted))
	}
	for i, s := range evicted {
		want := fmt.Sprintf("test-%d", i)
		if s.ID != want {
			t.Errorf("eviction %d: expected %s, got %s", i, want, s.ID)
		}
	}
}

func TestStoreAgingMonotonic(t *testing.T) {
	st := NewStore(8)
	s := testSlice(0)
	st.Add(s)

	if s.Age() != 0 {
		t.Fatalf("new slice age: expected 0, got %d", s.Age())
	}
	const ticks = 37
	for i := 0; i < ticks; i++ {
		st.TickAge()
		if s.Age() != i+1 {
			t.Fatalf("after tick %d: expected age %d, got %d", i+1, i+1, s.Age())
		}
	}
}

func TestStoreAgingSkipsEvicted(t *testing.T) {
	st := NewStore(1)
	old := testSlice(0)
	st.Add(old)
	st.Add(testSlice(1)) // evicts old

	st.TickAge()
	if old.Age() != 0 {
		t.Errorf("evicted slice should not age, got %d", old.Age())
	}
}

func TestStoreClear(t *testing.T) {
	st := NewStore(8)
	for i := 0; i < 5; i++ {
		st.Add(testSlice(i))
	}
	cleared := st.Clear()
	if len(cleared) != 5 {
		t.Errorf("expected 5 cleared, got %d", len(cleared))
	}
	if st.Len() != 0 {
		t.Errorf("expected empty store, got %d", st.Len())
	}
	// Clearing an empty store is a no-op.
	if cleared := st.Clear(); len(cleared) != 0 {
		t.Errorf("expected 0 cleared, got %d", len(cleared))
	}
}
