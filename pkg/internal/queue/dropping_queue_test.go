package queue

import "testing"

// TestDropping_EvictsOldest verifies overflow drops the oldest item
func TestDropping_EvictsOldest(t *testing.T) {
	q := NewDropping(2)

	q.Push(1)
	q.Push(2)
	if ok := q.Push(3); ok {
		t.Error("Push on full queue reported no eviction")
	}

	if got := <-q.Chan(); got != 2 {
		t.Errorf("first item = %v, want 2", got)
	}
	if got := <-q.Chan(); got != 3 {
		t.Errorf("second item = %v, want 3", got)
	}
	if q.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", q.Dropped())
	}
}

// TestDropping_FIFO verifies order without overflow
func TestDropping_FIFO(t *testing.T) {
	q := NewDropping(4)
	for i := 0; i < 4; i++ {
		if ok := q.Push(i); !ok {
			t.Fatalf("unexpected eviction at %d", i)
		}
	}
	if q.Len() != 4 {
		t.Fatalf("Len = %d, want 4", q.Len())
	}
	for i := 0; i < 4; i++ {
		if got := <-q.Chan(); got != i {
			t.Errorf("item %d = %v", i, got)
		}
	}
}
