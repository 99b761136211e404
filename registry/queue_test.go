package registry

import (
	"sync"
	"testing"
)

// TestActiveQueue_Concurrent covers spec §8 invariant 4 / scenario 4: two
// producers push disjoint id sets, four consumers drain until empty, and
// the multiset union of consumed ids equals the pushed set exactly once
// each.
func TestActiveQueue_Concurrent(t *testing.T) {
	q := newActiveQueue()

	producers := [][]GateID{
		{0, 2, 4, 6, 8},
		{1, 3, 5, 7, 9},
	}

	var wg sync.WaitGroup
	for _, ids := range producers {
		wg.Add(1)
		go func(ids []GateID) {
			defer wg.Done()
			for _, id := range ids {
				q.push(id)
			}
		}(ids)
	}
	wg.Wait() // quiescence: all pushes landed before draining.

	const consumers = 4
	results := make(chan GateID, 10)
	var cwg sync.WaitGroup
	for i := 0; i < consumers; i++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				id, ok := q.pop()
				if !ok {
					return
				}
				results <- id
			}
		}()
	}
	cwg.Wait()
	close(results)

	seen := make(map[GateID]int)
	for id := range results {
		seen[id]++
	}
	if len(seen) != 10 {
		t.Fatalf("got %d distinct ids, want 10: %v", len(seen), seen)
	}
	for id := GateID(0); id < 10; id++ {
		if seen[id] != 1 {
			t.Fatalf("id %d consumed %d times, want exactly 1", id, seen[id])
		}
	}
}

func TestActiveQueue_PopEmpty(t *testing.T) {
	q := newActiveQueue()
	if _, ok := q.pop(); ok {
		t.Fatal("pop on empty queue: ok = true, want false")
	}
}

func TestCore_PopActiveGate_Sentinel(t *testing.T) {
	c := New(0, nil, nil)
	if got := c.PopActiveGate(); got != NoGate {
		t.Fatalf("PopActiveGate on empty core: got %d, want NoGate", got)
	}
	c.AddToActiveQueue(7)
	if got := c.PopActiveGate(); got != 7 {
		t.Fatalf("PopActiveGate: got %d, want 7", got)
	}
}
