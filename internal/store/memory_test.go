package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/ordersim/internal/order"
)

func pending(id string) order.ProcessingResult {
	return order.NewPending(order.Order{ID: id, Type: order.TypeFood, Quantity: 1, Priority: order.PriorityLow})
}

func ids(results []order.ProcessingResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.OrderID
	}
	return out
}

func TestMemoryStore_InsertAtFront(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.InsertAtFront(pending("A"))
	s.InsertAtFront(pending("B"))
	s.InsertAtFront(pending("C"))

	assert.Equal(t, []string{"C", "B", "A"}, ids(s.Snapshot()))
	assert.Equal(t, 3, s.Len())
}

func TestMemoryStore_InsertExistingRestartsInPlace(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.InsertAtFront(pending("A"))
	s.InsertAtFront(pending("B"))
	require.True(t, s.UpdateByID("A", SetProgress(100)))

	s.InsertAtFront(pending("A"))

	assert.Equal(t, []string{"B", "A"}, ids(s.Snapshot()))
	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, order.StatusProcessing, got.Status)
}

func TestMemoryStore_UpdateByID(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.InsertAtFront(pending("A"))
	s.InsertAtFront(pending("B"))

	assert.True(t, s.UpdateByID("A", SetProgress(40)))
	assert.False(t, s.UpdateByID("missing", SetProgress(40)))

	got, _ := s.Get("A")
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, []string{"B", "A"}, ids(s.Snapshot()), "update must not move entries")
}

func TestMemoryStore_UpdateIgnoresDecreasingProgress(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.InsertAtFront(pending("A"))
	require.True(t, s.UpdateByID("A", SetProgress(70)))

	assert.False(t, s.UpdateByID("A", SetProgress(30)))
	got, _ := s.Get("A")
	assert.Equal(t, 70, got.Progress)
}

func TestMemoryStore_ReplaceKeepsID(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.InsertAtFront(pending("A"))

	done := order.ProcessingResult{
		OrderID:        "other",
		Status:         order.StatusCompleted,
		Progress:       100,
		Discount:       15,
		ProcessingTime: "2.00",
		Message:        order.CompletionMessage("A"),
		CompletedAt:    time.Now(),
	}
	require.True(t, s.UpdateByID("A", Replace(done)))

	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, "A", got.OrderID)
	assert.Equal(t, order.StatusCompleted, got.Status)
	assert.Equal(t, "2.00", got.ProcessingTime)
	_, ok = s.Get("other")
	assert.False(t, ok)
}

func TestMemoryStore_Clear(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.InsertAtFront(pending("A"))
	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot())
	_, ok := s.Get("A")
	assert.False(t, ok)
	assert.False(t, s.UpdateByID("A", SetProgress(10)))
}

func TestMemoryStore_SnapshotIsCopy(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.InsertAtFront(pending("A"))

	snap := s.Snapshot()
	snap[0].Progress = 99

	got, _ := s.Get("A")
	assert.Equal(t, 0, got.Progress)
}

func TestMemoryStore_Watch(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ch, stop := s.Watch()

	s.InsertAtFront(pending("A"))
	s.UpdateByID("A", SetProgress(10))
	s.UpdateByID("A", SetProgress(20))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("watcher not signalled")
	}
	select {
	case <-ch:
		t.Fatal("signals should be coalesced into one pending value")
	default:
	}

	stop()
	stop()
	s.Clear()
	select {
	case <-ch:
		t.Fatal("released watcher must not be signalled")
	default:
	}
}

// TestMemoryStore_ConcurrentDisjointUpdates should be run with -race.
func TestMemoryStore_ConcurrentDisjointUpdates(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	const jobs = 20

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("J-%02d", i)
			s.InsertAtFront(pending(id))
			for p := 1; p <= 100; p++ {
				s.UpdateByID(id, SetProgress(p))
				if p%25 == 0 {
					_ = s.Snapshot()
				}
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap, jobs)
	seen := make(map[string]bool)
	for _, r := range snap {
		assert.False(t, seen[r.OrderID], "duplicate entry %s", r.OrderID)
		seen[r.OrderID] = true
		assert.Equal(t, 100, r.Progress, "entry %s lost updates", r.OrderID)
	}
}
