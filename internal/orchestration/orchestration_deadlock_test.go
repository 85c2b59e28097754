package orchestration

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/progress"
	"github.com/agbru/ordersim/internal/store"
)

// scriptedProcessor simulates various job behaviors for deadlock testing.
type scriptedProcessor struct {
	behavior map[string]string // order ID -> "instant", "slow", "error", "progress_flood"
	delay    time.Duration
}

func (s *scriptedProcessor) Process(ctx context.Context, o order.Order, cb progress.Callback) (order.ProcessingResult, error) {
	res := order.NewPending(o)
	fail := func(err error) (order.ProcessingResult, error) {
		res.Status = order.StatusFailed
		res.Error = err.Error()
		return res, err
	}

	switch s.behavior[o.ID] {
	case "slow":
		for i := 0; i < 100; i++ {
			select {
			case <-ctx.Done():
				return fail(ctx.Err())
			default:
			}
			cb(i)
			time.Sleep(s.delay)
		}
	case "error":
		cb(30)
		return fail(errors.New("simulated failure"))
	case "progress_flood":
		for i := 0; i < 10000; i++ {
			cb(i / 100)
		}
	}
	cb(100)
	res.Status = order.StatusCompleted
	res.Progress = 100
	return res, nil
}

// blockingReporter drains slowly, to exercise the buffered channel.
type blockingReporter struct{}

func (blockingReporter) DisplayProgress(wg *sync.WaitGroup, ch <-chan progress.Update, _ int, _ io.Writer) {
	defer wg.Done()
	for range ch {
		time.Sleep(10 * time.Microsecond)
	}
}

func TestOrchestrationNoDeadlock_MixedBehaviors(t *testing.T) {
	testCases := []struct {
		name     string
		behavior map[string]string
	}{
		{"all_instant", map[string]string{"a": "instant", "b": "instant", "c": "instant"}},
		{"mixed_instant_and_slow", map[string]string{"fast": "instant", "slow": "slow"}},
		{"mixed_with_errors", map[string]string{"ok": "instant", "err": "error"}},
		{"progress_flood", map[string]string{"flood1": "progress_flood", "flood2": "progress_flood"}},
		{"single_job", map[string]string{"solo": "instant"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var orders []order.Order
			for id := range tc.behavior {
				orders = append(orders, order.Order{ID: id})
			}
			orch := New(&scriptedProcessor{behavior: tc.behavior, delay: time.Millisecond},
				store.NewMemoryStore(), WithProgressReporter(blockingReporter{}, io.Discard))

			done := make(chan struct{})
			go func() {
				defer close(done)
				_, _ = orch.ProcessBatchConcurrent(ctx, orders)
				_, _ = orch.ProcessBatchSequential(ctx, orders)
			}()

			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Fatal("DEADLOCK: batch did not complete within timeout")
			}
		})
	}
}

func TestOrchestrationNoDeadlock_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	proc := &scriptedProcessor{
		behavior: map[string]string{"slow1": "slow", "slow2": "slow"},
		delay:    100 * time.Millisecond,
	}
	orch := New(proc, store.NewMemoryStore())

	done := make(chan error, 1)
	go func() {
		_, err := orch.ProcessBatchConcurrent(ctx, []order.Order{{ID: "slow1"}, {ID: "slow2"}})
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DEADLOCK after context cancellation")
	}
}

func TestOrchestrationNoDeadlock_SlowObserver(t *testing.T) {
	orch := New(&scriptedProcessor{behavior: map[string]string{"a": "progress_flood", "b": "progress_flood"}},
		store.NewMemoryStore())

	var mu sync.Mutex
	terminal := map[string]bool{}
	orch.Subscribe(progress.ObserverFunc(func(u progress.Update) {
		time.Sleep(time.Microsecond)
		if u.Done() {
			mu.Lock()
			terminal[u.OrderID] = true
			mu.Unlock()
		}
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = orch.ProcessBatchConcurrent(context.Background(), []order.Order{{ID: "a"}, {ID: "b"}})
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("DEADLOCK with a slow observer")
	}

	mu.Lock()
	defer mu.Unlock()
	if !terminal["a"] || !terminal["b"] {
		t.Errorf("observer missed a terminal update: %v", terminal)
	}
}
