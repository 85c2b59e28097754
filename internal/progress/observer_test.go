package progress

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/agbru/ordersim/internal/logging"
	"github.com/rs/zerolog"
)

// countingObserver tracks the number of Update calls using an atomic counter,
// making it safe for concurrent use.
type countingObserver struct {
	count atomic.Int64
}

func (o *countingObserver) Update(Update) {
	o.count.Add(1)
}

func TestFreezeSnapshotImmutability(t *testing.T) {
	subject := NewSubject()
	obs1 := &countingObserver{}
	subject.Register(obs1)

	callback := subject.Freeze(0, "A")

	obs2 := &countingObserver{}
	subject.Register(obs2)

	callback(50)

	if obs1.count.Load() != 1 {
		t.Errorf("obs1 should have count 1, got %d", obs1.count.Load())
	}
	if obs2.count.Load() != 0 {
		t.Errorf("obs2 should have count 0, got %d", obs2.count.Load())
	}
}

func TestFreezeTagsUpdates(t *testing.T) {
	subject := NewSubject()
	var got Update
	subject.Register(ObserverFunc(func(u Update) { got = u }))

	subject.Freeze(2, "E-1")(40)

	want := Update{Index: 2, OrderID: "E-1", Percent: 40}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRegisterReturnsUnregister(t *testing.T) {
	subject := NewSubject()
	obs := &countingObserver{}
	unregister := subject.Register(ObserverFunc(obs.Update))
	subject.Register(nil)

	subject.Freeze(0, "A")(10)
	unregister()
	unregister()
	subject.Freeze(0, "A")(20)

	if n := len(subject.observers); n != 0 {
		t.Errorf("expected 0 observers after unregister, got %d", n)
	}
	if obs.count.Load() != 1 {
		t.Errorf("expected 1 notification, got %d", obs.count.Load())
	}
}

// TestFreezeConcurrentRegister should be run with -race.
func TestFreezeConcurrentRegister(t *testing.T) {
	subject := NewSubject()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unregister := subject.Register(&countingObserver{})
			if i%2 == 0 {
				unregister()
			}
		}()
	}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			subject.Freeze(idx, "X")(50)
		}(i)
	}
	wg.Wait()
}

func TestMultipleFrozenCallbacksConcurrent(t *testing.T) {
	subject := NewSubject()
	obs := &countingObserver{}
	subject.Register(obs)

	callbacks := make([]Callback, 10)
	for i := range callbacks {
		callbacks[i] = subject.Freeze(i, "X")
	}

	var wg sync.WaitGroup
	for _, cb := range callbacks {
		wg.Add(1)
		go func(fn Callback) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				fn(j / 10)
			}
		}(cb)
	}
	wg.Wait()

	if want := int64(10 * 1000); obs.count.Load() != want {
		t.Errorf("expected %d updates, got %d", want, obs.count.Load())
	}
}

func TestChannelObserver(t *testing.T) {
	t.Parallel()
	ch := make(chan Update, 1)
	obs := NewChannelObserver(ch)

	obs.Update(Update{OrderID: "A", Percent: 10})
	obs.Update(Update{OrderID: "A", Percent: 20}) // dropped, channel full

	if u := <-ch; u.Percent != 10 {
		t.Fatalf("expected first update, got %+v", u)
	}

	done := make(chan struct{})
	go func() {
		obs.Update(Update{OrderID: "A", Percent: 100})
		obs.Update(Update{OrderID: "B", Percent: 100})
		close(done)
	}()
	if u := <-ch; !u.Done() || u.OrderID != "A" {
		t.Errorf("expected terminal update for A, got %+v", u)
	}
	if u := <-ch; !u.Done() || u.OrderID != "B" {
		t.Errorf("expected terminal update for B, got %+v", u)
	}
	<-done
}

func TestLoggingObserver(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))
	obs := NewLoggingObserver(logger, 50)

	for _, p := range []int{0, 10, 49, 50, 60, 100, 100} {
		obs.Update(Update{OrderID: "A", Percent: p})
	}

	if n := strings.Count(buf.String(), "order progress"); n != 3 {
		t.Errorf("expected 3 entries (0, 50, 100), got %d: %s", n, buf.String())
	}
}

