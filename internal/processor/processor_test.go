package processor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/logging"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/progress"
	"github.com/agbru/ordersim/internal/simulator"
)

// fakeRunner reports the given percentages and then returns err (or a
// successful outcome).
type fakeRunner struct {
	percents []int
	err      error

	mu        sync.Mutex
	durations []time.Duration
}

func (f *fakeRunner) Run(ctx context.Context, d time.Duration, cb progress.Callback) (simulator.Outcome, error) {
	f.mu.Lock()
	f.durations = append(f.durations, d)
	f.mu.Unlock()
	for _, p := range f.percents {
		cb(p)
	}
	if f.err != nil {
		return simulator.Outcome{}, f.err
	}
	cb(100)
	return simulator.Outcome{
		ProcessingTime: order.FormatProcessingTime(d),
		CompletedAt:    time.Date(2024, 1, 1, 13, 4, 5, 0, time.Local),
	}, nil
}

func fastSimulator() *simulator.Simulator {
	return simulator.New(simulator.Options{TimeScale: 0.01})
}

func TestProcess_ConcreteScenario(t *testing.T) {
	t.Parallel()
	p := New(order.DefaultPolicy(), fastSimulator())

	var mu sync.Mutex
	var seen []int
	res, err := p.Process(context.Background(),
		order.Order{ID: "X1", Type: order.TypeFood, Priority: order.PriorityHigh, Quantity: 1},
		func(pct int) {
			mu.Lock()
			seen = append(seen, pct)
			mu.Unlock()
		})
	require.NoError(t, err)

	assert.Equal(t, 15, res.Discount)
	assert.Equal(t, "2.00", res.ProcessingTime)
	assert.Equal(t, order.StatusCompleted, res.Status)
	assert.Equal(t, 100, res.Progress)
	assert.Contains(t, res.Message, "X1")
	assert.Equal(t, 1, res.Quantity)
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}$`, res.Timestamp)
	assert.False(t, res.CompletedAt.IsZero())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, 100, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
}

func TestProcess_RejectsEmptyID(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	p := New(order.DefaultPolicy(), runner)

	called := false
	res, err := p.Process(context.Background(), order.Order{ID: ""}, func(int) { called = true })

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Equal(t, order.ProcessingResult{}, res, "no result may be produced")
	assert.False(t, called)
	assert.Empty(t, runner.durations, "simulator must not run")
}

func TestProcess_ClassifiesByAttributes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		typ      order.Type
		priority order.Priority
		duration time.Duration
		discount int
		procTime string
	}{
		{order.TypeFood, order.PriorityMedium, 2 * time.Second, 10, "2.00"},
		{order.TypeElectronics, order.PriorityHigh, 5 * time.Second, 15, "5.00"},
		{order.TypeClothing, order.PriorityLow, 3 * time.Second, 5, "3.00"},
		{"toys", "whenever", time.Second, 0, "1.00"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			t.Parallel()
			runner := &fakeRunner{percents: []int{10, 50}}
			p := New(order.DefaultPolicy(), runner)
			res, err := p.Process(context.Background(), order.Order{ID: "A", Type: tt.typ, Priority: tt.priority}, nil)
			require.NoError(t, err)
			assert.Equal(t, []time.Duration{tt.duration}, runner.durations)
			assert.Equal(t, tt.discount, res.Discount)
			assert.Equal(t, tt.procTime, res.ProcessingTime)
			assert.Equal(t, "13:04:05", res.Timestamp)
		})
	}
}

func TestProcess_SimulatorFailure(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	runner := &fakeRunner{percents: []int{10, 40}, err: apperrors.ErrSchedulerStalled}
	p := New(order.DefaultPolicy(), runner, WithLogger(logging.NewLogger(&logs, "processor")))

	res, err := p.Process(context.Background(), order.Order{ID: "S1", Type: order.TypeFood}, nil)
	require.Error(t, err)

	var jobErr apperrors.JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "S1", jobErr.OrderID)
	assert.ErrorIs(t, err, apperrors.ErrSchedulerStalled)

	assert.Equal(t, order.StatusFailed, res.Status)
	assert.Equal(t, 40, res.Progress)
	assert.Equal(t, "S1", res.OrderID)
	assert.Contains(t, res.Error, "stalled")
	assert.True(t, res.Terminal())
	assert.True(t, strings.Contains(logs.String(), "order failed"))
}

func TestProcess_JobTimeout(t *testing.T) {
	t.Parallel()
	p := New(order.DefaultPolicy(), simulator.New(simulator.Options{TimeScale: 0.1}),
		WithJobTimeout(20*time.Millisecond))

	res, err := p.Process(context.Background(), order.Order{ID: "T1", Type: order.TypeElectronics}, nil)
	require.Error(t, err)

	var timeoutErr apperrors.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 20*time.Millisecond, timeoutErr.Limit)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, order.StatusFailed, res.Status)
	assert.Less(t, res.Progress, 100)
}

func TestProcess_ParentCancellation(t *testing.T) {
	t.Parallel()
	p := New(order.DefaultPolicy(), fastSimulator())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Process(ctx, order.Order{ID: "C1", Type: order.TypeClothing}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, order.StatusFailed, res.Status)
}

func TestProcess_ConcurrentJobs(t *testing.T) {
	t.Parallel()
	p := New(order.DefaultPolicy(), fastSimulator())

	var wg sync.WaitGroup
	results := make([]order.ProcessingResult, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Process(context.Background(), order.Order{ID: string(rune('A' + i)), Type: order.TypeFood}, nil)
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	for i, r := range results {
		assert.Equal(t, string(rune('A'+i)), r.OrderID)
		assert.Equal(t, order.StatusCompleted, r.Status)
	}
}
