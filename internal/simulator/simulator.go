// Package simulator runs the synthetic workload of one order: it advances in
// fixed steps, reports the share of the duration that has elapsed and
// terminates exactly once with a completion outcome.
package simulator

import (
	"context"
	"time"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/progress"
)

const (
	// DefaultStep is the simulated time between two ticks.
	DefaultStep = 100 * time.Millisecond
	// DefaultStallSteps is the number of missed steps after which the
	// scheduler is considered stalled.
	DefaultStallSteps = 10
	// minWallStep bounds the ticker period when TimeScale is very small.
	minWallStep = time.Millisecond
	// minStallTimeout keeps heavily compressed runs from reporting a stall
	// on ordinary scheduler latency.
	minStallTimeout = 250 * time.Millisecond
)

// Outcome is the terminal state of a successful run.
type Outcome struct {
	// ProcessingTime is the simulated duration in seconds, two decimals.
	ProcessingTime string
	// CompletedAt is the clock instant at which the run reached 100.
	CompletedAt time.Time
	// Elapsed is the wall time the run took on the simulator's clock.
	Elapsed time.Duration
	// Ticks is the number of ticks observed.
	Ticks int
}

// Options configures a Simulator.
type Options struct {
	// Step is the simulated time per tick. Zero means DefaultStep.
	Step time.Duration
	// TimeScale is the number of wall seconds per simulated second.
	// Zero means 1. It never changes the reported processing time.
	TimeScale float64
	// StallTimeout is the wall time without a tick after which Run fails
	// with ErrSchedulerStalled. Zero means DefaultStallSteps wall steps,
	// and never less than 250ms.
	StallTimeout time.Duration
	// Clock is the time source. Nil means the wall clock.
	Clock Clock
}

// Simulator drives synthetic workloads. It is stateless between runs and
// safe for concurrent use.
type Simulator struct {
	step         time.Duration
	scale        float64
	stallTimeout time.Duration
	clock        Clock
}

// New returns a Simulator with defaults filled in.
func New(opts Options) *Simulator {
	s := &Simulator{
		step:         opts.Step,
		scale:        opts.TimeScale,
		stallTimeout: opts.StallTimeout,
		clock:        opts.Clock,
	}
	if s.step <= 0 {
		s.step = DefaultStep
	}
	if s.scale <= 0 {
		s.scale = 1
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.stallTimeout <= 0 {
		s.stallTimeout = max(DefaultStallSteps*s.wallStep(), minStallTimeout)
	}
	return s
}

func (s *Simulator) scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * s.scale)
}

func (s *Simulator) wallStep() time.Duration {
	return max(s.scaled(s.step), minWallStep)
}

// Percent returns floor(min(elapsed/total, 1) * 100).
func Percent(elapsed, total time.Duration) int {
	if total <= 0 || elapsed >= total {
		return 100
	}
	if elapsed <= 0 {
		return 0
	}
	return int(int64(elapsed) * 100 / int64(total))
}

// Run simulates a workload of the given duration. onProgress receives a
// non-decreasing percentage on every tick; 100 is delivered exactly once,
// right before Run returns successfully.
//
// Elapsed time is read from the clock on every tick, so late or coalesced
// ticks shorten the sequence of reported values but never skip the terminal
// one. Run fails with ctx.Err() when ctx ends and with ErrSchedulerStalled
// when no tick arrives within the stall timeout before the work is done.
func (s *Simulator) Run(ctx context.Context, duration time.Duration, onProgress progress.Callback) (Outcome, error) {
	report := progress.Monotonic(onProgress)
	total := s.scaled(duration)
	start := s.clock.Now()

	if total <= 0 {
		report(100)
		return Outcome{
			ProcessingTime: order.FormatProcessingTime(duration),
			CompletedAt:    start,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	ticker := s.clock.NewTicker(s.wallStep())
	defer ticker.Stop()
	stall := s.clock.After(s.stallTimeout)

	ticks := 0
	finish := func(now time.Time, elapsed time.Duration) Outcome {
		report(100)
		return Outcome{
			ProcessingTime: order.FormatProcessingTime(duration),
			CompletedAt:    now,
			Elapsed:        elapsed,
			Ticks:          ticks,
		}
	}
	for {
		select {
		case <-ctx.Done():
			return Outcome{Ticks: ticks}, ctx.Err()
		case <-stall:
			// A late wake-up can make the stall timer and a pending tick ready
			// together; finished work still completes.
			now := s.clock.Now()
			if elapsed := now.Sub(start); elapsed >= total {
				return finish(now, elapsed), nil
			}
			return Outcome{Ticks: ticks}, apperrors.ErrSchedulerStalled
		case <-ticker.C():
			ticks++
			now := s.clock.Now()
			elapsed := now.Sub(start)
			if elapsed >= total {
				return finish(now, elapsed), nil
			}
			report(Percent(elapsed, total))
			stall = s.clock.After(s.stallTimeout)
		}
	}
}
