// Package progress defines the progress stream shared by the simulator, the
// orchestrator and the display layers.
//
// A job reports integer percentages through a Callback. The orchestrator
// turns those into Update values tagged with the job's batch index and order
// ID, and fans them out to registered observers.
package progress

// Update is one progress event of one job.
type Update struct {
	// Index is the position of the job in its batch.
	Index int
	// OrderID identifies the job.
	OrderID string
	// Percent is in [0, 100] and never decreases for a given job.
	Percent int
}

// Done reports whether the update is the job's terminal tick.
func (u Update) Done() bool { return u.Percent >= 100 }

// Fraction returns Percent as a value in [0, 1].
func (u Update) Fraction() float64 { return float64(u.Percent) / 100 }

// Callback receives the percentages of a single job.
type Callback func(percent int)

// Observer receives updates from every job of a run.
// Implementations must be safe for concurrent use: concurrent jobs notify
// from their own goroutines.
type Observer interface {
	Update(u Update)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(u Update)

// Update calls f(u).
func (f ObserverFunc) Update(u Update) { f(u) }

// Monotonic wraps cb so it never sees a value lower than one it already
// received, nor a value outside [0, 100]. It is not safe for concurrent use;
// each job owns its own wrapper.
func Monotonic(cb Callback) Callback {
	if cb == nil {
		return func(int) {}
	}
	last := -1
	return func(percent int) {
		percent = max(0, min(percent, 100))
		if percent < last {
			return
		}
		last = percent
		cb(percent)
	}
}
