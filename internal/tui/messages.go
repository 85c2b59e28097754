package tui

import (
	"time"

	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/sysmon"
)

// TickMsg refreshes the header clock and the activity sparkline.
type TickMsg time.Time

// SysStatsMsg carries a resource usage sample.
type SysStatsMsg sysmon.Stats

// StoreChangedMsg signals that the result store was modified.
type StoreChangedMsg struct{}

// ProgressMsg carries one aggregated progress update of the running batch.
type ProgressMsg struct {
	Index           int
	OrderID         string
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg signals the end of a run's progress stream.
type ProgressDoneMsg struct{}

// RunFinishedMsg carries the outcome of a dashboard-triggered run. For
// comparisons Comparison is set, otherwise Report.
type RunFinishedMsg struct {
	Label      string
	Report     orchestration.BatchReport
	Comparison *orchestration.Comparison
	Err        error
	Elapsed    time.Duration
}

// ContextCancelledMsg signals that the session context ended.
type ContextCancelledMsg struct {
	Err error
}
