package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/ordersim/internal/format"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/sysmon"
)

// StatsModel summarizes the store and the last run.
type StatsModel struct {
	total       int
	processing  int
	completed   int
	failed      int
	avgDiscount float64
	lastRun     string
	lastElapsed time.Duration
	lastSpeedup float64
	sys         sysmon.Stats
	hasSys      bool
	width       int
	height      int
}

// SetSize updates dimensions.
func (s *StatsModel) SetSize(w, h int) {
	s.width = w
	s.height = h
}

// UpdateResults recomputes the counters from a store snapshot.
func (s *StatsModel) UpdateResults(results []order.ProcessingResult) {
	s.total = len(results)
	s.processing, s.completed, s.failed = 0, 0, 0
	discounts := 0
	for _, r := range results {
		switch r.Status {
		case order.StatusCompleted:
			s.completed++
		case order.StatusFailed:
			s.failed++
		default:
			s.processing++
		}
		discounts += r.Discount
	}
	s.avgDiscount = 0
	if s.total > 0 {
		s.avgDiscount = float64(discounts) / float64(s.total)
	}
}

// SetLastRun records the outcome of the latest run. speedup is zero for
// runs that are not comparisons.
func (s *StatsModel) SetLastRun(label string, elapsed time.Duration, speedup float64) {
	s.lastRun = label
	s.lastElapsed = elapsed
	s.lastSpeedup = speedup
}

// SetSystem records the latest resource sample.
func (s *StatsModel) SetSystem(st sysmon.Stats) {
	s.sys = st
	s.hasSys = true
}

// View renders the panel.
func (s StatsModel) View() string {
	lines := []string{
		titleStyle.Render("Stats"),
		statLine("Orders", fmt.Sprintf("%d", s.total)),
		statLine("Processing", fmt.Sprintf("%d", s.processing)),
		statLine("Completed", fmt.Sprintf("%d", s.completed)),
		statLine("Failed", fmt.Sprintf("%d", s.failed)),
		statLine("Avg discount", fmt.Sprintf("%.1f%%", s.avgDiscount)),
	}
	if s.lastRun != "" {
		lines = append(lines, "",
			statLine("Last run", s.lastRun),
			statLine("Elapsed", format.FormatExecutionDuration(s.lastElapsed)))
		if s.lastSpeedup > 0 {
			lines = append(lines, statLine("Speedup", format.FormatSpeedup(s.lastSpeedup)))
		}
	}

	if s.hasSys {
		lines = append(lines, "",
			statLine("CPU", fmt.Sprintf("%.1f%%", s.sys.CPUPercent)),
			statLine("Memory", fmt.Sprintf("%.1f%%", s.sys.MemPercent)),
			statLine("Heap", format.FormatBytes(s.sys.HeapAlloc)),
			statLine("Goroutines", fmt.Sprintf("%d", s.sys.Goroutines)))
	}

	style := panelStyle
	if s.width > 2 {
		style = style.Width(s.width - 2)
	}
	if s.height > 2 {
		style = style.Height(s.height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func statLine(label, value string) string {
	return statLabelStyle.Render(fmt.Sprintf("%-13s", label)) + statValueStyle.Render(value)
}
