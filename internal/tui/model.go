// Package tui implements the interactive dashboard: a live view of the result
// store with per-order progress bars, run statistics and key bindings to
// start a batch or a comparison.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/format"
	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/store"
	"github.com/agbru/ordersim/internal/sysmon"
)

// Layout constants for the dashboard.
const (
	headerHeight        = 1
	footerHeight        = 3
	minBodyHeight       = 6
	ResultsWidthPercent = 70
	ActivitySamples     = 48
	refreshInterval     = 250 * time.Millisecond
	sampleInterval      = time.Second
)

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// bodyHeight returns the available height for the main body panels.
func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

// resultsWidth returns the width allocated to the results panel.
func (l LayoutManager) resultsWidth() int {
	return l.width * ResultsWidthPercent / 100
}

// statsWidth returns the width allocated to the stats panel.
func (l LayoutManager) statsWidth() int {
	return l.width - l.resultsWidth()
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header HeaderModel
	stats  StatsModel
	keymap KeyMap
	help   help.Model

	LayoutManager

	ctx      context.Context
	cancel   context.CancelFunc
	orch     *orchestration.Orchestrator
	sampler  sysmon.Sampler
	changes  <-chan struct{}
	stopWait func()

	results  []order.ProcessingResult
	offset   int
	running  string
	avg      float64
	eta      time.Duration
	activity *RingBuffer
	notice   string
	exitCode int
}

// NewModel creates a dashboard driving orch. The model follows the store
// through store.Watcher when the store supports it, and through periodic
// refreshes otherwise.
func NewModel(parentCtx context.Context, orch *orchestration.Orchestrator, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	m := Model{
		header:   NewHeaderModel(version),
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		ctx:      ctx,
		cancel:   cancel,
		orch:     orch,
		sampler:  sysmon.HostSampler{},
		stopWait: func() {},
		activity: NewRingBuffer(ActivitySamples),
		exitCode: apperrors.ExitSuccess,
	}
	if w, ok := orch.Store().(store.Watcher); ok {
		m.changes, m.stopWait = w.Watch()
	}
	m.refresh()
	return m
}

// Close releases the context and the store subscription.
func (m Model) Close() {
	m.cancel()
	m.stopWait()
}

// ExitCode returns the exit code of the last run.
func (m Model) ExitCode() int { return m.exitCode }

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		sampleCmd(m.sampler),
		waitForChangeCmd(m.ctx, m.changes),
		watchContextCmd(m.ctx),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(m.width)
		m.help.Width = m.width
		m.stats.SetSize(m.statsWidth(), m.bodyHeight())
		return m, nil

	case StoreChangedMsg:
		m.refresh()
		return m, waitForChangeCmd(m.ctx, m.changes)

	case TickMsg:
		m.refresh()
		if m.running != "" {
			m.activity.Push(m.avg * 100)
		}
		return m, tickCmd()

	case SysStatsMsg:
		m.stats.SetSystem(sysmon.Stats(msg))
		return m, sampleCmd(m.sampler)

	case ProgressMsg:
		m.avg = msg.AverageProgress
		m.eta = msg.ETA
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case RunFinishedMsg:
		m.finishRun(msg)
		return m, nil

	case ContextCancelledMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Batch):
		return m.startRun("batch", func(ctx context.Context, o *orchestration.Orchestrator) RunFinishedMsg {
			report, err := o.ProcessBatchConcurrent(ctx, orchestration.DemoBatch(orchestration.BatchPrefix, time.Now()))
			return RunFinishedMsg{Report: report, Err: err}
		})

	case key.Matches(msg, m.keymap.Compare):
		return m.startRun("compare", func(ctx context.Context, o *orchestration.Orchestrator) RunFinishedMsg {
			cmp, err := o.CompareSequentialVsConcurrent(ctx, orchestration.DemoBatch(orchestration.ComparePrefix, time.Now()))
			return RunFinishedMsg{Comparison: &cmp, Err: err}
		})

	case key.Matches(msg, m.keymap.Clear):
		if m.running != "" {
			m.notice = "cannot clear while " + m.running + " is running"
			return m, nil
		}
		m.orch.Store().Clear()
		m.notice = "results cleared"
		m.offset = 0
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		m.offset = max(m.offset-1, 0)
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		m.offset = min(m.offset+1, max(len(m.results)-1, 0))
		return m, nil
	}

	return m, nil
}

// startRun launches fn in a command unless a run is already active.
func (m Model) startRun(label string, fn func(context.Context, *orchestration.Orchestrator) RunFinishedMsg) (tea.Model, tea.Cmd) {
	if m.running != "" {
		m.notice = m.running + " already running"
		return m, nil
	}
	m.running = label
	m.avg, m.eta = 0, 0
	m.activity.Reset()
	m.notice = ""
	m.header.SetActivity(label)

	ctx, orch := m.ctx, m.orch
	return m, func() tea.Msg {
		start := time.Now()
		msg := fn(ctx, orch)
		msg.Label = label
		msg.Elapsed = time.Since(start)
		return msg
	}
}

func (m *Model) finishRun(msg RunFinishedMsg) {
	m.running = ""
	m.avg = 1
	m.header.SetActivity("")
	m.exitCode = apperrors.ExitCodeFor(msg.Err)

	if msg.Comparison != nil {
		m.stats.SetLastRun(msg.Label, msg.Elapsed, msg.Comparison.Speedup())
		m.notice = fmt.Sprintf("compare: sequential %s, concurrent %s, speedup %s",
			format.FormatExecutionDuration(msg.Comparison.Sequential.Elapsed),
			format.FormatExecutionDuration(msg.Comparison.Concurrent.Elapsed),
			format.FormatSpeedup(msg.Comparison.Speedup()))
	} else {
		m.stats.SetLastRun(msg.Label, msg.Report.Elapsed, 0)
		m.notice = fmt.Sprintf("%s: %d completed, %d failed in %s",
			msg.Label, msg.Report.Completed(), msg.Report.Failed,
			format.FormatExecutionDuration(msg.Report.Elapsed))
	}
	if msg.Err != nil {
		m.notice += " (" + msg.Err.Error() + ")"
	}
	m.refresh()
}

// refresh reloads the store snapshot.
func (m *Model) refresh() {
	m.results = m.orch.Store().Snapshot()
	m.stats.UpdateResults(m.results)
	if m.offset >= len(m.results) {
		m.offset = max(len(m.results)-1, 0)
	}
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		renderResults(m.results, m.offset, m.resultsWidth(), m.bodyHeight()),
		m.stats.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footerView())
}

func (m Model) footerView() string {
	line := dimStyle.Render("idle")
	if m.running != "" {
		line = accentStyle.Render(format.FormatProgressBarWithETA(m.avg, m.eta, 30)) + " " +
			sparklineStyle.Render(RenderSparkline(m.activity.Slice()))
	}
	notice := ""
	if m.notice != "" {
		notice = dimStyle.Render(m.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, notice, m.help.View(m.keymap))
}

// tickCmd returns a command that sends a TickMsg after refreshInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleCmd returns a command that samples resource usage after
// sampleInterval. Sampling runs in the command, off the update loop.
func sampleCmd(sampler sysmon.Sampler) tea.Cmd {
	return tea.Tick(sampleInterval, func(time.Time) tea.Msg {
		return SysStatsMsg(sampler.Sample())
	})
}

// Run is the public entry point for the dashboard. newOrchestrator receives
// the reporter forwarding progress into the program. It returns the exit
// code of the last run.
func Run(ctx context.Context, newOrchestrator func(orchestration.ProgressReporter) *orchestration.Orchestrator, version string) int {
	// Rebuild styles from the theme chosen by the flags.
	initTUIStyles()

	ref := &programRef{}
	model := NewModel(ctx, newOrchestrator(&TUIProgressReporter{ref: ref}), version)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	// Inject the program reference before running so bridge goroutines can Send.
	ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}
