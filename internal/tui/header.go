package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/ordersim/internal/format"
)

// HeaderModel renders the top bar: title, version, elapsed time and the
// current activity.
type HeaderModel struct {
	startTime time.Time
	version   string
	activity  string
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
	}
}

// SetActivity sets the label of the running operation, "" when idle.
func (h *HeaderModel) SetActivity(label string) {
	h.activity = label
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "Order Simulator"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := dimStyle.Render(" | ")
	elapsed := accentStyle.Render(fmt.Sprintf("Uptime: %s", format.FormatExecutionDuration(time.Since(h.startTime).Truncate(time.Second))))

	state := statusIdleStyle.Render("Idle")
	if h.activity != "" {
		state = statusActiveStyle.Render("Running " + h.activity)
	}

	left := titleStyle.Render(titleText) + pipe + elapsed + pipe + state
	gap := max(h.width-2-lipgloss.Width(left), 0)
	return headerStyle.Width(h.width).Render(left + spaces(gap))
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
