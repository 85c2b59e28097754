package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/ui"
)

// Style variables for the dashboard, rebuilt from the ui theme by
// initTUIStyles.
var (
	panelStyle        lipgloss.Style
	headerStyle       lipgloss.Style
	titleStyle        lipgloss.Style
	dimStyle          lipgloss.Style
	accentStyle       lipgloss.Style
	columnHeadStyle   lipgloss.Style
	completedStyle    lipgloss.Style
	processingStyle   lipgloss.Style
	failedStyle       lipgloss.Style
	barFilledStyle    lipgloss.Style
	barEmptyStyle     lipgloss.Style
	statLabelStyle    lipgloss.Style
	statValueStyle    lipgloss.Style
	statusIdleStyle   lipgloss.Style
	statusActiveStyle lipgloss.Style
	sparklineStyle    lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme. Run calls it
// again after the theme was chosen from the flags.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	dimStyle = lipgloss.NewStyle().Foreground(t.Dim)
	accentStyle = lipgloss.NewStyle().Foreground(t.Accent)
	columnHeadStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Dim)

	completedStyle = lipgloss.NewStyle().Foreground(t.Completed)
	processingStyle = lipgloss.NewStyle().Foreground(t.Processing)
	failedStyle = lipgloss.NewStyle().Foreground(t.Failed)

	barFilledStyle = lipgloss.NewStyle().Foreground(t.Accent)
	barEmptyStyle = lipgloss.NewStyle().Foreground(t.Dim)

	statLabelStyle = lipgloss.NewStyle().Foreground(t.Dim)
	statValueStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	statusIdleStyle = lipgloss.NewStyle().Foreground(t.Completed).Bold(true)
	statusActiveStyle = lipgloss.NewStyle().Foreground(t.Processing).Bold(true)

	sparklineStyle = lipgloss.NewStyle().Foreground(t.Accent)
}

// statusStyle returns the style of a result status.
func statusStyle(s order.Status) lipgloss.Style {
	switch s {
	case order.StatusCompleted:
		return completedStyle
	case order.StatusFailed:
		return failedStyle
	default:
		return processingStyle
	}
}
