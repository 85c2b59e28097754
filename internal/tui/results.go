package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/ordersim/internal/order"
)

// barWidth is the width of the per-order progress bar.
const barWidth = 20

// renderResults draws the store snapshot, newest first, starting at offset.
func renderResults(results []order.ProcessingResult, offset, width, height int) string {
	inner := max(height-2, 1)
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Orders (%d)", len(results))),
		columnHeadStyle.Render(fmt.Sprintf("%-24s %-11s %-8s %-*s %4s %-10s %4s %6s",
			"ID", "Type", "Priority", barWidth, "Progress", "", "Status", "Disc", "Time")),
	}
	if len(results) == 0 {
		lines = append(lines, dimStyle.Render("No orders. Press b to run a batch."))
	}

	visible := inner - len(lines)
	for i := offset; i < len(results) && visible > 0; i++ {
		lines = append(lines, renderRow(results[i]))
		visible--
	}

	style := panelStyle.Height(inner)
	if width > 2 {
		style = style.Width(width - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func renderRow(r order.ProcessingResult) string {
	timeCell := "-"
	if r.ProcessingTime != "" {
		timeCell = r.ProcessingTime + "s"
	}
	return fmt.Sprintf("%-24s %-11s %-8s %s %3d%% %s %3d%% %6s",
		truncate(r.OrderID, 24), r.Type, r.Priority,
		renderBar(r.Progress, barWidth), r.Progress,
		statusStyle(r.Status).Render(fmt.Sprintf("%-10s", r.Status)),
		r.Discount, timeCell)
}

// renderBar draws a percent bar of the given width.
func renderBar(percent, width int) string {
	filled := min(max(percent, 0), 100) * width / 100
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// truncate shortens s to maxLen runes, marking the cut with an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
