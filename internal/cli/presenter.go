package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/agbru/ordersim/internal/format"
	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/progress"
	"github.com/agbru/ordersim/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and a progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to the package-level DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numJobs int, out io.Writer) {
	DisplayProgress(wg, progressChan, numJobs, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter with
// colorized terminal output.
type CLIResultPresenter struct{}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

// PresentResult prints the detail card of one result.
func (CLIResultPresenter) PresentResult(r order.ProcessingResult, out io.Writer) {
	c := ui.Colors{}
	fmt.Fprintf(out, "\n%sOrder %s%s%s [%s/%s] x%d\n",
		c.Bold(), c.Blue(), r.OrderID, c.Reset(), r.Type, r.Priority, r.Quantity)
	fmt.Fprintf(out, "  Status:          %s\n", statusLabel(r))
	fmt.Fprintf(out, "  Discount:        %s%d%%%s\n", c.Magenta(), r.Discount, c.Reset())
	if r.ProcessingTime != "" {
		fmt.Fprintf(out, "  Processing time: %s%ss%s\n", c.Magenta(), r.ProcessingTime, c.Reset())
	}
	if r.Message != "" {
		fmt.Fprintf(out, "  Message:         %s\n", r.Message)
	}
	if r.Timestamp != "" {
		fmt.Fprintf(out, "  Timestamp:       %s%s%s\n", c.Gray(), r.Timestamp, c.Reset())
	}
}

// PresentReport prints the results table and the summary of one run.
func (CLIResultPresenter) PresentReport(report orchestration.BatchReport, out io.Writer) {
	c := ui.Colors{}
	fmt.Fprintf(out, "\n--- %s run %s%s%s ---\n", report.Mode, c.Gray(), report.RunID, c.Reset())
	DisplayResults(out, report.Results)
	fmt.Fprintf(out, "Elapsed: %s%s%s  Completed: %s%d%s  Failed: %s%d%s\n",
		c.Yellow(), format.FormatExecutionDuration(report.Elapsed), c.Reset(),
		c.Green(), report.Completed(), c.Reset(),
		failedColor(report.Failed), report.Failed, c.Reset())
}

// PresentComparison prints both phases and the speedup.
func (p CLIResultPresenter) PresentComparison(cmp orchestration.Comparison, out io.Writer) {
	c := ui.Colors{}
	p.PresentReport(cmp.Sequential, out)
	if cmp.Concurrent.RunID == "" {
		fmt.Fprintf(out, "%sConcurrent phase skipped.%s\n", c.Yellow(), c.Reset())
		return
	}
	p.PresentReport(cmp.Concurrent, out)

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	fmt.Fprintf(out, "Sequential: %s%s%s\n", c.Yellow(), format.FormatExecutionDuration(cmp.Sequential.Elapsed), c.Reset())
	fmt.Fprintf(out, "Concurrent: %s%s%s\n", c.Yellow(), format.FormatExecutionDuration(cmp.Concurrent.Elapsed), c.Reset())
	fmt.Fprintf(out, "Speedup:    %s%s%s\n", c.Green(), format.FormatSpeedup(cmp.Speedup()), c.Reset())
}

var resultColumns = []string{"Order", "Type", "Priority", "Status", "Progress", "Discount", "Time"}

// DisplayResults prints results as an aligned table, newest first when
// given a store snapshot. Padding is computed on the plain text so that
// color codes do not break alignment.
func DisplayResults(out io.Writer, results []order.ProcessingResult) {
	c := ui.Colors{}
	if len(results) == 0 {
		fmt.Fprintf(out, "%sNo orders.%s\n", c.Gray(), c.Reset())
		return
	}

	rows := make([][]string, len(results))
	widths := make([]int, len(resultColumns))
	for i, h := range resultColumns {
		widths[i] = len(h)
	}
	for i, r := range results {
		timeCell := "-"
		if r.ProcessingTime != "" {
			timeCell = r.ProcessingTime + "s"
		}
		rows[i] = []string{
			r.OrderID,
			string(r.Type),
			string(r.Priority),
			string(r.Status),
			fmt.Sprintf("%d%%", r.Progress),
			fmt.Sprintf("%d%%", r.Discount),
			timeCell,
		}
		for j, cell := range rows[i] {
			widths[j] = max(widths[j], len(cell))
		}
	}

	var b strings.Builder
	for j, h := range resultColumns {
		b.WriteString(c.Bold() + h + c.Reset() + padRight("", widths[j]-len(h)+3))
	}
	fmt.Fprintln(out, strings.TrimRight(b.String(), " "))

	for i, row := range rows {
		b.Reset()
		for j, cell := range row {
			color := ""
			switch j {
			case 0:
				color = c.Blue()
			case 3:
				color = ui.StatusColor(results[i].Status)
			}
			b.WriteString(ui.Colorize(color, cell) + padRight("", widths[j]-len(cell)+3))
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + strings.Repeat(" ", length)
}

func statusLabel(r order.ProcessingResult) string {
	label := fmt.Sprintf("%s (%d%%)", r.Status, r.Progress)
	if r.Error != "" {
		label += ": " + r.Error
	}
	return ui.Colorize(ui.StatusColor(r.Status), label)
}

func failedColor(n int) string {
	if n > 0 {
		return ui.Colors{}.Red()
	}
	return ui.Colors{}.Green()
}
