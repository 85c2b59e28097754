//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/ordersim/internal/format"
	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/progress"
	"github.com/agbru/ordersim/internal/ui"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so that DisplayProgress can be
// tested without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix takes the spinner lock, the animation goroutine reads the
// suffix concurrently.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with the aggregated progress bar and ETA of
// a run until progressChan is closed, then prints the final bar.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numJobs int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numJobs)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	label := ""
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				fmt.Fprintf(out, "%s\n", progressLine(agg.CalculateAverage(), 0, jobsLabel(numJobs)))
				return
			}
			ap := agg.Update(update)
			if !agg.IsMultiJob() {
				label = update.OrderID
			}
			s.UpdateSuffix(" " + progressLine(ap.AverageProgress, ap.ETA, label))
		case <-ticker.C:
			s.UpdateSuffix(" " + progressLine(agg.CalculateAverage(), agg.GetETA(), label))
		}
	}
}

func jobsLabel(n int) string {
	if n == 1 {
		return "1 order"
	}
	return fmt.Sprintf("%d orders", n)
}

func progressLine(avg float64, eta time.Duration, label string) string {
	t := ui.GetCurrentTheme()
	line := format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth)
	if label == "" {
		return line
	}
	return fmt.Sprintf("%s %s%s%s", line, t.Primary, label, t.Reset)
}
