package orchestration

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/progress"
)

// JobProcessor runs one order. *processor.Processor implements it.
type JobProcessor interface {
	Process(ctx context.Context, o order.Order, onProgress progress.Callback) (order.ProcessingResult, error)
}

// ProgressReporter defines the interface for displaying job progress.
// This interface decouples the orchestration layer from the presentation
// layer: implementations draw spinners or bars while the orchestrator
// coordinates the jobs.
type ProgressReporter interface {
	// DisplayProgress consumes progressChan until it is closed and then
	// calls wg.Done. It is started in its own goroutine for every run.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving progress updates from jobs.
	//   - numJobs: The number of jobs in the run.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numJobs int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.Update, numJobs int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numJobs int, out io.Writer) {
	f(wg, progressChan, numJobs, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used for quiet mode, the server and tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders run outcomes. Implementations live in the CLI.
type ResultPresenter interface {
	PresentResult(r order.ProcessingResult, out io.Writer)
	PresentReport(report BatchReport, out io.Writer)
	PresentComparison(cmp Comparison, out io.Writer)
}

// Recorder receives run metrics. server.Metrics implements it with
// Prometheus collectors.
type Recorder interface {
	JobStarted(mode Mode)
	JobFinished(mode Mode, status order.Status, wall time.Duration)
	BatchFinished(mode Mode, elapsed time.Duration, size, failed int)
}

// NopRecorder discards metrics.
type NopRecorder struct{}

func (NopRecorder) JobStarted(Mode)                              {}
func (NopRecorder) JobFinished(Mode, order.Status, time.Duration) {}
func (NopRecorder) BatchFinished(Mode, time.Duration, int, int)   {}
