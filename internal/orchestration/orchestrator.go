package orchestration

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/logging"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/parallel"
	"github.com/agbru/ordersim/internal/progress"
	"github.com/agbru/ordersim/internal/store"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of dropping intermediate
// updates when the display is slow to consume them.
const ProgressBufferMultiplier = 5

// BatchReport is the outcome of one run.
type BatchReport struct {
	// RunID identifies the run in logs and traces.
	RunID string
	// Mode is the execution regime used.
	Mode Mode
	// Results holds one result per order, in input order.
	Results []order.ProcessingResult
	// Elapsed is the wall time from the first start to the last terminal outcome.
	Elapsed time.Duration
	// Failed counts the results in the failed state.
	Failed int
}

// Completed counts the results in the completed state.
func (r BatchReport) Completed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == order.StatusCompleted {
			n++
		}
	}
	return n
}

// Comparison holds both phases of CompareSequentialVsConcurrent.
type Comparison struct {
	Sequential BatchReport
	Concurrent BatchReport
}

// Speedup returns sequential elapsed / concurrent elapsed, or 0 when the
// concurrent phase has no duration.
func (c Comparison) Speedup() float64 {
	if c.Concurrent.Elapsed <= 0 {
		return 0
	}
	return float64(c.Sequential.Elapsed) / float64(c.Concurrent.Elapsed)
}

// Orchestrator runs orders under the single, concurrent and sequential
// regimes and mirrors every state change into its ResultStore.
//
// A failed job never cancels its siblings: the orchestrator always waits for
// every job, then returns the partial results together with the first error.
type Orchestrator struct {
	proc     JobProcessor
	store    store.ResultStore
	subject  *progress.Subject
	recorder Recorder
	reporter ProgressReporter
	out      io.Writer
	logger   logging.Logger
	tracer   trace.Tracer
	newRunID func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithProgressReporter sets the per-run display and its output.
func WithProgressReporter(r ProgressReporter, out io.Writer) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
		if out != nil {
			o.out = out
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// New returns an Orchestrator driving proc and publishing into st.
func New(proc JobProcessor, st store.ResultStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		proc:     proc,
		store:    st,
		subject:  progress.NewSubject(),
		recorder: NopRecorder{},
		reporter: NullProgressReporter{},
		out:      io.Discard,
		logger:   logging.Nop(),
		tracer:   otel.Tracer("github.com/agbru/ordersim/internal/orchestration"),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the store the orchestrator publishes into.
func (o *Orchestrator) Store() store.ResultStore { return o.store }

// Subscribe registers an observer for the progress of every subsequent job
// and returns a function removing it. Jobs already running keep the
// observer set they started with.
func (o *Orchestrator) Subscribe(obs progress.Observer) (unsubscribe func()) {
	return o.subject.Register(obs)
}

// ProcessSingle runs exactly one order and returns its result.
func (o *Orchestrator) ProcessSingle(ctx context.Context, ord order.Order) (order.ProcessingResult, error) {
	if err := ord.Validate(); err != nil {
		return order.ProcessingResult{}, err
	}
	report, err := o.run(ctx, ModeSingle, []order.Order{ord})
	if len(report.Results) == 0 {
		return order.ProcessingResult{}, err
	}
	return report.Results[0], err
}

// ProcessBatchConcurrent starts every order at once and returns when all of
// them reached a terminal state.
func (o *Orchestrator) ProcessBatchConcurrent(ctx context.Context, orders []order.Order) (BatchReport, error) {
	if err := order.ValidateBatch(orders); err != nil {
		return BatchReport{}, err
	}
	return o.run(ctx, ModeConcurrent, orders)
}

// ProcessBatchSequential runs the orders one at a time: job i+1 starts only
// after job i produced its terminal outcome. Each store entry is inserted when
// its job starts, so a snapshot taken mid-run lists only the orders reached so
// far. Failures do not stop the batch; when several orders fail the error
// carries their count.
func (o *Orchestrator) ProcessBatchSequential(ctx context.Context, orders []order.Order) (BatchReport, error) {
	if err := order.ValidateBatch(orders); err != nil {
		return BatchReport{}, err
	}
	return o.run(ctx, ModeSequential, orders)
}

// CompareSequentialVsConcurrent runs the batch sequentially and then the
// same orders concurrently. The store entries of the batch are restarted in
// place for the second phase. The concurrent phase is skipped when ctx ended
// during the first one.
func (o *Orchestrator) CompareSequentialVsConcurrent(ctx context.Context, orders []order.Order) (Comparison, error) {
	if err := order.ValidateBatch(orders); err != nil {
		return Comparison{}, err
	}

	var cmp Comparison
	var errs parallel.ErrorCollector

	seq, err := o.run(ctx, ModeSequential, orders)
	cmp.Sequential = seq
	errs.SetError(err)
	if ctx.Err() != nil {
		return cmp, errs.Err()
	}

	conc, err := o.run(ctx, ModeConcurrent, orders)
	cmp.Concurrent = conc
	errs.SetError(err)

	o.logger.Info("comparison finished",
		logging.Duration("sequential", seq.Elapsed),
		logging.Duration("concurrent", conc.Elapsed),
		logging.Float64("speedup", cmp.Speedup()),
	)
	return cmp, errs.Err()
}

// run executes a validated batch.
func (o *Orchestrator) run(ctx context.Context, mode Mode, orders []order.Order) (BatchReport, error) {
	report := BatchReport{
		RunID:   o.newRunID(),
		Mode:    mode,
		Results: make([]order.ProcessingResult, len(orders)),
	}

	ctx, span := o.tracer.Start(ctx, "batch."+string(mode), trace.WithAttributes(
		attribute.String("run.id", report.RunID),
		attribute.Int("batch.size", len(orders)),
	))
	defer span.End()

	progressChan := make(chan progress.Update, len(orders)*ProgressBufferMultiplier)
	display := progress.NewChannelObserver(progressChan)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go o.reporter.DisplayProgress(&displayWg, progressChan, len(orders), o.out)

	o.logger.Info("batch started",
		logging.String("run_id", report.RunID),
		logging.String("mode", string(mode)),
		logging.Int("size", len(orders)),
	)

	var err error
	start := time.Now()
	switch mode {
	case ModeSequential, ModeSingle:
		var errs parallel.ErrorCollector
		for i, ord := range orders {
			o.store.InsertAtFront(order.NewPending(ord))
			errs.SetError(o.job(ctx, mode, i, ord, display, report.Results))
		}
		err = errs.Err()
		if n := errs.Count(); n > 1 {
			err = apperrors.WrapError(err, "%d of %d orders failed", n, len(orders))
		}
	default:
		// errgroup.Group without a derived context: a failing job does not
		// cancel the others.
		var g errgroup.Group
		for i, ord := range orders {
			o.store.InsertAtFront(order.NewPending(ord))
			g.Go(func() error {
				return o.job(ctx, mode, i, ord, display, report.Results)
			})
		}
		err = g.Wait()
	}
	report.Elapsed = time.Since(start)

	close(progressChan)
	displayWg.Wait()

	for _, r := range report.Results {
		if r.Status == order.StatusFailed {
			report.Failed++
		}
	}
	o.recorder.BatchFinished(mode, report.Elapsed, len(orders), report.Failed)

	span.SetAttributes(attribute.Int("batch.failed", report.Failed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error("batch finished with failures", err,
			logging.String("run_id", report.RunID),
			logging.String("mode", string(mode)),
			logging.Int("failed", report.Failed),
			logging.Duration("elapsed", report.Elapsed),
		)
		return report, err
	}
	o.logger.Info("batch finished",
		logging.String("run_id", report.RunID),
		logging.String("mode", string(mode)),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// job runs one order and mirrors its progress into the store, the run's
// display channel and the subscribed observers. The terminal tick is not
// written as a bare progress patch: the final result replaces the entry in
// one step so that 100 is never stored next to a processing status.
func (o *Orchestrator) job(ctx context.Context, mode Mode, index int, ord order.Order, display progress.Observer, results []order.ProcessingResult) error {
	notify := o.subject.Freeze(index, ord.ID)
	onProgress := func(percent int) {
		if percent < 100 {
			o.store.UpdateByID(ord.ID, store.SetProgress(percent))
		}
		display.Update(progress.Update{Index: index, OrderID: ord.ID, Percent: percent})
		notify(percent)
	}

	o.recorder.JobStarted(mode)
	start := time.Now()
	res, err := o.proc.Process(ctx, ord, onProgress)
	if res.OrderID != "" {
		o.store.UpdateByID(ord.ID, store.Replace(res))
	}
	results[index] = res
	o.recorder.JobFinished(mode, res.Status, time.Since(start))
	return err
}
