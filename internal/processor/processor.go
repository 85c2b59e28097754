// Package processor binds one order to one simulator run and produces the
// order's complete ProcessingResult lifecycle:
//
//	Created -> Processing -> Completed | Failed
//
// The processor has no side channel: intermediate states are visible only
// through the progress callback, the final one through the return value.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/logging"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/progress"
	"github.com/agbru/ordersim/internal/simulator"
)

// Runner runs a synthetic workload. *simulator.Simulator implements it.
type Runner interface {
	Run(ctx context.Context, duration time.Duration, onProgress progress.Callback) (simulator.Outcome, error)
}

// Processor processes single orders. It is safe for concurrent use.
type Processor struct {
	policy     order.Policy
	runner     Runner
	logger     logging.Logger
	tracer     trace.Tracer
	jobTimeout time.Duration
	now        func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithJobTimeout bounds every job. Zero disables the bound.
func WithJobTimeout(d time.Duration) Option {
	return func(p *Processor) { p.jobTimeout = d }
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tracer = t
		}
	}
}

// New returns a Processor classifying with policy and simulating with runner.
func New(policy order.Policy, runner Runner, opts ...Option) *Processor {
	p := &Processor{
		policy: policy,
		runner: runner,
		logger: logging.Nop(),
		tracer: otel.Tracer("github.com/agbru/ordersim/internal/processor"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs o to completion.
//
// An order without an ID fails fast with a ValidationError and yields no
// result. A simulator failure yields a result in the failed state together
// with a JobError wrapping the cause.
func (p *Processor) Process(ctx context.Context, o order.Order, onProgress progress.Callback) (order.ProcessingResult, error) {
	if err := o.Validate(); err != nil {
		return order.ProcessingResult{}, err
	}
	if onProgress == nil {
		onProgress = func(int) {}
	}

	ctx, span := p.tracer.Start(ctx, "order.process", trace.WithAttributes(
		attribute.String("order.id", o.ID),
		attribute.String("order.type", string(o.Type)),
		attribute.String("order.priority", string(o.Priority)),
		attribute.Int("order.quantity", o.Quantity),
	))
	defer span.End()

	jobCtx := ctx
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}

	class := p.policy.Classify(o.Type, o.Priority)
	span.SetAttributes(
		attribute.Int64("order.duration_ms", class.Duration.Milliseconds()),
		attribute.Int("order.discount", class.Discount),
	)
	p.logger.Debug("order started",
		logging.String("order_id", o.ID),
		logging.Duration("duration", class.Duration),
		logging.Int("discount", class.Discount),
	)

	result := order.NewPending(o)
	result.Discount = class.Discount

	last := 0
	outcome, err := p.runner.Run(jobCtx, class.Duration, func(percent int) {
		last = percent
		onProgress(percent)
	})
	if err != nil {
		cause := err
		if errors.Is(err, context.DeadlineExceeded) && p.jobTimeout > 0 && ctx.Err() == nil {
			cause = apperrors.TimeoutError{Operation: "order " + o.ID, Limit: p.jobTimeout}
		}
		now := p.now()
		result.Status = order.StatusFailed
		result.Progress = min(last, 99)
		result.Error = cause.Error()
		result.Message = fmt.Sprintf("Order %s failed: %v", o.ID, cause)
		result.Timestamp = now.Format(order.TimestampLayout)
		result.CompletedAt = now

		span.RecordError(cause)
		span.SetStatus(codes.Error, cause.Error())
		p.logger.Error("order failed", cause, logging.String("order_id", o.ID), logging.Int("percent", result.Progress))
		return result, apperrors.JobError{OrderID: o.ID, Cause: cause}
	}

	result.Status = order.StatusCompleted
	result.Progress = 100
	result.ProcessingTime = outcome.ProcessingTime
	result.Message = order.CompletionMessage(o.ID)
	result.Timestamp = outcome.CompletedAt.Format(order.TimestampLayout)
	result.CompletedAt = outcome.CompletedAt

	span.SetStatus(codes.Ok, "")
	p.logger.Info("order completed",
		logging.String("order_id", o.ID),
		logging.String("processing_time", result.ProcessingTime),
		logging.Int("discount", result.Discount),
	)
	return result, nil
}
