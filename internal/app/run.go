package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/ordersim/internal/cli"
	"github.com/agbru/ordersim/internal/config"
	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/ui"
)

// runOutcome is what a one-shot run leaves for output and export.
type runOutcome struct {
	runID   string
	results []order.ProcessingResult
}

// runCLI orchestrates a one-shot run in the configured mode.
func (a *Application) runCLI(ctx context.Context, out io.Writer) int {
	// Setup lifecycle (timeout + signals)
	if a.Config.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, a.Config.Timeout)
		defer cancelTimeout()
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// Choose progress reporter based on quiet mode
	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressReporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}
	orch := a.newOrchestrator(a.newLogger(false), progressReporter, progressOut, nil)

	start := time.Now()
	outcome, err := a.execute(ctx, orch, out)
	elapsed := time.Since(start)

	outputCfg := cli.OutputConfig{OutputFile: a.Config.OutputFile, Quiet: a.Config.Quiet}
	if len(outcome.results) > 0 {
		if saveErr := cli.SaveResults(out, outcome.runID, outcome.results, outputCfg); saveErr != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving results: %v\n", saveErr)
			if err == nil {
				return apperrors.ExitErrorGeneric
			}
		}
	}

	return apperrors.HandleProcessingError(err, elapsed, a.ErrWriter, ui.Colors{})
}

// execute runs the configured mode and prints its results.
func (a *Application) execute(ctx context.Context, orch *orchestration.Orchestrator, out io.Writer) (runOutcome, error) {
	presenter := cli.CLIResultPresenter{}

	if a.Config.Mode == orchestration.ModeSingle {
		res, err := orch.ProcessSingle(ctx, a.Config.Order())
		if res.OrderID == "" {
			return runOutcome{}, err
		}
		results := []order.ProcessingResult{res}
		if a.Config.Quiet {
			cli.DisplayQuietResults(out, results)
		} else {
			presenter.PresentResult(res, out)
		}
		return runOutcome{results: results}, err
	}

	prefix := orchestration.BatchPrefix
	if a.Config.Mode == orchestration.ModeCompare {
		prefix = orchestration.ComparePrefix
	}
	orders, err := a.batchOrders(prefix)
	if err != nil {
		return runOutcome{}, err
	}

	var report orchestration.BatchReport
	switch a.Config.Mode {
	case orchestration.ModeSequential:
		report, err = orch.ProcessBatchSequential(ctx, orders)
		if !a.Config.Quiet {
			presenter.PresentReport(report, out)
		}
	case orchestration.ModeCompare:
		var cmp orchestration.Comparison
		cmp, err = orch.CompareSequentialVsConcurrent(ctx, orders)
		report = cmp.Concurrent
		if report.RunID == "" {
			report = cmp.Sequential
		}
		if !a.Config.Quiet {
			presenter.PresentComparison(cmp, out)
		}
	default:
		report, err = orch.ProcessBatchConcurrent(ctx, orders)
		if !a.Config.Quiet {
			presenter.PresentReport(report, out)
		}
	}

	if a.Config.Quiet {
		cli.DisplayQuietResults(out, report.Results)
	}
	return runOutcome{runID: report.RunID, results: report.Results}, err
}

// batchOrders returns the orders of the -orders file, or the demo batch.
func (a *Application) batchOrders(prefix string) ([]order.Order, error) {
	if a.Config.OrdersFile != "" {
		return config.LoadOrders(a.Config.OrdersFile)
	}
	return orchestration.DemoBatch(prefix, time.Now()), nil
}
