// Package app wires configuration, logging, the order-processing pipeline and
// the selected surface (one-shot CLI run, REPL, TUI, HTTP server) together.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/ordersim/internal/cli"
	"github.com/agbru/ordersim/internal/config"
	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/logging"
	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/processor"
	"github.com/agbru/ordersim/internal/progress"
	"github.com/agbru/ordersim/internal/server"
	"github.com/agbru/ordersim/internal/simulator"
	"github.com/agbru/ordersim/internal/store"
	"github.com/agbru/ordersim/internal/tui"
	"github.com/agbru/ordersim/internal/ui"
	"github.com/rs/zerolog"
)

// Application represents the ordersim application instance.
type Application struct {
	Config    config.AppConfig
	Store     store.ResultStore
	ErrWriter io.Writer
	In        io.Reader
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithStore sets the result store shared by every run of the session.
func WithStore(st store.ResultStore) AppOption {
	return func(a *Application) { a.Store = st }
}

// WithInput sets the REPL input.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, In: os.Stdin}
	for _, opt := range opts {
		opt(app)
	}
	if app.Store == nil {
		app.Store = store.NewMemoryStore()
	}

	programName := "ordersim"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured surface and mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.TUI:
		return a.runTUI(ctx)
	case a.Config.REPL:
		return a.runREPL(ctx, out)
	case a.Config.ServeAddr != "":
		return a.runServe(ctx, out)
	default:
		return a.runCLI(ctx, out)
	}
}

// newLogger returns the logger of the session: JSON lines for the server,
// console lines for terminal sessions.
func (a *Application) newLogger(structured bool) logging.Logger {
	level := logging.ParseLevel(a.Config.LogLevel)
	if structured {
		return logging.NewLogger(a.ErrWriter, "ordersim").WithLevel(level)
	}
	return logging.NewConsoleLogger(a.ErrWriter, ui.GetCurrentTheme().Name == "none").WithLevel(level)
}

// newOrchestrator builds the processing pipeline over the session store.
func (a *Application) newOrchestrator(logger logging.Logger, reporter orchestration.ProgressReporter, progressOut io.Writer, recorder orchestration.Recorder) *orchestration.Orchestrator {
	sim := simulator.New(simulator.Options{TimeScale: a.Config.TimeScale})

	procOpts := []processor.Option{processor.WithLogger(logger)}
	if a.Config.JobTimeout > 0 {
		procOpts = append(procOpts, processor.WithJobTimeout(a.Config.JobTimeout))
	}
	proc := processor.New(order.DefaultPolicy(), sim, procOpts...)

	orch := orchestration.New(proc, a.Store,
		orchestration.WithLogger(logger),
		orchestration.WithProgressReporter(reporter, progressOut),
		orchestration.WithRecorder(recorder),
	)
	if logging.ParseLevel(a.Config.LogLevel) <= zerolog.DebugLevel {
		orch.Subscribe(progress.NewLoggingObserver(logger, 25))
	}
	return orch
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	modes := []string{"batch"}
	for _, m := range orchestration.Modes() {
		modes = append(modes, string(m))
	}
	if err := cli.GenerateCompletion(out, a.Config.Completion, modes); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive dashboard. Logs are discarded since the
// dashboard owns the terminal.
func (a *Application) runTUI(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	return tui.Run(ctx, func(r orchestration.ProgressReporter) *orchestration.Orchestrator {
		return a.newOrchestrator(logging.Nop(), r, io.Discard, nil)
	}, Version)
}

// runREPL starts the interactive shell. -timeout bounds each command.
func (a *Application) runREPL(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	orch := a.newOrchestrator(a.newLogger(false), cli.CLIProgressReporter{}, out, nil)
	repl := cli.NewREPL(orch, cli.REPLConfig{
		Timeout:         a.Config.Timeout,
		DefaultType:     order.NormalizeType(a.Config.Type),
		DefaultPriority: order.NormalizePriority(a.Config.Priority),
	})
	repl.SetInput(a.In)
	repl.SetOutput(out)
	repl.Start(ctx)
	return apperrors.ExitSuccess
}

// runServe serves the HTTP API until a signal arrives.
func (a *Application) runServe(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	logger := a.newLogger(true)
	metrics := server.NewMetrics()
	orch := a.newOrchestrator(logger, orchestration.NullProgressReporter{}, io.Discard, metrics)

	srv := server.New(orch, metrics, logger, server.DefaultConfig(a.Config.ServeAddr))
	fmt.Fprintf(out, "Serving the order API on %s (Ctrl+C to stop)\n", a.Config.ServeAddr)
	if err := srv.Start(ctx); err != nil {
		return apperrors.HandleProcessingError(err, 0, a.ErrWriter, ui.Colors{})
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
