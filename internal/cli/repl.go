// Package cli provides the terminal presentation layer: progress display,
// result presenters, quiet and file output, shell completion and the
// interactive REPL.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Timeout bounds each command, zero for none.
	Timeout time.Duration
	// DefaultType is used by submit when no type is given.
	DefaultType order.Type
	// DefaultPriority is used by submit when no priority is given.
	DefaultPriority order.Priority
}

// REPL is an interactive order-processing session.
type REPL struct {
	config    REPLConfig
	orch      *orchestration.Orchestrator
	presenter CLIResultPresenter
	in        io.Reader
	out       io.Writer
}

// NewREPL creates a REPL driving orch.
func NewREPL(orch *orchestration.Orchestrator, config REPLConfig) *REPL {
	if config.DefaultType == "" {
		config.DefaultType = order.TypeOther
	}
	if config.DefaultPriority == "" {
		config.DefaultPriority = order.PriorityOther
	}
	return &REPL{
		config: config,
		orch:   orch,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads and runs commands until exit, EOF or ctx ends.
func (r *REPL) Start(ctx context.Context) {
	c := ui.Colors{}
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for ctx.Err() == nil {
		fmt.Fprint(r.out, c.Green()+"orders> "+c.Reset())

		input, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && strings.TrimSpace(input) != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", c.Red(), err, c.Reset())
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !r.processCommand(ctx, input) {
			return
		}
	}
}

func (r *REPL) printBanner() {
	c := ui.Colors{}
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════╗%s\n", c.Blue(), c.Reset())
	fmt.Fprintf(r.out, "%s║%s   %sOrder Processing Simulator - Interactive%s   %s║%s\n",
		c.Blue(), c.Reset(), c.Bold(), c.Reset(), c.Blue(), c.Reset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════╝%s\n\n", c.Blue(), c.Reset())
}

func (r *REPL) printHelp() {
	c := ui.Colors{}
	cmd := func(name, desc string) {
		fmt.Fprintf(r.out, "  %s%-38s%s - %s\n", c.Yellow(), name, c.Reset(), desc)
	}
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", c.Bold(), c.Reset())
	cmd("submit <id> [type] [qty] [priority]", "Process one order")
	cmd("batch", "Process the demo batch concurrently")
	cmd("compare", "Run the demo batch sequentially, then concurrently")
	cmd("list", "List stored results, newest first")
	cmd("clear", "Remove every stored result")
	cmd("status", "Display current configuration")
	cmd("help", "Display this help")
	cmd("exit / quit", "Exit interactive mode")
}

// processCommand runs one command line. It returns false on exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	args := parts[1:]
	switch strings.ToLower(parts[0]) {
	case "submit", "s":
		r.cmdSubmit(ctx, args)
	case "batch", "b":
		r.cmdBatch(ctx)
	case "compare", "cmp":
		r.cmdCompare(ctx)
	case "list", "ls":
		DisplayResults(r.out, r.orch.Store().Snapshot())
	case "clear":
		r.orch.Store().Clear()
		fmt.Fprintln(r.out, "Results cleared.")
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		c := ui.Colors{}
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", c.Green(), c.Reset())
		return false
	default:
		c := ui.Colors{}
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", c.Red(), parts[0], c.Reset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", c.Yellow(), c.Reset())
	}
	return true
}

// parseSubmit builds an order from "submit" arguments.
func (r *REPL) parseSubmit(args []string) (order.Order, error) {
	if len(args) == 0 {
		return order.Order{}, errors.New("usage: submit <id> [type] [qty] [priority]")
	}
	o := order.Order{
		ID:       args[0],
		Type:     r.config.DefaultType,
		Quantity: 1,
		Priority: r.config.DefaultPriority,
	}
	if len(args) > 1 {
		o.Type = order.NormalizeType(args[1])
	}
	if len(args) > 2 {
		qty, err := strconv.Atoi(args[2])
		if err != nil || qty < 0 {
			return order.Order{}, fmt.Errorf("invalid quantity: %s", args[2])
		}
		o.Quantity = qty
	}
	if len(args) > 3 {
		o.Priority = order.NormalizePriority(args[3])
	}
	return o, nil
}

func (r *REPL) cmdSubmit(ctx context.Context, args []string) {
	o, err := r.parseSubmit(args)
	if err != nil {
		c := ui.Colors{}
		fmt.Fprintf(r.out, "%s%v%s\n", c.Red(), err, c.Reset())
		return
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := r.orch.ProcessSingle(ctx, o)
	if res.OrderID != "" {
		r.presenter.PresentResult(res, r.out)
	}
	r.report(err, time.Since(start))
}

func (r *REPL) cmdBatch(ctx context.Context) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	report, err := r.orch.ProcessBatchConcurrent(ctx, orchestration.DemoBatch(orchestration.BatchPrefix, start))
	r.presenter.PresentReport(report, r.out)
	r.report(err, time.Since(start))
}

func (r *REPL) cmdCompare(ctx context.Context) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	cmp, err := r.orch.CompareSequentialVsConcurrent(ctx, orchestration.DemoBatch(orchestration.ComparePrefix, start))
	r.presenter.PresentComparison(cmp, r.out)
	r.report(err, time.Since(start))
}

func (r *REPL) cmdStatus() {
	c := ui.Colors{}
	timeout := "none"
	if r.config.Timeout > 0 {
		timeout = r.config.Timeout.String()
	}
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", c.Bold(), c.Reset())
	fmt.Fprintf(r.out, "  Timeout:          %s%s%s\n", c.Magenta(), timeout, c.Reset())
	fmt.Fprintf(r.out, "  Default type:     %s%s%s\n", c.Magenta(), r.config.DefaultType, c.Reset())
	fmt.Fprintf(r.out, "  Default priority: %s%s%s\n", c.Magenta(), r.config.DefaultPriority, c.Reset())
	fmt.Fprintf(r.out, "  Stored results:   %s%d%s\n", c.Magenta(), r.orch.Store().Len(), c.Reset())
	fmt.Fprintln(r.out)
}

func (r *REPL) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.Timeout > 0 {
		return context.WithTimeout(ctx, r.config.Timeout)
	}
	return context.WithCancel(ctx)
}

func (r *REPL) report(err error, elapsed time.Duration) {
	if err != nil {
		apperrors.HandleProcessingError(err, elapsed, r.out, ui.Colors{})
	}
	fmt.Fprintln(r.out)
}
