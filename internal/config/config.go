// Package config parses the command line and the ORDERSIM_* environment into
// an AppConfig, and loads YAML batch files.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "ORDERSIM_"

// Defaults.
const (
	DefaultTimeout   = 1 * time.Minute
	DefaultTimeScale = 1.0
	DefaultLogLevel  = "warn"
)

// AppConfig holds the resolved settings of one invocation.
type AppConfig struct {
	// Mode is resolved by Validate. An empty -mode selects single when -id
	// is given and concurrent otherwise.
	Mode    orchestration.Mode
	rawMode string

	OrderID  string
	Type     string
	Priority string
	Quantity int

	// OrdersFile is a YAML batch file. Batch modes run the demo batch when
	// it is empty.
	OrdersFile string

	Timeout    time.Duration
	JobTimeout time.Duration
	TimeScale  float64

	OutputFile string
	Quiet      bool
	NoColor    bool
	LogLevel   string

	TUI        bool
	REPL       bool
	ServeAddr  string
	Completion string
	Version    bool
}

// Order builds the single-mode order from the flags.
func (c AppConfig) Order() order.Order {
	return order.Order{
		ID:       strings.TrimSpace(c.OrderID),
		Type:     order.NormalizeType(c.Type),
		Quantity: c.Quantity,
		Priority: order.NormalizePriority(c.Priority),
	}
}

// Validate checks value ranges and flag combinations and resolves Mode.
func (c *AppConfig) Validate() error {
	if c.TimeScale <= 0 {
		return apperrors.NewConfigError("-time-scale must be positive, got %v", c.TimeScale)
	}
	if c.Timeout < 0 {
		return apperrors.NewConfigError("-timeout must not be negative, got %s", c.Timeout)
	}
	if c.JobTimeout < 0 {
		return apperrors.NewConfigError("-job-timeout must not be negative, got %s", c.JobTimeout)
	}
	if c.Quantity < 0 {
		return apperrors.NewConfigError("-qty must not be negative, got %d", c.Quantity)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.LogLevel)) {
		return apperrors.NewConfigError("unknown -log-level %q (expected debug, info, warn or error)", c.LogLevel)
	}
	if c.Completion != "" && !slices.Contains([]string{"bash", "zsh", "fish"}, c.Completion) {
		return apperrors.NewConfigError("unsupported shell %q (accepted values: bash, zsh, fish)", c.Completion)
	}

	surfaces := 0
	for _, on := range []bool{c.TUI, c.REPL, c.ServeAddr != "", c.Completion != ""} {
		if on {
			surfaces++
		}
	}
	if surfaces > 1 {
		return apperrors.NewConfigError("-tui, -repl, -serve and -completion are mutually exclusive")
	}

	switch {
	case c.rawMode != "":
		mode, err := orchestration.ParseMode(c.rawMode)
		if err != nil {
			return err
		}
		c.Mode = mode
	case strings.TrimSpace(c.OrderID) != "":
		c.Mode = orchestration.ModeSingle
	default:
		c.Mode = orchestration.ModeConcurrent
	}

	if c.Mode == orchestration.ModeSingle {
		if c.OrdersFile != "" {
			return apperrors.NewConfigError("-orders cannot be used in single mode")
		}
		if strings.TrimSpace(c.OrderID) == "" && surfaces == 0 {
			return apperrors.NewConfigError("single mode requires -id")
		}
	}
	return nil
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Precedence is flags, then ORDERSIM_* variables, then defaults. Usage and
// flag errors are written to errorWriter; -h returns flag.ErrHelp.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	fs.StringVar(&config.rawMode, "mode", "", "Execution mode: single, batch (concurrent), sequential or compare.")
	fs.StringVar(&config.OrderID, "id", "", "Order ID for single mode.")
	fs.StringVar(&config.Type, "type", string(order.TypeOther), "Order type: food, electronics, clothing or other.")
	fs.StringVar(&config.Priority, "priority", string(order.PriorityOther), "Order priority: high, medium, low or other.")
	fs.IntVar(&config.Quantity, "qty", 1, "Order quantity.")
	fs.StringVar(&config.OrdersFile, "orders", "", "YAML batch file for the batch modes.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum run time (0 for none).")
	fs.DurationVar(&config.JobTimeout, "job-timeout", 0, "Maximum time per order (0 for none).")
	fs.Float64Var(&config.TimeScale, "time-scale", DefaultTimeScale, "Wall-clock compression factor (0.1 runs ten times faster).")
	fs.StringVar(&config.OutputFile, "output", "", "Write the results as JSON to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for -output.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode: one tab-separated line per order.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for -quiet.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colors (also honours NO_COLOR).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn or error.")
	fs.BoolVar(&config.TUI, "tui", false, "Start the interactive dashboard.")
	fs.BoolVar(&config.REPL, "repl", false, "Start the interactive shell.")
	fs.StringVar(&config.ServeAddr, "serve", "", "Serve the HTTP API on this address (e.g. :8080).")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for bash, zsh or fish.")
	fs.BoolVar(&config.Version, "version", false, "Show version information.")

	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintf(errorWriter, "Simulates order processing with live progress.\n\n")
		fmt.Fprintf(errorWriter, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(errorWriter, "\nEvery flag can be set through %s<FLAG> (e.g. %sTIME_SCALE=0.1).\n", EnvPrefix, EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected argument %q", fs.Arg(0))
	}

	if err := applyEnvOverrides(&config, fs); err != nil {
		return AppConfig{}, err
	}
	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}
