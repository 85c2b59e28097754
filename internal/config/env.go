// This file contains the ORDERSIM_* environment overrides.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/ordersim/internal/errors"
)

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// Aliased flags (-output/-o) are covered by passing both names.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the ORDERSIM_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"QTY", []string{"qty"}, func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Quantity = n
		return nil
	}},
	{"TIME_SCALE", []string{"time-scale"}, func(c *AppConfig, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.TimeScale = f
		return nil
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) error {
		return setDuration(&c.Timeout, v)
	}},
	{"JOB_TIMEOUT", []string{"job-timeout"}, func(c *AppConfig, v string) error {
		return setDuration(&c.JobTimeout, v)
	}},

	// String overrides
	{"MODE", []string{"mode"}, func(c *AppConfig, v string) error { c.rawMode = v; return nil }},
	{"ID", []string{"id"}, func(c *AppConfig, v string) error { c.OrderID = v; return nil }},
	{"TYPE", []string{"type"}, func(c *AppConfig, v string) error { c.Type = v; return nil }},
	{"PRIORITY", []string{"priority"}, func(c *AppConfig, v string) error { c.Priority = v; return nil }},
	{"ORDERS", []string{"orders"}, func(c *AppConfig, v string) error { c.OrdersFile = v; return nil }},
	{"OUTPUT", []string{"output", "o"}, func(c *AppConfig, v string) error { c.OutputFile = v; return nil }},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) error { c.LogLevel = v; return nil }},
	{"SERVE", []string{"serve"}, func(c *AppConfig, v string) error { c.ServeAddr = v; return nil }},

	// Boolean overrides
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) error {
		return setBool(&c.Quiet, v)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) error {
		return setBool(&c.NoColor, v)
	}},
	{"TUI", []string{"tui"}, func(c *AppConfig, v string) error {
		return setBool(&c.TUI, v)
	}},
	{"REPL", []string{"repl"}, func(c *AppConfig, v string) error {
		return setBool(&c.REPL, v)
	}},
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func setBool(dst *bool, v string) error {
	b, ok := parseBoolEnv(v)
	if !ok {
		return strconv.ErrSyntax
	}
	*dst = b
	return nil
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func parseBoolEnv(val string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
// A value that does not parse is a ConfigError.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		val := os.Getenv(EnvPrefix + o.envKey)
		if val == "" {
			continue
		}
		if err := o.apply(config, val); err != nil {
			return apperrors.NewConfigError("invalid %s%s value %q: %v", EnvPrefix, o.envKey, val, err)
		}
	}
	return nil
}
