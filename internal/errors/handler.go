package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the ANSI sequences used when printing errors.
// A nil provider prints plain text.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// ExitCodeFor maps an error to the process exit code without printing.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case IsValidationError(err):
		return ExitErrorConfig
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		return ExitErrorConfig
	}
	var jobErr JobError
	if errors.As(err, &jobErr) {
		return ExitErrorPartial
	}
	return ExitErrorGeneric
}

// HandleProcessingError prints a short diagnostic for err and returns the
// matching exit code. Nothing is printed when err is nil.
//
// Parameters:
//   - err: The error returned by a processing run.
//   - elapsed: The wall time spent before the error surfaced.
//   - out: The writer for the diagnostic.
//   - colors: Optional color provider, may be nil.
//
// Returns:
//   - int: The exit code for the error.
func HandleProcessingError(err error, elapsed time.Duration, out io.Writer, colors ColorProvider) int {
	code := ExitCodeFor(err)
	if err == nil {
		return code
	}

	red, yellow, reset := "", "", ""
	if colors != nil {
		red, yellow, reset = colors.Red(), colors.Yellow(), colors.Reset()
	}

	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sTimeout:%s processing did not finish after %s%s%s.\n",
			red, reset, yellow, elapsed.Round(time.Millisecond), reset)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sCanceled:%s processing interrupted after %s%s%s.\n",
			yellow, reset, yellow, elapsed.Round(time.Millisecond), reset)
	case ExitErrorConfig:
		fmt.Fprintf(out, "%sInvalid input:%s %v\n", red, reset, err)
	case ExitErrorPartial:
		fmt.Fprintf(out, "%sPartial failure:%s %v\n", red, reset, err)
	default:
		fmt.Fprintf(out, "%sError:%s %v\n", red, reset, err)
	}
	return code
}
