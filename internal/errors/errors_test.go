package apperrors

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "invalid flag value"},
			expected: "invalid flag value",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("invalid value %q for flag %s", "turbo", "-mode"),
			expected: `invalid value "turbo" for flag -mode`,
		},
		{
			name:        "ConfigError type assertion",
			err:         NewConfigError("test error"),
			expected:    "test error",
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.checkTypeAs {
				var configErr ConfigError
				if !errors.As(tt.err, &configErr) {
					t.Error("expected error to be ConfigError type")
				}
			}
		})
	}
}

func TestJobError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		orderID     string
		cause       error
		expectedMsg string
		checkIs     error
		checkUnwrap bool
	}{
		{
			name:        "Error prefixes the order ID",
			orderID:     "X1",
			cause:       errors.New("boom"),
			expectedMsg: "order X1: boom",
		},
		{
			name:        "Unwrap returns cause",
			orderID:     "X2",
			cause:       errors.New("original error"),
			expectedMsg: "order X2: original error",
			checkUnwrap: true,
		},
		{
			name:        "errors.Is finds the stall sentinel",
			orderID:     "X3",
			cause:       ErrSchedulerStalled,
			expectedMsg: "order X3: scheduler stalled before the terminal tick",
			checkIs:     ErrSchedulerStalled,
		},
		{
			name:        "errors.Is finds context cancellation",
			orderID:     "X4",
			cause:       context.Canceled,
			expectedMsg: "order X4: context canceled",
			checkIs:     context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := JobError{OrderID: tt.orderID, Cause: tt.cause}

			if err.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, err.Error())
			}

			if tt.checkUnwrap && err.Unwrap() != tt.cause {
				t.Error("Unwrap should return the original cause")
			}

			if tt.checkIs != nil && !errors.Is(err, tt.checkIs) {
				t.Errorf("errors.Is should find %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      TimeoutError
		expected string
	}{
		{
			name:     "Error returns formatted message",
			err:      TimeoutError{Operation: "batch", Limit: 30 * time.Second},
			expected: `operation "batch" timed out after 30s`,
		},
		{
			name:     "Error with subsecond limit",
			err:      TimeoutError{Operation: "order X1", Limit: 500 * time.Millisecond},
			expected: `operation "order X1" timed out after 500ms`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var err error = tt.err
			if err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, err.Error())
			}
			var timeoutErr TimeoutError
			if !errors.As(err, &timeoutErr) {
				t.Fatal("expected error to be TimeoutError type")
			}
			if timeoutErr.Limit != tt.err.Limit {
				t.Errorf("expected Limit %v, got %v", tt.err.Limit, timeoutErr.Limit)
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Error("TimeoutError should match context.DeadlineExceeded")
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name:     "empty order ID",
			err:      ValidationError{Field: "order_id", Message: "must not be empty"},
			expected: `validation error for "order_id": must not be empty`,
		},
		{
			name:     "duplicate order ID",
			err:      ValidationError{Field: "order_id", Message: `duplicate ID "A"`},
			expected: `validation error for "order_id": duplicate ID "A"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var err error = tt.err
			if err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, err.Error())
			}
			if !IsValidationError(WrapError(err, "batch rejected")) {
				t.Error("IsValidationError should see through WrapError")
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		original    error
		format      string
		args        []any
		expectedMsg string
		expectNil   bool
		checkIs     error
	}{
		{
			name:        "wraps error with context",
			original:    errors.New("file not found"),
			format:      "failed to load orders",
			expectedMsg: "failed to load orders: file not found",
		},
		{
			name:        "preserves error chain",
			original:    context.DeadlineExceeded,
			format:      "batch timed out",
			expectedMsg: "batch timed out: context deadline exceeded",
			checkIs:     context.DeadlineExceeded,
		},
		{
			name:      "returns nil for nil error",
			original:  nil,
			format:    "some context",
			expectNil: true,
		},
		{
			name:        "supports format arguments",
			original:    errors.New("connection reset"),
			format:      "failed to listen on %s:%d",
			args:        []any{"localhost", 8080},
			expectedMsg: "failed to listen on localhost:8080: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := WrapError(tt.original, tt.format, tt.args...)

			if tt.expectNil {
				if wrapped != nil {
					t.Error("WrapError(nil, ...) should return nil")
				}
				return
			}
			if wrapped == nil {
				t.Fatal("wrapped error should not be nil")
			}
			if wrapped.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, wrapped.Error())
			}
			if tt.checkIs != nil && !errors.Is(wrapped, tt.checkIs) {
				t.Errorf("wrapped error should preserve %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"context.Canceled", context.Canceled, true},
		{"context.DeadlineExceeded", context.DeadlineExceeded, true},
		{"wrapped context.Canceled", WrapError(context.Canceled, "operation canceled"), true},
		{"job error over cancellation", JobError{OrderID: "A", Cause: context.Canceled}, true},
		{"stall", ErrSchedulerStalled, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsContextError(tt.err); got != tt.expected {
				t.Errorf("IsContextError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"ExitSuccess":       ExitSuccess,
		"ExitErrorGeneric":  ExitErrorGeneric,
		"ExitErrorTimeout":  ExitErrorTimeout,
		"ExitErrorPartial":  ExitErrorPartial,
		"ExitErrorConfig":   ExitErrorConfig,
		"ExitErrorCanceled": ExitErrorCanceled,
	}

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess should be 0, got %d", ExitSuccess)
	}
	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled should be 130 (SIGINT convention), got %d", ExitErrorCanceled)
	}

	seen := make(map[int]string)
	for name, code := range codes {
		if existing, ok := seen[code]; ok {
			t.Errorf("duplicate exit code %d: %s and %s", code, existing, name)
		}
		seen[code] = name
	}
}

type plainColors struct{}

func (plainColors) Red() string    { return "<r>" }
func (plainColors) Yellow() string { return "<y>" }
func (plainColors) Reset() string  { return "</>" }

func TestHandleProcessingError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		code     int
		contains string
	}{
		{"nil", nil, ExitSuccess, ""},
		{"deadline", WrapError(context.DeadlineExceeded, "batch"), ExitErrorTimeout, "Timeout"},
		{"timeout error", TimeoutError{Operation: "batch", Limit: time.Second}, ExitErrorTimeout, "Timeout"},
		{"canceled", context.Canceled, ExitErrorCanceled, "Canceled"},
		{"validation", ValidationError{Field: "order_id", Message: "must not be empty"}, ExitErrorConfig, "Invalid input"},
		{"config", NewConfigError("bad mode"), ExitErrorConfig, "bad mode"},
		{"job", JobError{OrderID: "A", Cause: ErrSchedulerStalled}, ExitErrorPartial, "Partial failure"},
		{"generic", errors.New("disk on fire"), ExitErrorGeneric, "disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := HandleProcessingError(tt.err, 1500*time.Millisecond, &buf, nil)
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if tt.err == nil && buf.Len() != 0 {
				t.Errorf("expected no output for nil error, got %q", buf.String())
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output %q should contain %q", buf.String(), tt.contains)
			}
		})
	}

	t.Run("colors are applied", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		HandleProcessingError(errors.New("x"), 0, &buf, plainColors{})
		if !strings.HasPrefix(buf.String(), "<r>Error:</>") {
			t.Errorf("unexpected colored output %q", buf.String())
		}
	})
}
