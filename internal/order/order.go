package order

import (
	"strings"
	"time"

	apperrors "github.com/agbru/ordersim/internal/errors"
)

// Type is the kind of goods in an order. It drives the synthetic duration.
type Type string

// Known order types. Any other value is treated as TypeOther.
const (
	TypeFood        Type = "food"
	TypeElectronics Type = "electronics"
	TypeClothing    Type = "clothing"
	TypeOther       Type = "other"
)

// Priority is the urgency of an order. It drives the discount.
type Priority string

// Known priorities. Any other value is treated as PriorityOther.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityOther  Priority = "other"
)

// Status is the lifecycle state of a ProcessingResult.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// TimestampLayout is the wall-clock layout of ProcessingResult.Timestamp.
const TimestampLayout = "15:04:05"

// Order is a caller-supplied unit of synthetic work. It is not mutated once
// submitted.
type Order struct {
	ID       string   `json:"order_id" yaml:"id"`
	Type     Type     `json:"type" yaml:"type"`
	Quantity int      `json:"quantity" yaml:"quantity"`
	Priority Priority `json:"priority" yaml:"priority"`
}

// Validate rejects orders the processor cannot identify. Type and priority
// are never rejected.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return apperrors.ValidationError{Field: "order_id", Message: "must not be empty"}
	}
	return nil
}

// ValidateBatch checks every order of a batch up front: IDs must be
// non-empty and unique.
func ValidateBatch(orders []Order) error {
	if len(orders) == 0 {
		return apperrors.ValidationError{Field: "orders", Message: "batch must contain at least one order"}
	}
	seen := make(map[string]struct{}, len(orders))
	for i, o := range orders {
		if err := o.Validate(); err != nil {
			return apperrors.WrapError(err, "order #%d", i+1)
		}
		if _, dup := seen[o.ID]; dup {
			return apperrors.ValidationError{Field: "order_id", Message: "duplicate ID " + `"` + o.ID + `"`}
		}
		seen[o.ID] = struct{}{}
	}
	return nil
}

// NormalizeType maps a raw value onto a known Type, falling back to TypeOther.
func NormalizeType(raw string) Type {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case TypeFood, TypeElectronics, TypeClothing:
		return t
	default:
		return TypeOther
	}
}

// NormalizePriority maps a raw value onto a known Priority, falling back to
// PriorityOther.
func NormalizePriority(raw string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityOther
	}
}

// ProcessingResult is the observable record of one order's execution.
type ProcessingResult struct {
	OrderID        string    `json:"order_id"`
	Type           Type      `json:"type"`
	Priority       Priority  `json:"priority"`
	Quantity       int       `json:"quantity"`
	Status         Status    `json:"status"`
	Progress       int       `json:"progress"`
	Discount       int       `json:"discount"`
	ProcessingTime string    `json:"processing_time,omitempty"`
	Message        string    `json:"message,omitempty"`
	Timestamp      string    `json:"timestamp,omitempty"`
	CompletedAt    time.Time `json:"completed_at,omitzero"`
	Error          string    `json:"error,omitempty"`
}

// NewPending returns the initial record of a job that just started.
func NewPending(o Order) ProcessingResult {
	return ProcessingResult{
		OrderID:  o.ID,
		Type:     o.Type,
		Priority: o.Priority,
		Quantity: o.Quantity,
		Status:   StatusProcessing,
	}
}

// Terminal reports whether the result reached a final state.
func (r ProcessingResult) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// CompletionMessage is the human-readable notice attached to a completed result.
func CompletionMessage(id string) string {
	return "Order " + id + " processed successfully"
}
