package orchestration

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/order"
)

// Mode is the execution regime of a run.
type Mode string

const (
	// ModeSingle runs exactly one order.
	ModeSingle Mode = "single"
	// ModeConcurrent runs every order of the batch at once.
	ModeConcurrent Mode = "concurrent"
	// ModeSequential runs the orders one after the other.
	ModeSequential Mode = "sequential"
	// ModeCompare runs the batch sequentially, then concurrently.
	ModeCompare Mode = "compare"
)

// Modes lists the accepted modes in a stable order.
func Modes() []Mode {
	return []Mode{ModeCompare, ModeConcurrent, ModeSequential, ModeSingle}
}

// ParseMode resolves a user supplied mode. "batch" is accepted as an alias
// of concurrent.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeSingle, ModeConcurrent, ModeSequential, ModeCompare:
		return m, nil
	case "batch":
		return ModeConcurrent, nil
	default:
		return "", apperrors.NewConfigError("unknown mode %q (expected one of %v)", raw, Modes())
	}
}

// Demo batch prefixes used by the batch and compare commands.
const (
	BatchPrefix   = "BATCH"
	ComparePrefix = "T"
)

// DemoBatch returns the three-order demo batch: food/medium, electronics/high
// and clothing/low, with IDs <prefix>-F-<ms>, <prefix>-E-<ms>, <prefix>-C-<ms>.
func DemoBatch(prefix string, now time.Time) []order.Order {
	ms := now.UnixMilli()
	return []order.Order{
		{ID: fmt.Sprintf("%s-F-%d", prefix, ms), Type: order.TypeFood, Quantity: 1, Priority: order.PriorityMedium},
		{ID: fmt.Sprintf("%s-E-%d", prefix, ms), Type: order.TypeElectronics, Quantity: 1, Priority: order.PriorityHigh},
		{ID: fmt.Sprintf("%s-C-%d", prefix, ms), Type: order.TypeClothing, Quantity: 1, Priority: order.PriorityLow},
	}
}
