package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification is the synthetic workload assigned to an order.
type Classification struct {
	// Duration is the simulated processing time.
	Duration time.Duration
	// Discount is a whole percentage.
	Discount int
}

// ProcessingTime returns the duration in seconds with two decimals.
func (c Classification) ProcessingTime() string {
	return FormatProcessingTime(c.Duration)
}

// Policy maps order attributes to a workload. Implementations must be pure.
type Policy interface {
	Classify(t Type, p Priority) Classification
}

// TablePolicy is a Policy backed by two lookup tables with explicit
// defaults for unknown attributes.
type TablePolicy struct {
	Durations       map[Type]time.Duration
	DefaultDuration time.Duration
	Discounts       map[Priority]int
	DefaultDiscount int
}

// DefaultPolicy returns the standard workload tables.
func DefaultPolicy() TablePolicy {
	return TablePolicy{
		Durations: map[Type]time.Duration{
			TypeFood:        2000 * time.Millisecond,
			TypeElectronics: 5000 * time.Millisecond,
			TypeClothing:    3000 * time.Millisecond,
		},
		DefaultDuration: 1000 * time.Millisecond,
		Discounts: map[Priority]int{
			PriorityHigh:   15,
			PriorityMedium: 10,
			PriorityLow:    5,
		},
		DefaultDiscount: 0,
	}
}

// Classify looks up the duration by type and the discount by priority.
// Unknown values resolve to the defaults; Classify never fails.
func (p TablePolicy) Classify(t Type, pr Priority) Classification {
	d, ok := p.Durations[t]
	if !ok {
		d = p.DefaultDuration
	}
	disc, ok := p.Discounts[pr]
	if !ok {
		disc = p.DefaultDiscount
	}
	return Classification{Duration: d, Discount: disc}
}

// FormatProcessingTime renders d as seconds with exactly two decimals,
// e.g. 2s -> "2.00". Millisecond precision is kept and rounded half away
// from zero.
func FormatProcessingTime(d time.Duration) string {
	return decimal.New(d.Milliseconds(), -3).StringFixed(2)
}
