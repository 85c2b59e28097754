package orchestration

import (
	"testing"
	"time"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/progress"
)

func TestNewProgressAggregator(t *testing.T) {
	t.Parallel()
	tests := []struct {
		numJobs   int
		wantNil   bool
		wantMulti bool
	}{
		{3, false, true},
		{1, false, false},
		{0, true, false},
		{-1, true, false},
	}
	for _, tt := range tests {
		agg := NewProgressAggregator(tt.numJobs)
		if (agg == nil) != tt.wantNil {
			t.Errorf("NewProgressAggregator(%d) nil = %v, want %v", tt.numJobs, agg == nil, tt.wantNil)
			continue
		}
		if agg == nil {
			continue
		}
		if agg.NumJobs() != tt.numJobs {
			t.Errorf("NumJobs() = %d, want %d", agg.NumJobs(), tt.numJobs)
		}
		if agg.IsMultiJob() != tt.wantMulti {
			t.Errorf("IsMultiJob() = %v, want %v", agg.IsMultiJob(), tt.wantMulti)
		}
	}
}

func TestProgressAggregator_Update(t *testing.T) {
	agg := NewProgressAggregator(2)

	ap := agg.Update(progress.Update{Index: 0, OrderID: "A", Percent: 50})
	if ap.Index != 0 || ap.OrderID != "A" {
		t.Errorf("unexpected identity %+v", ap)
	}
	if ap.Value != 0.5 {
		t.Errorf("expected Value=0.5, got %f", ap.Value)
	}
	if ap.AverageProgress != 0.25 {
		t.Errorf("expected AverageProgress=0.25, got %f", ap.AverageProgress)
	}

	ap = agg.Update(progress.Update{Index: 1, OrderID: "B", Percent: 50})
	if ap.AverageProgress != 0.5 {
		t.Errorf("expected AverageProgress=0.5, got %f", ap.AverageProgress)
	}
	if agg.CalculateAverage() != 0.5 {
		t.Errorf("expected CalculateAverage()=0.5, got %f", agg.CalculateAverage())
	}
}

func TestProgressAggregator_GetETA(t *testing.T) {
	agg := NewProgressAggregator(1)
	if eta := agg.GetETA(); eta != 0 {
		t.Errorf("expected initial ETA=0, got %v", eta)
	}
}

func TestDrainChannel(t *testing.T) {
	ch := make(chan progress.Update, 5)
	ch <- progress.Update{Percent: 10}
	ch <- progress.Update{Percent: 20}
	close(ch)
	DrainChannel(ch)

	empty := make(chan progress.Update)
	close(empty)
	DrainChannel(empty)
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"single", ModeSingle, false},
		{"batch", ModeConcurrent, false},
		{"Concurrent", ModeConcurrent, false},
		{" sequential ", ModeSequential, false},
		{"compare", ModeCompare, false},
		{"turbo", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
				t.Errorf("ParseMode(%q) should return a config error", tt.in)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDemoBatch(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1700000000123)
	got := DemoBatch(BatchPrefix, now)

	want := []order.Order{
		{ID: "BATCH-F-1700000000123", Type: order.TypeFood, Quantity: 1, Priority: order.PriorityMedium},
		{ID: "BATCH-E-1700000000123", Type: order.TypeElectronics, Quantity: 1, Priority: order.PriorityHigh},
		{ID: "BATCH-C-1700000000123", Type: order.TypeClothing, Quantity: 1, Priority: order.PriorityLow},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d orders, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if err := order.ValidateBatch(got); err != nil {
		t.Errorf("demo batch should be valid: %v", err)
	}
}
