package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
)

var (
	completedX1 = order.ProcessingResult{
		OrderID: "X1", Type: order.TypeFood, Priority: order.PriorityHigh, Quantity: 1,
		Status: order.StatusCompleted, Progress: 100, Discount: 15, ProcessingTime: "2.00",
		Message: "Order X1 processed successfully", Timestamp: "10:00:02",
	}
	failedE1 = order.ProcessingResult{
		OrderID: "E1", Type: order.TypeElectronics, Priority: order.PriorityLow,
		Status: order.StatusFailed, Progress: 40, Discount: 10, Error: "scheduler stalled",
	}
)

func TestPresentResult(t *testing.T) {
	noColor(t)
	var out bytes.Buffer
	CLIResultPresenter{}.PresentResult(completedX1, &out)

	for _, want := range []string{"Order X1 [food/high] x1", "completed (100%)", "15%", "2.00s", "processed successfully", "10:00:02"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output should contain %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	CLIResultPresenter{}.PresentResult(failedE1, &out)
	if !strings.Contains(out.String(), "failed (40%): scheduler stalled") {
		t.Errorf("failed card missing error:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Processing time") {
		t.Error("failed card should not show a processing time")
	}
}

func TestDisplayResults_Alignment(t *testing.T) {
	noColor(t)
	var out bytes.Buffer
	DisplayResults(&out, []order.ProcessingResult{completedX1, failedE1})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header and 2 rows, got %q", lines)
	}
	col := strings.Index(lines[0], "Status")
	for _, l := range lines[1:] {
		if !strings.Contains(l[col:], "completed") && !strings.Contains(l[col:], "failed") {
			t.Errorf("status column misaligned in %q", l)
		}
	}
	if !strings.Contains(lines[2], "-") {
		t.Errorf("missing time placeholder in %q", lines[2])
	}

	out.Reset()
	DisplayResults(&out, nil)
	if !strings.Contains(out.String(), "No orders.") {
		t.Errorf("empty table = %q", out.String())
	}
}

func TestPresentComparison(t *testing.T) {
	noColor(t)
	cmp := orchestration.Comparison{
		Sequential: orchestration.BatchReport{RunID: "r1", Mode: orchestration.ModeSequential, Elapsed: 10 * time.Second,
			Results: []order.ProcessingResult{completedX1}},
		Concurrent: orchestration.BatchReport{RunID: "r2", Mode: orchestration.ModeConcurrent, Elapsed: 5 * time.Second,
			Results: []order.ProcessingResult{completedX1}},
	}
	var out bytes.Buffer
	CLIResultPresenter{}.PresentComparison(cmp, &out)

	for _, want := range []string{"sequential run r1", "concurrent run r2", "Comparison Summary", "Speedup:    2.00x", "Completed: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output should contain %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	cmp.Concurrent = orchestration.BatchReport{}
	CLIResultPresenter{}.PresentComparison(cmp, &out)
	if !strings.Contains(out.String(), "Concurrent phase skipped.") {
		t.Errorf("skipped phase not reported:\n%s", out.String())
	}
}
