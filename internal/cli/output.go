// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResults], [DisplayQuietResults], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultsToFile].

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/ordersim/internal/order"
	"github.com/agbru/ordersim/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path of the JSON export, empty for none.
	OutputFile string
	// Quiet prints one line per result for scripts.
	Quiet bool
}

// resultsFile is the document written by WriteResultsToFile.
type resultsFile struct {
	Generated time.Time                `json:"generated"`
	RunID     string                   `json:"run_id,omitempty"`
	Results   []order.ProcessingResult `json:"results"`
}

// WriteResultsToFile writes results as indented JSON to path, creating the
// parent directory when needed.
func WriteResultsToFile(path, runID string, results []order.ProcessingResult) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resultsFile{Generated: time.Now(), RunID: runID, Results: results}); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// FormatQuietResult formats a result as one tab-separated line:
// id, status, progress, discount and processing time.
func FormatQuietResult(r order.ProcessingResult) string {
	pt := r.ProcessingTime
	if pt == "" {
		pt = "-"
	}
	return fmt.Sprintf("%s\t%s\t%d\t%d\t%s", r.OrderID, r.Status, r.Progress, r.Discount, pt)
}

// DisplayQuietResults prints every result in quiet format.
func DisplayQuietResults(out io.Writer, results []order.ProcessingResult) {
	for _, r := range results {
		fmt.Fprintln(out, FormatQuietResult(r))
	}
}

// SaveResults writes the export configured in cfg and confirms it unless
// quiet.
func SaveResults(out io.Writer, runID string, results []order.ProcessingResult, cfg OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if err := WriteResultsToFile(cfg.OutputFile, runID, results); err != nil {
		return err
	}
	if !cfg.Quiet {
		c := ui.Colors{}
		fmt.Fprintf(out, "\n%s✓ Results saved to: %s%s%s\n", c.Green(), c.Blue(), cfg.OutputFile, c.Reset())
	}
	return nil
}
