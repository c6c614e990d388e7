// Package summary aggregates terminal item states into per-batch and
// per-run counts and writes the durable summary artifacts.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/molforge/dockprep/internal/display"
)

// BatchSummary is the durable per-batch record: one JSON line per batch
// per run in the summary artifact.
type BatchSummary struct {
	RunID       string `json:"run"`
	Batch       string `json:"batch"`
	Accepted    int    `json:"accepted"`
	Success     int    `json:"success"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`
	SuccessRate int    `json:"success_rate_pct"`
	DurationMS  int64  `json:"duration_ms"`
	FinishedAt  string `json:"finished_at"`
}

// RunSummary is the run-level roll-up.
type RunSummary struct {
	RunID       string `json:"run"`
	Batches     int    `json:"batches"`
	Accepted    int    `json:"accepted"`
	Success     int    `json:"success"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`
	SuccessRate int    `json:"success_rate_pct"`
	DurationMS  int64  `json:"duration_ms"`
	FinishedAt  string `json:"finished_at"`
}

// Rate returns the derived success rate in whole percent, rounded down.
// A batch with zero accepted inputs reports 0, not a division fault.
func Rate(success, accepted int) int {
	if accepted <= 0 {
		return 0
	}
	return success * 100 / accepted
}

// Roll accumulates batch summaries into the run-level roll-up.
func Roll(runID string, batches []BatchSummary, elapsed time.Duration) RunSummary {
	run := RunSummary{
		RunID:      runID,
		Batches:    len(batches),
		DurationMS: elapsed.Milliseconds(),
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, b := range batches {
		run.Accepted += b.Accepted
		run.Success += b.Success
		run.Failed += b.Failed
		run.Skipped += b.Skipped
	}
	run.SuccessRate = Rate(run.Success, run.Accepted)
	return run
}

// RenderText formats the run report for the terminal. Deterministic given
// its inputs, which keeps it golden-testable.
func RenderText(run RunSummary, batches []BatchSummary) string {
	var b strings.Builder
	b.WriteString("run summary\n")
	fmt.Fprintf(&b, "  run id:   %s\n", run.RunID)
	fmt.Fprintf(&b, "  batches:  %d\n", run.Batches)
	fmt.Fprintf(&b, "  accepted: %s\n", display.FormatCount(run.Accepted))
	fmt.Fprintf(&b, "  success:  %s (%s)\n", display.FormatCount(run.Success), display.FormatRate(run.SuccessRate))
	fmt.Fprintf(&b, "  failed:   %s\n", display.FormatCount(run.Failed))
	fmt.Fprintf(&b, "  skipped:  %s\n", display.FormatCount(run.Skipped))
	fmt.Fprintf(&b, "  duration: %s\n", display.FormatDuration(time.Duration(run.DurationMS)*time.Millisecond))
	for _, bs := range batches {
		fmt.Fprintf(&b, "  %s: accepted=%s success=%s failed=%s skipped=%s rate=%s in %s\n",
			bs.Batch,
			display.FormatCount(bs.Accepted), display.FormatCount(bs.Success),
			display.FormatCount(bs.Failed), display.FormatCount(bs.Skipped),
			display.FormatRate(bs.SuccessRate),
			display.FormatDuration(time.Duration(bs.DurationMS)*time.Millisecond))
	}
	return b.String()
}
