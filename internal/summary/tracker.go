package summary

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/molforge/dockprep/internal/catalog"
	"github.com/molforge/dockprep/internal/pool"
)

// Tracker consumes one batch's terminal state stream, counts outcomes,
// and logs periodic progress. Observe is called serially by the
// orchestrator's collector, so no locking is needed.
type Tracker struct {
	log           zerolog.Logger
	batch         string
	accepted      int
	skipped       int
	toProcess     int
	progressEvery int

	start     time.Time
	done      int
	success   int
	failed    int
	procTotal time.Duration
}

// NewTracker starts tracking a batch. accepted is the batch's
// accepted-input count, skipped the pre-dispatch SKIPPED count, and
// toProcess the number of items actually entering the pool.
func NewTracker(log zerolog.Logger, batch string, accepted, skipped, toProcess, progressEvery int) *Tracker {
	if progressEvery < 1 {
		progressEvery = 100
	}
	return &Tracker{
		log:           log,
		batch:         batch,
		accepted:      accepted,
		skipped:       skipped,
		toProcess:     toProcess,
		progressEvery: progressEvery,
		start:         time.Now(),
	}
}

// Observe records one terminal item result.
func (t *Tracker) Observe(res pool.ItemResult) {
	t.done++
	t.procTotal += res.End.Sub(res.Start)

	switch res.State {
	case catalog.StateSuccess:
		t.success++
	case catalog.StateFailed:
		t.failed++
		t.log.Error().
			Str("batch", t.batch).
			Str("source", res.Item.SourcePath).
			Str("stage", res.Stage).
			Str("diagnostic", res.Diagnostic).
			Msg("conversion failed")
	}

	if t.done == 1 || t.done == t.toProcess || t.done%t.progressEvery == 0 {
		t.progress()
	}
}

func (t *Tracker) progress() {
	elapsed := time.Since(t.start)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(t.done) / elapsed.Seconds()
	}
	avg := time.Duration(0)
	if t.done > 0 {
		avg = t.procTotal / time.Duration(t.done)
	}
	eta := time.Duration(0)
	if rate > 0 {
		eta = time.Duration(float64(t.toProcess-t.done)/rate) * time.Second
	}

	t.log.Info().
		Str("batch", t.batch).
		Int("done", t.done).
		Int("of", t.toProcess).
		Int("success", t.success).
		Int("failed", t.failed).
		Int("skipped", t.skipped).
		Float64("items_per_sec", rate).
		Dur("avg_item", avg).
		Dur("eta", eta).
		Msg("progress")
}

// Summary finalizes the batch record.
func (t *Tracker) Summary(runID string) BatchSummary {
	return BatchSummary{
		RunID:       runID,
		Batch:       t.batch,
		Accepted:    t.accepted,
		Success:     t.success,
		Failed:      t.failed,
		Skipped:     t.skipped,
		SuccessRate: Rate(t.success, t.accepted),
		DurationMS:  time.Since(t.start).Milliseconds(),
		FinishedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}
