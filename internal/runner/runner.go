// Package runner drives the conversion pipeline: enumerate filtered
// batches, decide the execution set against the ledger, run each batch
// through the worker pool, and emit the durable summaries. Per-item
// failures are expected and recorded; only batch-structural and
// configuration errors escalate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/molforge/dockprep/internal/catalog"
	"github.com/molforge/dockprep/internal/config"
	"github.com/molforge/dockprep/internal/engine"
	"github.com/molforge/dockprep/internal/ledger"
	"github.com/molforge/dockprep/internal/logging"
	"github.com/molforge/dockprep/internal/pool"
	"github.com/molforge/dockprep/internal/summary"
)

// ErrNoBatches is returned when the input root contains no batch
// directories to process.
var ErrNoBatches = errors.New("no batch directories found in input root")

// Options wires a conversion run. Adapter overrides the engine-backed
// adapter when set (tests inject fakes here).
type Options struct {
	Cfg     *config.Config
	Log     zerolog.Logger
	Engine  engine.Engine
	Adapter pool.Adapter
	RunID   string
}

// Result is the completed run's aggregate view.
type Result struct {
	Run              summary.RunSummary
	Batches          []summary.BatchSummary
	ClaimedElsewhere int
	BatchesFailed    int
}

// Convert executes the full conversion pipeline. The returned error is
// non-nil only for fatal setup or batch-enumeration failures; a run with
// many per-item failures still completes and yields a summary.
func Convert(ctx context.Context, opts Options) (Result, error) {
	cfg := opts.Cfg
	log := opts.Log
	start := time.Now()
	var res Result

	if _, err := os.Stat(cfg.InputRoot); err != nil {
		return res, fmt.Errorf("input root not accessible: %w", err)
	}
	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		return res, fmt.Errorf("output root not writable: %w", err)
	}

	dirs, err := catalog.Batches(cfg.InputRoot, cfg)
	if err != nil {
		return res, err
	}
	if len(dirs) == 0 {
		return res, ErrNoBatches
	}

	led, err := openLedger(cfg)
	if err != nil {
		return res, err
	}
	defer led.Close()

	jobLog, err := logging.OpenJobLog(cfg.JobLogPath())
	if err != nil {
		return res, err
	}
	defer jobLog.Close()

	sumWriter, err := summary.OpenWriter(filepath.Join(cfg.OutputRoot, "summary.jsonl"))
	if err != nil {
		return res, err
	}
	defer sumWriter.Close()

	adapter := opts.Adapter
	if adapter == nil {
		adapter = &pool.EngineAdapter{
			Engine:       opts.Engine,
			InputFormat:  "sdf",
			OutputFormat: "pdbqt",
			Timeout:      cfg.ItemTimeout.Std(),
			Log:          log,
		}
	}

	orch := &pool.Orchestrator{
		Workers: cfg.Parallelism,
		Adapter: adapter,
		Ledger:  led,
		Log:     log,
		JobLog:  jobLog,
		RunID:   opts.RunID,
	}

	for i, dir := range dirs {
		if ctx.Err() != nil {
			log.Warn().Msg("interrupted, remaining batches stay eligible for resume")
			break
		}
		name := filepath.Base(dir)
		log.Info().Str("batch", name).Int("n", i+1).Int("of", len(dirs)).Msg("processing batch")

		bs, err := convertBatch(ctx, orch, dir, cfg, log, opts.RunID, &res)
		if err != nil {
			res.BatchesFailed++
			log.Error().Err(err).Str("batch", name).Msg("batch aborted")
			continue
		}
		if bs == nil {
			continue // claimed by another instance
		}

		res.Batches = append(res.Batches, *bs)
		if err := sumWriter.WriteBatch(*bs); err != nil {
			log.Error().Err(err).Str("batch", name).Msg("cannot append batch summary")
		}
		log.Info().
			Str("batch", name).
			Int("success", bs.Success).
			Int("failed", bs.Failed).
			Int("skipped", bs.Skipped).
			Int("rate_pct", bs.SuccessRate).
			Msg("batch complete")
	}

	res.Run = summary.Roll(opts.RunID, res.Batches, time.Since(start))
	if err := sumWriter.WriteRun(res.Run); err != nil {
		log.Error().Err(err).Msg("cannot append run summary")
	}
	return res, nil
}

// convertBatch processes one batch: claim, enumerate, decide, dispatch,
// summarize. Returns (nil, nil) when another instance holds the claim.
func convertBatch(
	ctx context.Context,
	orch *pool.Orchestrator,
	batchDir string,
	cfg *config.Config,
	log zerolog.Logger,
	runID string,
	res *Result,
) (*summary.BatchSummary, error) {
	name := filepath.Base(batchDir)
	outDir := filepath.Join(cfg.OutputRoot, name)

	if cfg.Claim {
		release, ok, err := claimBatch(outDir, cfg.Reclaim)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.ClaimedElsewhere++
			log.Info().Str("batch", name).Msg("claimed by another instance, skipping")
			return nil, nil
		}
		defer release()
	} else if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output batch directory: %w", err)
	}

	items, err := catalog.Build(batchDir, cfg)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		log.Warn().Str("batch", name).Msg("no records in batch")
		empty := summary.BatchSummary{
			RunID: runID, Batch: name,
			SuccessRate: summary.Rate(0, 0),
			FinishedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		return &empty, nil
	}

	pending, skipped, err := catalog.Decide(items, cfg, orch.Ledger)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Info().Str("batch", name).Int("skipped", skipped).Msg("resuming, prior successes skipped")
	}

	tracker := summary.NewTracker(log, name, len(items), skipped, len(pending), cfg.ProgressEvery)
	orch.Run(ctx, pending, tracker.Observe)

	bs := tracker.Summary(runID)
	return &bs, nil
}

func openLedger(cfg *config.Config) (ledger.Ledger, error) {
	switch cfg.Ledger {
	case config.LedgerSQLite:
		return ledger.OpenSQLite(filepath.Join(cfg.OutputRoot, "ledger.db"))
	default:
		return ledger.NewPathLedger(), nil
	}
}
