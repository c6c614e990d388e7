// Package filter gates records on a computed structural property. Each
// record in a batch gets its rotatable-bond count from the engine; records
// at or under the threshold are copied unchanged into a parallel filtered
// batch directory, the rest are logged with their value and left behind.
// A single record's computation failure is a rejection with its own reason
// code, never an abort of the batch. Every rejection also lands in a
// durable per-batch JSONL log under the filtered root, so the gate's
// decisions survive the run.
package filter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/molforge/dockprep/internal/catalog"
	"github.com/molforge/dockprep/internal/config"
)

// Reason codes attached to rejection log lines.
const (
	ReasonExceedsThreshold = "exceeds_threshold"
	ReasonPropertyFailure  = "property_failure"
)

// PropertyFn computes the gating property for one record file. The
// production implementation is the engine's RotatableBonds; tests inject
// their own.
type PropertyFn func(ctx context.Context, path string) (int, error)

// BatchResult counts one batch's gate outcomes.
type BatchResult struct {
	Batch    string
	Total    int
	Accepted int
	Rejected int // Over threshold.
	Failed   int // Property computation failed.
}

// Totals aggregates gate outcomes across batches.
type Totals struct {
	Batches       int
	BatchesFailed int
	Total         int
	Accepted      int
	Rejected      int
	Failed        int
}

func (t *Totals) add(b BatchResult) {
	t.Batches++
	t.Total += b.Total
	t.Accepted += b.Accepted
	t.Rejected += b.Rejected
	t.Failed += b.Failed
}

// Run filters every selected batch under cfg.InputRoot into a mirrored
// directory under cfg.OutputRoot. A batch whose output directory cannot
// be created is aborted and logged; the remaining batches continue.
func Run(ctx context.Context, log zerolog.Logger, prop PropertyFn, cfg *config.Config) (Totals, error) {
	var totals Totals

	dirs, err := catalog.Batches(cfg.InputRoot, cfg)
	if err != nil {
		return totals, err
	}
	if len(dirs) == 0 {
		return totals, fmt.Errorf("no batch directories found in %s", cfg.InputRoot)
	}
	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		return totals, fmt.Errorf("create filtered root: %w", err)
	}

	for _, dir := range dirs {
		if ctx.Err() != nil {
			log.Warn().Msg("interrupted")
			break
		}
		res, err := Batch(ctx, log, prop, dir, cfg)
		if err != nil {
			totals.BatchesFailed++
			log.Error().Err(err).Str("batch", filepath.Base(dir)).Msg("batch aborted")
			continue
		}
		totals.add(res)
		log.Info().
			Str("batch", res.Batch).
			Int("total", res.Total).
			Int("accepted", res.Accepted).
			Int("rejected", res.Rejected).
			Int("failed", res.Failed).
			Msg("batch filtered")
	}
	return totals, nil
}

type propResult struct {
	path  string
	value int
	err   error
}

// Batch gates one batch directory into its filtered mirror under
// cfg.OutputRoot. Property computation fans out across cfg.Parallelism
// workers; acceptance copies happen serially in the collector so the
// rejection log stays ordered per batch.
func Batch(ctx context.Context, log zerolog.Logger, prop PropertyFn, batchDir string, cfg *config.Config) (BatchResult, error) {
	res := BatchResult{Batch: filepath.Base(batchDir)}

	paths, err := filepath.Glob(filepath.Join(batchDir, "*"+cfg.RecordExt))
	if err != nil {
		return res, fmt.Errorf("enumerate %s: %w", batchDir, err)
	}
	sort.Strings(paths)
	if cfg.Limit > 0 && len(paths) > cfg.Limit {
		paths = paths[:cfg.Limit]
	}
	res.Total = len(paths)
	if res.Total == 0 {
		log.Warn().Str("batch", res.Batch).Msg("no records in batch")
		return res, nil
	}

	outDir := filepath.Join(cfg.OutputRoot, res.Batch)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("create filtered batch directory: %w", err)
	}

	rej, err := openRejectLog(filepath.Join(outDir, "rejections.jsonl"))
	if err != nil {
		return res, err
	}
	defer rej.Close()

	tasks := make(chan string)
	results := make(chan propResult)

	workers := cfg.Parallelism
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range tasks {
				v, err := prop(ctx, p)
				results <- propResult{path: p, value: v, err: err}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, p := range paths {
			select {
			case tasks <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		name := filepath.Base(r.path)
		switch {
		case r.err != nil:
			res.Failed++
			detail := strings.TrimSpace(r.err.Error())
			rej.Record(name, 0, ReasonPropertyFailure, detail)
			log.Warn().
				Str("record", name).
				Str("reason", ReasonPropertyFailure).
				Str("error", detail).
				Msg("rejected")
		case r.value > cfg.PropertyThreshold:
			res.Rejected++
			rej.Record(name, r.value, ReasonExceedsThreshold, "")
			log.Warn().
				Str("record", name).
				Int("value", r.value).
				Int("threshold", cfg.PropertyThreshold).
				Str("reason", ReasonExceedsThreshold).
				Msg("rejected")
		default:
			if err := copyFile(r.path, filepath.Join(outDir, name)); err != nil {
				res.Failed++
				log.Error().Err(err).Str("record", name).Msg("copy to filtered batch failed")
				continue
			}
			res.Accepted++
			log.Debug().Str("record", name).Int("value", r.value).Msg("accepted")
		}
	}
	return res, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// rejectLog is the durable record of one batch's gate decisions: one JSON
// line per rejection with the record name, computed value, and reason
// code. Append mode, so re-runs of the gate extend rather than erase the
// trail.
type rejectLog struct {
	log  zerolog.Logger
	file *os.File
}

func openRejectLog(path string) (*rejectLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open rejection log: %w", err)
	}
	return &rejectLog{
		log:  zerolog.New(zerolog.SyncWriter(f)).With().Timestamp().Logger(),
		file: f,
	}, nil
}

func (r *rejectLog) Record(name string, value int, reason, detail string) {
	ev := r.log.Log().
		Str("record", name).
		Int("value", value).
		Str("reason", reason)
	if detail != "" {
		ev = ev.Str("detail", detail)
	}
	ev.Send()
}

func (r *rejectLog) Close() error { return r.file.Close() }
