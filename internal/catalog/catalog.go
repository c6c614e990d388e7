// Package catalog enumerates convertible items across filtered batch
// directories and decides which still need processing. The inclusion
// decision is made independently per item, so the execution set is
// identical regardless of enumeration order or how many prior runs
// occurred.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgryski/go-farm"

	"github.com/molforge/dockprep/internal/config"
	"github.com/molforge/dockprep/internal/ledger"
)

// State is the per-item lifecycle state. SKIPPED is assigned before
// dispatch and never transitions; no state reverts.
type State string

const (
	StatePending State = "PENDING"
	StateRunning State = "RUNNING"
	StateSuccess State = "SUCCESS"
	StateFailed  State = "FAILED"
	StateSkipped State = "SKIPPED"
)

// WorkItem is one pending conversion unit. Its output path is a pure
// function of its source path, so re-enumeration always derives the same
// item and concurrent workers can never target the same output.
type WorkItem struct {
	ID         uint64
	Batch      string
	SourcePath string
	OutputPath string
	Strategy   config.Strategy
	Overwrite  bool
	State      State
}

// Entry converts the item to its ledger representation.
func (w WorkItem) Entry() ledger.Entry {
	return ledger.Entry{
		ID:       w.ID,
		Source:   w.SourcePath,
		Output:   w.OutputPath,
		Strategy: string(w.Strategy),
		State:    string(w.State),
	}
}

// ItemID fingerprints an item's identity (source path + output path +
// strategy) for the ledger and job log.
func ItemID(source, output string, strategy config.Strategy) uint64 {
	return farm.Fingerprint64([]byte(source + "|" + output + "|" + string(strategy)))
}

// Batches returns the batch_* directories under root, sorted by name,
// restricted to the configured subset.
func Batches(root string, cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read input root: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "batch_") {
			continue
		}
		if !cfg.WantsBatch(e.Name()) {
			continue
		}
		dirs = append(dirs, filepath.Join(root, e.Name()))
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Build enumerates one WorkItem per record file in batchDir, deriving the
// output path from the record stem. Items come back sorted by source path
// and capped by cfg.Limit when set.
func Build(batchDir string, cfg *config.Config) ([]WorkItem, error) {
	matches, err := filepath.Glob(filepath.Join(batchDir, "*"+cfg.RecordExt))
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", batchDir, err)
	}
	sort.Strings(matches)
	if cfg.Limit > 0 && len(matches) > cfg.Limit {
		matches = matches[:cfg.Limit]
	}

	batch := filepath.Base(batchDir)
	items := make([]WorkItem, 0, len(matches))
	for _, src := range matches {
		stem := strings.TrimSuffix(filepath.Base(src), cfg.RecordExt)
		out := filepath.Join(cfg.OutputRoot, batch, stem+cfg.ConvertedExt)
		items = append(items, WorkItem{
			ID:         ItemID(src, out, cfg.Strategy),
			Batch:      batch,
			SourcePath: src,
			OutputPath: out,
			Strategy:   cfg.Strategy,
			Overwrite:  cfg.Overwrite,
			State:      StatePending,
		})
	}
	return items, nil
}

// Decide applies the resume precedence to each item independently:
// overwrite wins, then a prior success marks the item SKIPPED, otherwise
// it stays PENDING. Returns the items to execute and the skipped count.
func Decide(items []WorkItem, cfg *config.Config, led ledger.Ledger) (pending []WorkItem, skipped int, err error) {
	for _, it := range items {
		if cfg.Overwrite {
			pending = append(pending, it)
			continue
		}
		if cfg.Resume {
			done, lerr := led.HasSucceeded(it.Entry())
			if lerr != nil {
				return nil, 0, fmt.Errorf("ledger lookup for %s: %w", it.SourcePath, lerr)
			}
			if done {
				skipped++
				continue
			}
		}
		pending = append(pending, it)
	}
	return pending, skipped, nil
}
