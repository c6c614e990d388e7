package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// claimBatch claims a batch for this orchestrator instance by atomically
// creating a marker directory inside the batch's output directory.
// Instances scanning the same roots therefore partition batches without a
// shared lock service: Mkdir either succeeds exactly once or fails with
// EEXIST. A stale marker from a crashed run blocks the batch until a run
// with reclaim takes it over.
//
// Returns a release func (nil when the claim was not obtained).
func claimBatch(outBatchDir string, reclaim bool) (func(), bool, error) {
	if err := os.MkdirAll(outBatchDir, 0o755); err != nil {
		return nil, false, fmt.Errorf("create output batch directory: %w", err)
	}

	marker := filepath.Join(outBatchDir, ".claim")
	err := os.Mkdir(marker, 0o755)
	switch {
	case err == nil:
	case os.IsExist(err):
		if !reclaim {
			return nil, false, nil
		}
	default:
		return nil, false, fmt.Errorf("claim batch: %w", err)
	}

	// Owner note for operators inspecting a contended or stale claim.
	host, _ := os.Hostname()
	owner := fmt.Sprintf("%s pid=%d\n", host, os.Getpid())
	_ = os.WriteFile(filepath.Join(marker, "owner"), []byte(owner), 0o644)

	release := func() {
		_ = os.Remove(filepath.Join(marker, "owner"))
		_ = os.Remove(marker)
	}
	return release, true, nil
}
