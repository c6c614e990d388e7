package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer appends summary records to the run's JSONL artifact. Append-only
// across runs: records from earlier runs are never rewritten, and the run
// id on each line keeps them attributable.
type Writer struct {
	mu sync.Mutex
	f  *os.File
}

// OpenWriter opens (creating parent directories as needed) the summary
// artifact at path in append mode.
func OpenWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create summary directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open summary artifact: %w", err)
	}
	return &Writer{f: f}, nil
}

// WriteBatch appends one per-batch record.
func (w *Writer) WriteBatch(b BatchSummary) error {
	return w.append(struct {
		Kind string `json:"kind"`
		BatchSummary
	}{Kind: "batch", BatchSummary: b})
}

// WriteRun appends the run-level roll-up.
func (w *Writer) WriteRun(r RunSummary) error {
	return w.append(struct {
		Kind string `json:"kind"`
		RunSummary
	}{Kind: "run", RunSummary: r})
}

func (w *Writer) append(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.f.Write(append(data, '\n'))
	return err
}

// Close closes the artifact file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
