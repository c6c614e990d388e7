// Package logging wires up the console logger and the append-only job log.
//
// The console logger is a zerolog ConsoleWriter on stderr, shared by every
// component. The job log is a separate zerolog instance writing raw JSON
// lines to a file: one line per work item with identity, terminal state,
// timestamps, and duration, so a run leaves an auditable machine-readable
// trail next to its outputs.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// New returns the console logger at the given level. Unknown levels fall
// back to info with a note on stderr.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, using 'info'\n", level)
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

// JobLog is the append-only per-item log. Writes go through an internal
// lock so concurrent workers can share one instance.
type JobLog struct {
	log  zerolog.Logger
	file *os.File
}

// OpenJobLog opens (creating parent directories as needed) the JSONL job
// log at path in append mode.
func OpenJobLog(path string) (*JobLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create job log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open job log: %w", err)
	}
	return &JobLog{
		log:  zerolog.New(zerolog.SyncWriter(f)).With().Timestamp().Logger(),
		file: f,
	}, nil
}

// Item appends one terminal-state line for a work item.
func (j *JobLog) Item(runID string, itemID uint64, source, output, strategy, state string, startUnixMs, endUnixMs int64) {
	j.log.Log().
		Str("run", runID).
		Uint64("item", itemID).
		Str("source", source).
		Str("output", output).
		Str("strategy", strategy).
		Str("state", state).
		Int64("start_ms", startUnixMs).
		Int64("end_ms", endUnixMs).
		Int64("duration_ms", endUnixMs-startUnixMs).
		Send()
}

// Close closes the underlying file.
func (j *JobLog) Close() error {
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
