// Package splitter partitions a multi-record corpus into fixed-capacity,
// uniquely named batch directories (batch_0001, batch_0002, ...). Batch i
// holds records [(i-1)*C, i*C) in original corpus order; the final batch
// may be partial. Malformed records are logged to error.log and skipped
// without disturbing the order of the valid records around them.
package splitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/molforge/dockprep/internal/sdf"
)

// BatchName formats the canonical directory name for 1-based batch number n.
func BatchName(n int) string {
	return fmt.Sprintf("batch_%04d", n)
}

// Result reports what a split produced.
type Result struct {
	Batches    int
	Records    int
	Malformed  int
	Duplicates int
}

// Split reads the corpus at corpusPath and writes one file per valid
// record under inputRoot, capacity records per batch directory. Duplicate
// DATABASE_IDs are suffixed (_dup2, _dup3, ...) rather than overwritten,
// so the no-loss invariant holds even on dirty corpora.
func Split(ctx context.Context, log zerolog.Logger, corpusPath, inputRoot string, capacity int, recordExt string) (Result, error) {
	var res Result

	src, err := sdf.Open(corpusPath)
	if err != nil {
		return res, fmt.Errorf("open corpus: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(inputRoot, 0o755); err != nil {
		return res, fmt.Errorf("create input root: %w", err)
	}

	errLog, err := newErrorLog(filepath.Join(inputRoot, "error.log"), corpusPath)
	if err != nil {
		return res, err
	}
	defer errLog.Close()

	seen := make(map[string]int)
	batchDirReady := false
	batchDir := ""

	emit := func(rec sdf.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		batchNum := rec.Index/capacity + 1
		if batchNum > res.Batches {
			res.Batches = batchNum
			batchDir = filepath.Join(inputRoot, BatchName(batchNum))
			batchDirReady = false
			log.Debug().Str("batch", BatchName(batchNum)).Msg("starting batch")
		}
		if !batchDirReady {
			if err := os.MkdirAll(batchDir, 0o755); err != nil {
				return fmt.Errorf("create batch directory: %w", err)
			}
			batchDirReady = true
		}

		name := rec.ID
		seen[rec.ID]++
		if n := seen[rec.ID]; n > 1 {
			name = fmt.Sprintf("%s_dup%d", rec.ID, n)
			res.Duplicates++
			log.Warn().Str("id", rec.ID).Str("as", name).Msg("duplicate record id")
		}

		path := filepath.Join(batchDir, name+recordExt)
		if err := os.WriteFile(path, rec.Data, 0o644); err != nil {
			return fmt.Errorf("write record %s: %w", name, err)
		}

		res.Records++
		if res.Records%1000 == 0 {
			log.Info().Int("records", res.Records).Int("malformed", res.Malformed).Msg("splitting")
		}
		return nil
	}

	reject := func(m sdf.Malformed) {
		res.Malformed++
		log.Warn().Str("source", m.Source).Int("line", m.Line).Str("reason", m.Reason).Msg("malformed record")
		errLog.Record(m)
	}

	if _, err := sdf.Scan(src, corpusPath, emit, reject); err != nil {
		errLog.Summary(res)
		return res, err
	}

	errLog.Summary(res)
	log.Info().
		Int("batches", res.Batches).
		Int("records", res.Records).
		Int("malformed", res.Malformed).
		Int("duplicates", res.Duplicates).
		Msg("split complete")
	return res, nil
}

// errorLog is the splitter's plain-text malformed-record log, one entry
// per rejected record plus a trailing summary.
type errorLog struct {
	f *os.File
}

func newErrorLog(path, corpus string) (*errorLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create error log: %w", err)
	}
	fmt.Fprintf(f, "corpus processing error log\n")
	fmt.Fprintf(f, "start: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(f, "source: %s\n\n", corpus)
	return &errorLog{f: f}, nil
}

func (e *errorLog) Record(m sdf.Malformed) {
	fmt.Fprintf(e.f, "[%s] line %d: %s\n", time.Now().Format(time.RFC3339), m.Line, m.Reason)
	for i, l := range m.Sample {
		fmt.Fprintf(e.f, "  %2d: %s\n", i+1, l)
	}
	fmt.Fprintln(e.f)
}

func (e *errorLog) Summary(res Result) {
	fmt.Fprintf(e.f, "end: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(e.f, "records: %d, malformed: %d, batches: %d\n", res.Records, res.Malformed, res.Batches)
}

func (e *errorLog) Close() error { return e.f.Close() }
