package sdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Open opens a corpus file for scanning, transparently decompressing
// gzip-compressed dumps (".gz" suffix).
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip corpus %s: %w", path, err)
	}
	return &gzipCloser{gz: gz, f: f}, nil
}

type gzipCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipCloser) Close() error {
	gzErr := g.gz.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}

// Scan reads records from r in source order. Each valid record is passed
// to emit; a non-nil error from emit stops the scan and is returned.
// Malformed records (missing DATABASE_ID, or a trailing fragment with no
// terminator) go to reject and never interrupt the scan, so the relative
// order of the valid records around them is preserved.
//
// Returns the number of valid records emitted.
func Scan(r io.Reader, source string, emit func(Record) error, reject func(Malformed)) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		lines     []string
		startLine = 1
		lineNum   int
		index     int
	)

	flush := func(termLine int) error {
		defer func() {
			lines = nil
			startLine = termLine + 1
		}()

		id := ExtractDatabaseID(lines)
		if id == "" {
			reject(Malformed{
				Source: source,
				Line:   termLine,
				Reason: "DATABASE_ID not found",
				Sample: sample(lines),
			})
			return nil
		}

		data := []byte(strings.Join(lines, "\n") + "\n")
		rec := Record{
			Source: source,
			Index:  index,
			Line:   startLine,
			ID:     id,
			Data:   data,
		}
		index++
		return emit(rec)
	}

	for sc.Scan() {
		lineNum++
		line := sc.Text()
		lines = append(lines, line)
		if strings.TrimSpace(line) == recordTerminator {
			if err := flush(lineNum); err != nil {
				return index, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return index, fmt.Errorf("read %s: %w", source, err)
	}

	// A trailing fragment with no terminator is malformed, never silently
	// dropped.
	if len(lines) > 0 && strings.TrimSpace(strings.Join(lines, "")) != "" {
		reject(Malformed{
			Source: source,
			Line:   lineNum,
			Reason: "truncated record (missing terminator)",
			Sample: sample(lines),
		})
	}
	return index, nil
}

func sample(lines []string) []string {
	if len(lines) <= sampleLines {
		return append([]string(nil), lines...)
	}
	return append([]string(nil), lines[:sampleLines]...)
}
