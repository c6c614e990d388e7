// Package sdf reads multi-record structure-data streams. A record is every
// line up to and including a "$$$$" terminator; its identity is the value
// on the line after a "> <DATABASE_ID>" tag line. Records are immutable
// once read: the scanner hands out the raw payload exactly as it appeared
// in the source.
package sdf

import "strings"

const (
	recordTerminator = "$$$$"
	databaseIDTag    = "> <DATABASE_ID>"

	// A single line in real-world vendor dumps can carry very long
	// property values; give the scanner room.
	maxLineBytes = 4 * 1024 * 1024

	sampleLines = 10
)

// Record is one molecule entry from the source corpus.
type Record struct {
	Source string // Originating file.
	Index  int    // Ordinal position among valid records (0-based).
	Line   int    // 1-based line number where the record starts.
	ID     string // DATABASE_ID value.
	Data   []byte // Raw payload, terminator included.
}

// Malformed describes a record that could not be admitted.
type Malformed struct {
	Source string
	Line   int      // 1-based line number of the terminator (or EOF).
	Reason string
	Sample []string // First few lines of the offending payload.
}

// ExtractDatabaseID returns the DATABASE_ID value from a record's lines,
// or "" when the tag is absent or its value line is empty.
func ExtractDatabaseID(lines []string) string {
	for i, line := range lines {
		if strings.TrimSpace(line) != databaseIDTag {
			continue
		}
		if i+1 < len(lines) {
			if id := strings.TrimSpace(lines[i+1]); id != "" {
				return id
			}
		}
	}
	return ""
}
