// Package ledger records which work items have already reached a terminal
// state, enabling resume across process restarts. The default backing is
// the output filesystem itself: a non-empty file at the derived output
// path is the success entry. A sqlite backing is available when a run
// wants outcome history that survives output relocation.
package ledger

// Entry identifies one work item and (when recording) its terminal state.
type Entry struct {
	ID       uint64
	Source   string
	Output   string
	Strategy string
	State    string // "SUCCESS", "FAILED", "SKIPPED".
}

// Ledger is the resumable outcome store. Implementations must be safe for
// concurrent use by pool workers.
type Ledger interface {
	// HasSucceeded reports whether the item already has a SUCCESS entry
	// from a prior run.
	HasSucceeded(e Entry) (bool, error)

	// RecordOutcome durably records a terminal state. Records are
	// monotonic within a run: a completed item's entry is never removed.
	RecordOutcome(e Entry) error

	Close() error
}
