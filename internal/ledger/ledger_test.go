package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathLedger_HasSucceeded(t *testing.T) {
	dir := t.TempDir()
	led := NewPathLedger()

	full := filepath.Join(dir, "full.converted")
	require.NoError(t, os.WriteFile(full, []byte("ATOM"), 0o644))
	empty := filepath.Join(dir, "empty.converted")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"non-empty output counts", full, true},
		{"empty output does not count", empty, false},
		{"missing output does not count", filepath.Join(dir, "nope"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := led.HasSucceeded(Entry{Output: tt.output})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathLedger_RecordIsNoOp(t *testing.T) {
	led := NewPathLedger()
	assert.NoError(t, led.RecordOutcome(Entry{ID: 1, State: "SUCCESS"}))
	assert.NoError(t, led.Close())
}

func TestSQLiteLedger_RoundTrip(t *testing.T) {
	led, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer led.Close()

	e := Entry{ID: 42, Source: "/in/a.record", Output: "/out/a.converted",
		Strategy: "balanced", State: "SUCCESS"}

	ok, err := led.HasSucceeded(e)
	require.NoError(t, err)
	assert.False(t, ok, "unknown item has no success entry")

	require.NoError(t, led.RecordOutcome(e))
	ok, err = led.HasSucceeded(e)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteLedger_FailedOutcomeIsNotSuccess(t *testing.T) {
	led, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer led.Close()

	e := Entry{ID: 7, Source: "/in/b.record", Output: "/out/b.converted",
		Strategy: "fast", State: "FAILED"}
	require.NoError(t, led.RecordOutcome(e))

	ok, err := led.HasSucceeded(e)
	require.NoError(t, err)
	assert.False(t, ok, "a FAILED record must stay eligible for retry")

	// A later success for the same identity upserts.
	e.State = "SUCCESS"
	require.NoError(t, led.RecordOutcome(e))
	ok, err = led.HasSucceeded(e)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteLedger_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	led, err := OpenSQLite(path)
	require.NoError(t, err)
	e := Entry{ID: 9, Source: "/in/c.record", Output: "/out/c.converted",
		Strategy: "balanced", State: "SUCCESS"}
	require.NoError(t, led.RecordOutcome(e))
	require.NoError(t, led.Close())

	led, err = OpenSQLite(path)
	require.NoError(t, err)
	defer led.Close()
	ok, err := led.HasSucceeded(e)
	require.NoError(t, err)
	assert.True(t, ok, "outcomes must survive process restarts")
}
