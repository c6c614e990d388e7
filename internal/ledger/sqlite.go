package ledger

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	id          INTEGER PRIMARY KEY,
	source      TEXT NOT NULL,
	output      TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	state       TEXT NOT NULL,
	finished_at TEXT NOT NULL
);`

// SQLiteLedger stores outcomes in a sqlite database, keyed by item
// identity hash. Unlike the path ledger it remembers FAILED outcomes too,
// which makes post-run auditing queries possible.
type SQLiteLedger struct {
	mu sync.Mutex // sqlite allows one writer at a time
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the ledger database at path.
func OpenSQLite(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

func (l *SQLiteLedger) HasSucceeded(e Entry) (bool, error) {
	var state string
	err := l.db.QueryRow(`SELECT state FROM outcomes WHERE id = ?`, int64(e.ID)).Scan(&state)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return state == "SUCCESS", nil
}

func (l *SQLiteLedger) RecordOutcome(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.Exec(`
		INSERT INTO outcomes (id, source, output, strategy, state, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			finished_at = excluded.finished_at`,
		int64(e.ID), e.Source, e.Output, e.Strategy, e.State,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) Close() error { return l.db.Close() }
