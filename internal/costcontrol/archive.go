package costcontrol

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Archive persists ledger entries to sqlite so the daily ceiling survives
// process restarts. The in-memory ledger stays authoritative within a run;
// the archive is consulted only to seed today's baseline at startup.
type Archive struct {
	db *sql.DB
}

const archiveSchema = `
CREATE TABLE IF NOT EXISTS ledger (
	ts            TEXT NOT NULL,
	day           TEXT NOT NULL,
	endpoint      TEXT NOT NULL,
	model         TEXT NOT NULL,
	caller        TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	cost          REAL NOT NULL,
	cached        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_day ON ledger(day);
`

// OpenArchive opens (and if needed initializes) the sqlite archive at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger archive: %w", err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Insert mirrors one ledger entry into the archive.
func (a *Archive) Insert(e Entry) error {
	_, err := a.db.Exec(
		`INSERT INTO ledger (ts, day, endpoint, model, caller, input_tokens, output_tokens, cost, cached)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		dayKey(e.Timestamp.UTC()),
		e.Endpoint, e.Model, e.Caller,
		e.InputTokens, e.OutputTokens, e.Cost,
		boolToInt(e.Cached),
	)
	return err
}

// DailyTotal sums archived spend for one YYYY-MM-DD day.
func (a *Archive) DailyTotal(day string) (float64, error) {
	row := a.db.QueryRow(`SELECT COALESCE(SUM(cost), 0) FROM ledger WHERE day = ?`, day)
	var total float64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
