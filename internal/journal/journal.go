// Package journal provides a SQLite-backed telemetry journal: simulation
// events, per-request path outcomes, and run metadata. Grid and cell
// state are never written here; the journal records what happened, not
// the world.
package journal

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for the event journal.
type DB struct {
	conn *sqlx.DB
}

// Event is one journaled occurrence: a chunk load, a path delivery, a
// terrain change.
type Event struct {
	Tick        uint64 `db:"tick" json:"tick"`
	Category    string `db:"category" json:"category"`
	Description string `db:"description" json:"description"`
}

// PathRecord is the journaled outcome of one path request.
type PathRecord struct {
	RequestID int64  `db:"request_id" json:"request_id"`
	Tick      uint64 `db:"tick" json:"tick"`
	StartQ    int    `db:"start_q" json:"start_q"`
	StartR    int    `db:"start_r" json:"start_r"`
	GoalQ     int    `db:"goal_q" json:"goal_q"`
	GoalR     int    `db:"goal_r" json:"goal_r"`
	Steps     int    `db:"steps" json:"steps"`
	Outcome   string `db:"outcome" json:"outcome"` // "done" or "failed"
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS path_records (
		request_id INTEGER PRIMARY KEY,
		tick INTEGER NOT NULL,
		start_q INTEGER NOT NULL,
		start_r INTEGER NOT NULL,
		goal_q INTEGER NOT NULL,
		goal_r INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_path_records_tick ON path_records(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// AppendEvents writes a batch of events in one transaction.
func (db *DB) AppendEvents(events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		if _, err := tx.Exec(
			"INSERT INTO events (tick, category, description) VALUES (?, ?, ?)",
			e.Tick, e.Category, e.Description,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AppendPathRecords writes a batch of path outcomes in one transaction.
func (db *DB) AppendPathRecords(records []PathRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO path_records
		(request_id, tick, start_q, start_r, goal_q, goal_r, steps, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			r.RequestID, r.Tick, r.StartQ, r.StartR, r.GoalQ, r.GoalR, r.Steps, r.Outcome,
		); err != nil {
			return fmt.Errorf("insert path record %d: %w", r.RequestID, err)
		}
	}
	return tx.Commit()
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE key = ?", key)
	return value, err
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		"SELECT tick, category, description FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// PathRecords returns the journaled outcome for the most recent N
// requests, newest first.
func (db *DB) PathRecords(limit int) ([]PathRecord, error) {
	var records []PathRecord
	err := db.conn.Select(&records,
		`SELECT request_id, tick, start_q, start_r, goal_q, goal_r, steps, outcome
		 FROM path_records ORDER BY request_id DESC LIMIT ?`,
		limit,
	)
	return records, err
}

// Flush logs a summary of journal size. Called on shutdown.
func (db *DB) Flush() {
	var events, paths int
	db.conn.Get(&events, "SELECT COUNT(*) FROM events")
	db.conn.Get(&paths, "SELECT COUNT(*) FROM path_records")
	slog.Info("journal flushed", "events", events, "path_records", paths)
}
