// Package history records drop status transitions into a local sqlite
// database so a monitoring run leaves a queryable trail after the session
// ends.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rclarkson/dropwatch/internal/feed"
)

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	oid     TEXT NOT NULL,
	status  TEXT NOT NULL,
	at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_session ON transitions(session, at);
`

// Transition is one recorded status change.
type Transition struct {
	Session string
	OID     string
	Status  string
	At      time.Time
}

// Recorder persists status transitions. Record is safe to call from the
// feed goroutine while the UI runs.
type Recorder struct {
	db *sql.DB

	mu   sync.Mutex
	last map[string]string // oid -> last recorded status
	now  func() time.Time
}

// Open creates or opens the history database at path.
func Open(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Recorder{
		db:   db,
		last: make(map[string]string),
		now:  time.Now,
	}, nil
}

// Record writes one row per drop whose status differs from the last status
// recorded for it. Unchanged drops produce no rows, so a long quiet session
// stays cheap.
func (r *Recorder) Record(sessionID string, snap feed.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed []Transition
	at := r.now().UTC()
	for _, oid := range snap.OrderedIDs {
		drop, ok := snap.Drops[oid]
		if !ok {
			continue
		}
		if r.last[oid] == drop.Status {
			continue
		}
		r.last[oid] = drop.Status
		changed = append(changed, Transition{Session: sessionID, OID: oid, Status: drop.Status, At: at})
	}
	if len(changed) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO transitions(session, oid, status, at) VALUES(?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()
	for _, t := range changed {
		if _, err := stmt.Exec(t.Session, t.OID, t.Status, t.At); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert transition %s/%s: %w", t.Session, t.OID, err)
		}
	}
	return tx.Commit()
}

// Transitions returns the most recent transitions of a session, newest
// first, capped at limit (0 means no cap).
func (r *Recorder) Transitions(sessionID string, limit int) ([]Transition, error) {
	query := "SELECT session, oid, status, at FROM transitions WHERE session = ? ORDER BY at DESC, id DESC"
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.Session, &t.OID, &t.Status, &t.At); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close releases the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
