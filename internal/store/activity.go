package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ActivityEntry is one row of the local AI-activity audit trail: project
// creations, generation runs, refines and exports as seen by this client.
type ActivityEntry struct {
	ID       int64     `json:"id"`
	TS       time.Time `json:"ts"`
	Kind     string    `json:"kind"`
	EntityID string    `json:"entityId"`
	Detail   string    `json:"detail,omitempty"`
}

// ActivityLog records client-side activity in a local SQLite database under
// the config dir. It is purely informational: every method is best-effort
// from the caller's point of view and nothing in the remote workflow depends
// on it.
type ActivityLog struct {
	Path string
}

// OpenActivityLog places the log next to config.json.
func OpenActivityLog() (*ActivityLog, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return &ActivityLog{Path: filepath.Join(dir, "activity.sqlite")}, nil
}

func (l *ActivityLog) open(ctx context.Context) (*sql.DB, error) {
	if err := ensureDir(filepath.Dir(l.Path)); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", l.Path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness when CLI and TUI overlap.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS activity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		kind TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT ''
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (l *ActivityLog) Append(ctx context.Context, kind, entityID, detail string) error {
	db, err := l.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx,
		`INSERT INTO activity (ts, kind, entity_id, detail) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), kind, entityID, detail,
	)
	return err
}

// Tail returns the most recent n entries, newest first.
func (l *ActivityLog) Tail(ctx context.Context, n int) ([]ActivityEntry, error) {
	if n <= 0 {
		n = 20
	}
	db, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT id, ts, kind, entity_id, detail FROM activity ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActivityEntry{}
	for rows.Next() {
		var e ActivityEntry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Kind, &e.EntityID, &e.Detail); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.TS = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
