package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists timestamps in a SQLite key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value INTEGER NOT NULL
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// LoadLastDose reads the lastpill timestamp, falling back to def when the
// key is absent or unreadable. The error is informational; callers log it
// and proceed with def.
func (s *SQLiteStore) LoadLastDose(def time.Time) (time.Time, error) {
	var epoch int64
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, KeyLastPill).Scan(&epoch)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("load %s: %w", KeyLastPill, err)
	}
	if epoch <= 0 {
		return def, fmt.Errorf("load %s: corrupt value %d", KeyLastPill, epoch)
	}
	return time.Unix(epoch, 0), nil
}

// SetLastDose upserts the lastpill timestamp as epoch seconds.
func (s *SQLiteStore) SetLastDose(t time.Time) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		KeyLastPill, t.Unix())
	if err != nil {
		return fmt.Errorf("store %s: %w", KeyLastPill, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
