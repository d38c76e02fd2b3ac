// Package store persists the last-dose timestamp across power cycles.
// The real implementation keeps a single-row key/value table in SQLite;
// the memory implementation backs tests and diskless runs.
package store

import "time"

// KeyLastPill is the durable key holding the last-dose epoch seconds.
const KeyLastPill = "lastpill"

// Store durably stores and retrieves the last-dose timestamp.
type Store interface {
	// LoadLastDose returns the persisted timestamp, or def if none is
	// stored or the stored value is unreadable. It never fails boot.
	LoadLastDose(def time.Time) (time.Time, error)

	// SetLastDose writes the timestamp synchronously. Dose confirmation
	// is a rare, human-paced event, so a blocking write is fine.
	SetLastDose(t time.Time) error

	// Close releases storage resources.
	Close() error
}
