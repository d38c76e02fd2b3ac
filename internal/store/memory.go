package store

import "time"

// MemoryStore is an in-memory Store for tests and diskless runs.
type MemoryStore struct {
	// LastDose is the stored timestamp; zero means nothing stored.
	LastDose time.Time

	// LoadError, if set, is returned (with def) by LoadLastDose.
	LoadError error

	// SetError, if set, is returned by SetLastDose.
	SetError error

	// Writes counts SetLastDose calls.
	Writes int

	// Closed tracks if Close was called.
	Closed bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadLastDose returns the stored timestamp or def if none is stored.
func (m *MemoryStore) LoadLastDose(def time.Time) (time.Time, error) {
	if m.LoadError != nil {
		return def, m.LoadError
	}
	if m.LastDose.IsZero() {
		return def, nil
	}
	return m.LastDose, nil
}

// SetLastDose stores the timestamp.
func (m *MemoryStore) SetLastDose(t time.Time) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.LastDose = t
	m.Writes++
	return nil
}

// Close marks the store as closed.
func (m *MemoryStore) Close() error {
	m.Closed = true
	return nil
}
