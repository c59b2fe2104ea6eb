package repository

import (
	sequencedomain "resurface-backend/internal/sequence/domain"
)

// SequenceStateRepository defines the interface for sequence progress
// persistence. Entry is insert-if-absent on (user, sequence name): a user
// who already holds a row for a sequence, terminal or not, is never
// re-entered.
type SequenceStateRepository interface {
	FindActive() ([]*sequencedomain.SequenceState, error)
	// CreateIfAbsent inserts the state unless a row for the same user and
	// sequence already exists. Returns true when a row was inserted.
	CreateIfAbsent(state *sequencedomain.SequenceState) (bool, error)
	Save(state *sequencedomain.SequenceState) error
}
