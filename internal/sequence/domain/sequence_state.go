package domain

import "time"

type SequenceStatus string

const (
	SequenceActive    SequenceStatus = "active"
	SequenceCompleted SequenceStatus = "completed"
	SequenceExited    SequenceStatus = "exited"
)

// SequenceState tracks one user's progress through one drip sequence, unique
// per (user, sequence name). Completed and exited are terminal: a row never
// re-enters active, so a user goes through each sequence at most once.
type SequenceState struct {
	ID              string         `json:"id" gorm:"primaryKey"`
	UserID          string         `json:"user_id" gorm:"not null;index;uniqueIndex:idx_sequence_identity,priority:1"`
	SequenceName    string         `json:"sequence_name" gorm:"not null;uniqueIndex:idx_sequence_identity,priority:2"`
	CurrentStep     int            `json:"current_step" gorm:"default:1"`
	Status          SequenceStatus `json:"status" gorm:"default:'active';index"`
	ExitReason      string         `json:"exit_reason,omitempty"`
	EnteredAt       time.Time      `json:"entered_at"`
	LastEmailSentAt *time.Time     `json:"last_email_sent_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Terminal reports whether the state can no longer advance.
func (s *SequenceState) Terminal() bool {
	return s.Status == SequenceCompleted || s.Status == SequenceExited
}
