package domain

import "time"

type DigestStatus string

const (
	DigestScheduled DigestStatus = "scheduled"
	DigestSent      DigestStatus = "sent"
	DigestFailed    DigestStatus = "failed"
	DigestSkipped   DigestStatus = "skipped"
)

// Digest is one send occurrence for one user. Status is terminal until the
// next generation run replaces the digest.
type Digest struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	UserID        string       `json:"user_id" gorm:"not null;index"`
	Status        DigestStatus `json:"status" gorm:"default:'scheduled';index"`
	ScheduledFor  time.Time    `json:"scheduled_for"`
	SentAt        *time.Time   `json:"sent_at,omitempty"`
	FailureReason string       `json:"failure_reason,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// DigestItem pins one selected document into a digest. ContentHash is the
// document's hash at selection time, so drift between selection and send is
// detectable.
type DigestItem struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	DigestID    string    `json:"digest_id" gorm:"not null;index"`
	DocumentID  string    `json:"document_id" gorm:"not null"`
	Position    int       `json:"position" gorm:"not null"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}
