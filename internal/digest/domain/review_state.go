package domain

import "time"

type ReviewStatus string

const (
	ReviewActive   ReviewStatus = "active"
	ReviewArchived ReviewStatus = "archived"
)

// ReviewState is the per-(user, document) resurfacing state consumed by the
// selection function and advanced after each send. Its ranking semantics are
// owned by the selector.
type ReviewState struct {
	ID                 string       `json:"id" gorm:"primaryKey"`
	UserID             string       `json:"user_id" gorm:"not null;index;uniqueIndex:idx_review_identity,priority:1"`
	DocumentID         string       `json:"document_id" gorm:"not null;uniqueIndex:idx_review_identity,priority:2"`
	Status             ReviewStatus `json:"status" gorm:"default:'active';index"`
	NextDueAt          *time.Time   `json:"next_due_at,omitempty"`
	LastSentAt         *time.Time   `json:"last_sent_at,omitempty"`
	PriorityWeight     int          `json:"priority_weight" gorm:"default:0"`
	DeprioritizedUntil *time.Time   `json:"deprioritized_until,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}
