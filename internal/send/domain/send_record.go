package domain

import "time"

// SendRecord is the append-only log of outbound emails. The idempotency key
// is the dedup boundary: inserting the same key twice is a no-op, so a
// replayed send leaves a single record.
type SendRecord struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	UserID            string     `json:"user_id" gorm:"not null;index"`
	ContentID         string     `json:"content_id" gorm:"not null"`
	IdempotencyKey    string     `json:"idempotency_key" gorm:"not null;uniqueIndex"`
	ProviderMessageID string     `json:"provider_message_id" gorm:"index"`
	OpenedAt          *time.Time `json:"opened_at,omitempty"`
	ClickedAt         *time.Time `json:"clicked_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
