package repository

import (
	"time"

	senddomain "resurface-backend/internal/send/domain"
)

// SendRecordRepository defines the interface for the outbound send log.
type SendRecordRepository interface {
	// Record appends a send record. Recording an idempotency key that
	// already exists is a no-op.
	Record(record *senddomain.SendRecord) error
	FindByProviderMessageID(providerMessageID string) (*senddomain.SendRecord, error)
	MarkOpened(providerMessageID string, at time.Time) error
	MarkClicked(providerMessageID string, at time.Time) error
}
