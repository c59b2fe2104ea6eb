package repository

import (
	"time"

	senddomain "resurface-backend/internal/send/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sendRecordRepository implements SendRecordRepository backed by GORM
type sendRecordRepository struct {
	db *gorm.DB
}

func NewSendRecordRepository(db *gorm.DB) SendRecordRepository {
	return &sendRecordRepository{db: db}
}

func (r *sendRecordRepository) Record(record *senddomain.SendRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	// Conflicting idempotency keys are replays; keep the original row.
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(record).Error
}

func (r *sendRecordRepository) FindByProviderMessageID(providerMessageID string) (*senddomain.SendRecord, error) {
	var record senddomain.SendRecord
	err := r.db.Where("provider_message_id = ?", providerMessageID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *sendRecordRepository) MarkOpened(providerMessageID string, at time.Time) error {
	return r.db.Model(&senddomain.SendRecord{}).
		Where("provider_message_id = ? AND opened_at IS NULL", providerMessageID).
		Update("opened_at", at).Error
}

func (r *sendRecordRepository) MarkClicked(providerMessageID string, at time.Time) error {
	return r.db.Model(&senddomain.SendRecord{}).
		Where("provider_message_id = ? AND clicked_at IS NULL", providerMessageID).
		Update("clicked_at", at).Error
}
