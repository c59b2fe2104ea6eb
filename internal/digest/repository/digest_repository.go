package repository

import (
	"time"

	digestdomain "resurface-backend/internal/digest/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// digestRepository implements DigestRepository backed by GORM
type digestRepository struct {
	db *gorm.DB
}

func NewDigestRepository(db *gorm.DB) DigestRepository {
	return &digestRepository{db: db}
}

func (r *digestRepository) ReplaceScheduled(userID string, scheduledFor time.Time, items []*digestdomain.DigestItem) (*digestdomain.Digest, error) {
	now := time.Now()

	status := digestdomain.DigestScheduled
	if len(items) == 0 {
		status = digestdomain.DigestSkipped
	}

	var digest *digestdomain.Digest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing digestdomain.Digest
		err := tx.Where("user_id = ? AND status = ?", userID, digestdomain.DigestScheduled).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			existing = digestdomain.Digest{
				ID:        uuid.New().String(),
				UserID:    userID,
				CreatedAt: now,
			}
			existing.Status = status
			existing.ScheduledFor = scheduledFor
			existing.UpdatedAt = now
			if err := tx.Create(&existing).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			existing.Status = status
			existing.ScheduledFor = scheduledFor
			existing.UpdatedAt = now
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			if err := tx.Where("digest_id = ?", existing.ID).Delete(&digestdomain.DigestItem{}).Error; err != nil {
				return err
			}
		}

		for _, item := range items {
			item.ID = uuid.New().String()
			item.DigestID = existing.ID
			item.CreatedAt = now
		}
		if len(items) > 0 {
			if err := tx.Create(items).Error; err != nil {
				return err
			}
		}

		digest = &existing
		return nil
	})
	return digest, err
}

func (r *digestRepository) FindScheduled() ([]*digestdomain.Digest, error) {
	var digests []*digestdomain.Digest
	err := r.db.Where("status = ?", digestdomain.DigestScheduled).
		Order("scheduled_for ASC").
		Find(&digests).Error
	return digests, err
}

func (r *digestRepository) ItemsByDigest(digestID string) ([]*digestdomain.DigestItem, error) {
	var items []*digestdomain.DigestItem
	err := r.db.Where("digest_id = ?", digestID).Order("position ASC").Find(&items).Error
	return items, err
}

func (r *digestRepository) MarkSent(digestID string, sentAt time.Time) error {
	return r.db.Model(&digestdomain.Digest{}).
		Where("id = ? AND status = ?", digestID, digestdomain.DigestScheduled).
		Updates(map[string]interface{}{
			"status":     digestdomain.DigestSent,
			"sent_at":    sentAt,
			"updated_at": time.Now(),
		}).Error
}

func (r *digestRepository) MarkFailed(digestID string, reason string) error {
	return r.db.Model(&digestdomain.Digest{}).
		Where("id = ?", digestID).
		Updates(map[string]interface{}{
			"status":         digestdomain.DigestFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		}).Error
}

func (r *digestRepository) LastSentAtByUsers(userIDs []string) (map[string]time.Time, error) {
	return r.sentAtByUsers(userIDs, "MAX(sent_at)")
}

func (r *digestRepository) FirstSentAtByUsers(userIDs []string) (map[string]time.Time, error) {
	return r.sentAtByUsers(userIDs, "MIN(sent_at)")
}

func (r *digestRepository) sentAtByUsers(userIDs []string, aggregate string) (map[string]time.Time, error) {
	result := make(map[string]time.Time, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		UserID string
		SentAt time.Time
	}
	err := r.db.Model(&digestdomain.Digest{}).
		Select("user_id", aggregate+" AS sent_at").
		Where("user_id IN ? AND status = ?", userIDs, digestdomain.DigestSent).
		Group("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.UserID] = row.SentAt
	}
	return result, nil
}

func (r *digestRepository) UserIDsWithSentCountAtLeast(n int) ([]string, error) {
	var ids []string
	err := r.db.Model(&digestdomain.Digest{}).
		Select("user_id").
		Where("status = ?", digestdomain.DigestSent).
		Group("user_id").
		Having("COUNT(*) >= ?", n).
		Find(&ids).Error
	return ids, err
}
