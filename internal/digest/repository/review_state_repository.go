package repository

import (
	"time"

	digestdomain "resurface-backend/internal/digest/domain"

	"gorm.io/gorm"
)

// reviewStateRepository implements ReviewStateRepository backed by GORM
type reviewStateRepository struct {
	db *gorm.DB
}

func NewReviewStateRepository(db *gorm.DB) ReviewStateRepository {
	return &reviewStateRepository{db: db}
}

func (r *reviewStateRepository) FindByUser(userID string) ([]*digestdomain.ReviewState, error) {
	var states []*digestdomain.ReviewState
	err := r.db.Where("user_id = ?", userID).Find(&states).Error
	return states, err
}

func (r *reviewStateRepository) MarkSent(userID string, documentIDs []string, sentAt time.Time, nextDueAt time.Time) error {
	if len(documentIDs) == 0 {
		return nil
	}
	return r.db.Model(&digestdomain.ReviewState{}).
		Where("user_id = ? AND document_id IN ?", userID, documentIDs).
		Updates(map[string]interface{}{
			"last_sent_at": sentAt,
			"next_due_at":  nextDueAt,
			"updated_at":   time.Now(),
		}).Error
}
