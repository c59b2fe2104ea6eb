package repository

import (
	sequencedomain "resurface-backend/internal/sequence/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sequenceStateRepository implements SequenceStateRepository backed by GORM
type sequenceStateRepository struct {
	db *gorm.DB
}

func NewSequenceStateRepository(db *gorm.DB) SequenceStateRepository {
	return &sequenceStateRepository{db: db}
}

func (r *sequenceStateRepository) FindActive() ([]*sequencedomain.SequenceState, error) {
	var states []*sequencedomain.SequenceState
	err := r.db.Where("status = ?", sequencedomain.SequenceActive).
		Order("entered_at ASC").
		Find(&states).Error
	return states, err
}

func (r *sequenceStateRepository) CreateIfAbsent(state *sequencedomain.SequenceState) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "sequence_name"}},
		DoNothing: true,
	}).Create(state)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *sequenceStateRepository) Save(state *sequencedomain.SequenceState) error {
	return r.db.Save(state).Error
}
