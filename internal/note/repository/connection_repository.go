package repository

import (
	"time"

	notedomain "resurface-backend/internal/note/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) FindByID(id string) (*notedomain.Connection, error) {
	var conn notedomain.Connection
	err := r.db.Where("id = ?", id).First(&conn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) FindActiveByKind(kind notedomain.SourceKind) ([]*notedomain.Connection, error) {
	var conns []*notedomain.Connection
	err := r.db.Where("source_kind = ? AND status = ?", kind, notedomain.ConnectionActive).
		Order("created_at ASC").
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepository) HasAnyByUsers(userIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		UserID string
	}
	err := r.db.Model(&notedomain.Connection{}).
		Distinct("user_id").
		Where("user_id IN ?", userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.UserID] = true
	}
	return result, nil
}

type syncCursorRepository struct {
	db *gorm.DB
}

func NewSyncCursorRepository(db *gorm.DB) SyncCursorRepository {
	return &syncCursorRepository{db: db}
}

func (r *syncCursorRepository) Get(connectionID string) (*notedomain.SyncCursor, error) {
	var cursor notedomain.SyncCursor
	err := r.db.Where("connection_id = ?", connectionID).First(&cursor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cursor, nil
}

func (r *syncCursorRepository) Upsert(cursor *notedomain.SyncCursor) error {
	cursor.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "connection_id"}},
		UpdateAll: true,
	}).Create(cursor).Error
}

type scopeItemRepository struct {
	db *gorm.DB
}

func NewScopeItemRepository(db *gorm.DB) ScopeItemRepository {
	return &scopeItemRepository{db: db}
}

func (r *scopeItemRepository) FindEnabledByConnection(connectionID string) ([]*notedomain.ScopeItem, error) {
	var items []*notedomain.ScopeItem
	err := r.db.Where("connection_id = ? AND enabled = ?", connectionID, true).Find(&items).Error
	return items, err
}
