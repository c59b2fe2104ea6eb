package repository

import (
	"time"

	notedomain "resurface-backend/internal/note/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// documentRepository implements DocumentRepository backed by GORM
type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) FindByExternalID(connectionID, externalID string) (*notedomain.Document, error) {
	var doc notedomain.Document
	err := r.db.Where("connection_id = ? AND external_id = ?", connectionID, externalID).First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Create(doc *notedomain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return r.db.Create(doc).Error
}

func (r *documentRepository) Save(doc *notedomain.Document) error {
	doc.UpdatedAt = time.Now()
	return r.db.Save(doc).Error
}

func (r *documentRepository) FindByIDs(ids []string) (map[string]*notedomain.Document, error) {
	result := make(map[string]*notedomain.Document, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var docs []*notedomain.Document
	if err := r.db.Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return nil, err
	}
	for _, d := range docs {
		result[d.ID] = d
	}
	return result, nil
}

func (r *documentRepository) HashesByIDs(ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []struct {
		ID          string
		ContentHash string
	}
	err := r.db.Model(&notedomain.Document{}).
		Select("id", "content_hash").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.ContentHash
	}
	return result, nil
}
