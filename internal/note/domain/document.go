package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Document is the canonical store row for one external note, unique per
// (user, connection, external id). Documents are never hard-deleted: a delete
// from the source sets DeletedAtSource (the tombstone) and keeps the row, so
// replayed or out-of-order events always have something to compare against.
type Document struct {
	ID              string            `json:"id" gorm:"primaryKey"`
	UserID          string            `json:"user_id" gorm:"not null;index;uniqueIndex:idx_doc_identity,priority:1"`
	ConnectionID    string            `json:"connection_id" gorm:"not null;uniqueIndex:idx_doc_identity,priority:2"`
	ExternalID      string            `json:"external_id" gorm:"not null;uniqueIndex:idx_doc_identity,priority:3"`
	Title           string            `json:"title"`
	Content         string            `json:"content" gorm:"type:text"`
	ContentEncoding string            `json:"content_encoding" gorm:"default:'markdown'"`
	ContentHash     string            `json:"content_hash" gorm:"index"`
	CreatedAtSource *time.Time        `json:"created_at_source,omitempty"`
	UpdatedAtSource *time.Time        `json:"updated_at_source,omitempty"`
	DeletedAtSource *time.Time        `json:"deleted_at_source,omitempty" gorm:"index"`
	LastSyncedAt    time.Time         `json:"last_synced_at"`
	Metadata        datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Tombstoned reports whether the document is marked deleted at the source.
func (d *Document) Tombstoned() bool {
	return d.DeletedAtSource != nil
}

// SourceTime is the latest source-side timestamp known for this document,
// across updates and deletion. Nil when the document carries no source
// timestamps at all.
func (d *Document) SourceTime() *time.Time {
	switch {
	case d.UpdatedAtSource == nil:
		return d.DeletedAtSource
	case d.DeletedAtSource == nil:
		return d.UpdatedAtSource
	case d.DeletedAtSource.After(*d.UpdatedAtSource):
		return d.DeletedAtSource
	default:
		return d.UpdatedAtSource
	}
}
