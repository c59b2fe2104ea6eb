package domain

import "time"

type SourceKind string

const (
	SourcePages SourceKind = "pages" // hosted page/database service
	SourceVault SourceKind = "vault" // local vault plugin
)

type ConnectionStatus string

const (
	ConnectionActive ConnectionStatus = "active"
	ConnectionPaused ConnectionStatus = "paused"
)

// Connection is one user's link to an external note source.
type Connection struct {
	ID         string           `json:"id" gorm:"primaryKey"`
	UserID     string           `json:"user_id" gorm:"not null;index"`
	SourceKind SourceKind       `json:"source_kind" gorm:"not null;index"`
	Status     ConnectionStatus `json:"status" gorm:"default:'active';index"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// SyncCursor is the resumable position of incremental sync for one
// connection. It advances after every ingestion batch, including empty ones.
type SyncCursor struct {
	ConnectionID          string    `json:"connection_id" gorm:"primaryKey"`
	LastIncrementalSyncAt time.Time `json:"last_incremental_sync_at"`
	ContinuationToken     *string   `json:"continuation_token,omitempty"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type ScopeKind string

const (
	ScopeResource ScopeKind = "resource" // exact external sub-resource id
	ScopePath     ScopeKind = "path"     // glob pattern over vault paths
)

// ScopeItem is one declared inclusion rule for a connection's sync scope.
type ScopeItem struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	ConnectionID string    `json:"connection_id" gorm:"not null;index"`
	Kind         ScopeKind `json:"kind" gorm:"not null"`
	Value        string    `json:"value" gorm:"not null"`
	Enabled      bool      `json:"enabled" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
