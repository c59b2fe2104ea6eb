package repository

import notedomain "resurface-backend/internal/note/domain"

// ConnectionRepository defines the interface for source connection lookups.
type ConnectionRepository interface {
	FindByID(id string) (*notedomain.Connection, error)
	FindActiveByKind(kind notedomain.SourceKind) ([]*notedomain.Connection, error)
	// HasAnyByUsers reports, per user id, whether the user has connected at
	// least one source. Consulted by the welcome sequence's exit check.
	HasAnyByUsers(userIDs []string) (map[string]bool, error)
}

// SyncCursorRepository persists the resumable sync position per connection.
type SyncCursorRepository interface {
	Get(connectionID string) (*notedomain.SyncCursor, error)
	Upsert(cursor *notedomain.SyncCursor) error
}

// ScopeItemRepository provides a connection's declared sync scope.
type ScopeItemRepository interface {
	FindEnabledByConnection(connectionID string) ([]*notedomain.ScopeItem, error)
}
