package repository

import notedomain "resurface-backend/internal/note/domain"

// DocumentRepository defines the interface for canonical document storage.
// Documents are only mutated through the ingestion pipeline's resolver
// decisions.
type DocumentRepository interface {
	FindByExternalID(connectionID, externalID string) (*notedomain.Document, error)
	Create(doc *notedomain.Document) error
	Save(doc *notedomain.Document) error
	FindByIDs(ids []string) (map[string]*notedomain.Document, error)
	// HashesByIDs returns content hashes for the given document ids, used by
	// the digest runner's consistency check before a send.
	HashesByIDs(ids []string) (map[string]string, error)
}
