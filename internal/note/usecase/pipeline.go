package usecase

import (
	"context"
	"log"
	"time"

	notedomain "resurface-backend/internal/note/domain"
	noterepo "resurface-backend/internal/note/repository"

	"gorm.io/datatypes"
)

const (
	StatusAccepted = "accepted"
	StatusSkipped  = "skipped"
	StatusRejected = "rejected"
)

const (
	rejectInvalidItem = "invalid_item"
	rejectServerError = "server_error"
)

// ItemOutcome is the per-item result of an ingestion batch.
type ItemOutcome struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

// RunResult summarizes one ingestion batch.
type RunResult struct {
	Outcomes []ItemOutcome `json:"outcomes"`
	Accepted int           `json:"accepted"`
	Skipped  int           `json:"skipped"`
	Rejected int           `json:"rejected"`
}

// Pipeline reconciles one batch of source items into the document store.
// Items flow scope filter -> schema validation -> conflict resolver -> store
// write; each item's failure is isolated so one bad item never aborts the
// batch. The sync cursor advances after every batch, empty ones included.
type Pipeline struct {
	documents noterepo.DocumentRepository
	cursors   noterepo.SyncCursorRepository
	scopes    noterepo.ScopeItemRepository
}

func NewPipeline(documents noterepo.DocumentRepository, cursors noterepo.SyncCursorRepository, scopes noterepo.ScopeItemRepository) *Pipeline {
	return &Pipeline{
		documents: documents,
		cursors:   cursors,
		scopes:    scopes,
	}
}

// Run processes items for one connection. nextCursor, when non-nil, replaces
// the stored continuation token.
func (p *Pipeline) Run(ctx context.Context, conn *notedomain.Connection, items []map[string]interface{}, receivedAt time.Time, nextCursor *string) (*RunResult, error) {
	result := &RunResult{}

	var filter *ScopeFilter
	if conn.SourceKind == notedomain.SourceVault {
		rules, err := p.scopes.FindEnabledByConnection(conn.ID)
		if err != nil {
			return nil, err
		}
		filter = NewScopeFilter(rules)
	}

	for _, item := range items {
		externalID, _ := item["external_id"].(string)

		if filter != nil {
			if ok, reason := filter.Apply(item, receivedAt); !ok {
				result.record(ItemOutcome{ExternalID: externalID, Status: StatusRejected, Reason: reason})
				continue
			}
		}

		if err := ValidateItem(item); err != nil {
			log.Printf("[IngestPipeline] invalid item %q on connection %s: %v", externalID, conn.ID, err)
			result.record(ItemOutcome{ExternalID: externalID, Status: StatusRejected, Reason: rejectInvalidItem})
			continue
		}

		event, err := DecodeEvent(item)
		if err != nil {
			log.Printf("[IngestPipeline] undecodable item %q on connection %s: %v", externalID, conn.ID, err)
			result.record(ItemOutcome{ExternalID: externalID, Status: StatusRejected, Reason: rejectInvalidItem})
			continue
		}

		result.record(p.applyEvent(conn, event, receivedAt))
	}

	// Cursor advancement never stalls on a bad or empty delta.
	if err := p.advanceCursor(conn.ID, receivedAt, nextCursor); err != nil {
		return result, err
	}

	return result, nil
}

func (p *Pipeline) applyEvent(conn *notedomain.Connection, event notedomain.Event, receivedAt time.Time) ItemOutcome {
	externalID := event.EventExternalID()

	existing, err := p.documents.FindByExternalID(conn.ID, externalID)
	if err != nil {
		log.Printf("[IngestPipeline] lookup failed for %q on connection %s: %v", externalID, conn.ID, err)
		return ItemOutcome{ExternalID: externalID, Status: StatusRejected, Reason: rejectServerError}
	}

	decision := Resolve(existing, event, receivedAt)
	if !decision.Apply {
		return ItemOutcome{ExternalID: externalID, Status: StatusSkipped, Reason: string(decision.Reason)}
	}

	eventTime := receivedAt
	if t := event.EventTime(); t != nil {
		eventTime = *t
	}

	if err := p.write(conn, existing, event, eventTime, receivedAt); err != nil {
		log.Printf("[IngestPipeline] write failed for %q on connection %s: %v", externalID, conn.ID, err)
		return ItemOutcome{ExternalID: externalID, Status: StatusRejected, Reason: rejectServerError}
	}

	return ItemOutcome{ExternalID: externalID, Status: StatusAccepted, Reason: string(decision.Reason)}
}

func (p *Pipeline) write(conn *notedomain.Connection, existing *notedomain.Document, event notedomain.Event, eventTime, receivedAt time.Time) error {
	switch ev := event.(type) {
	case notedomain.UpsertEvent:
		if existing == nil {
			doc := &notedomain.Document{
				UserID:          conn.UserID,
				ConnectionID:    conn.ID,
				ExternalID:      ev.ExternalID,
				Title:           ev.Title,
				Content:         ev.Content,
				ContentEncoding: ev.ContentEncoding,
				ContentHash:     ev.ContentHash,
				CreatedAtSource: ev.CreatedAt,
				UpdatedAtSource: &eventTime,
				LastSyncedAt:    receivedAt,
				Metadata:        datatypes.JSONMap(ev.Metadata),
			}
			return p.documents.Create(doc)
		}
		if ev.Title != "" {
			existing.Title = ev.Title
		}
		existing.Content = ev.Content
		existing.ContentEncoding = ev.ContentEncoding
		existing.ContentHash = ev.ContentHash
		existing.UpdatedAtSource = &eventTime
		existing.DeletedAtSource = nil // an accepted upsert revives a tombstone
		if existing.CreatedAtSource == nil {
			existing.CreatedAtSource = ev.CreatedAt
		}
		existing.LastSyncedAt = receivedAt
		mergeMetadata(existing, ev.Metadata)
		return p.documents.Save(existing)

	case notedomain.DeleteEvent:
		if existing == nil {
			doc := &notedomain.Document{
				UserID:          conn.UserID,
				ConnectionID:    conn.ID,
				ExternalID:      ev.ExternalID,
				DeletedAtSource: &eventTime,
				LastSyncedAt:    receivedAt,
				Metadata:        datatypes.JSONMap(ev.Metadata),
			}
			return p.documents.Create(doc)
		}
		// A delete only tombstones; content stays as it was.
		existing.DeletedAtSource = &eventTime
		existing.LastSyncedAt = receivedAt
		mergeMetadata(existing, ev.Metadata)
		return p.documents.Save(existing)
	}
	return nil
}

func (p *Pipeline) advanceCursor(connectionID string, receivedAt time.Time, nextCursor *string) error {
	token := nextCursor
	if token == nil {
		// Keep the previous continuation token when the caller supplied none.
		if existing, err := p.cursors.Get(connectionID); err != nil {
			return err
		} else if existing != nil {
			token = existing.ContinuationToken
		}
	}

	return p.cursors.Upsert(&notedomain.SyncCursor{
		ConnectionID:          connectionID,
		LastIncrementalSyncAt: receivedAt,
		ContinuationToken:     token,
	})
}

func (r *RunResult) record(outcome ItemOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Status {
	case StatusAccepted:
		r.Accepted++
	case StatusSkipped:
		r.Skipped++
	case StatusRejected:
		r.Rejected++
	}
}

func mergeMetadata(doc *notedomain.Document, metadata map[string]interface{}) {
	if len(metadata) == 0 {
		return
	}
	if doc.Metadata == nil {
		doc.Metadata = datatypes.JSONMap{}
	}
	for k, v := range metadata {
		doc.Metadata[k] = v
	}
}
