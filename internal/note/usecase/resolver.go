package usecase

import (
	"time"

	notedomain "resurface-backend/internal/note/domain"
)

// Reason explains a resolver decision.
type Reason string

const (
	ReasonCreated   Reason = "created"
	ReasonUpdated   Reason = "updated"
	ReasonDeleted   Reason = "deleted"
	ReasonStale     Reason = "stale"
	ReasonUnchanged Reason = "unchanged"
)

// Decision is the resolver's verdict for one event against the stored
// snapshot.
type Decision struct {
	Apply  bool
	Reason Reason
}

// Resolve decides whether an incoming event may mutate the stored document.
// It is a pure function over (existing snapshot, event, receipt time): two
// replicas processing the same event stream converge to the same state
// without locking.
//
// The ordering rules:
//   - events strictly older than the document's latest source time are stale
//   - an upsert tying with a tombstone loses (a deletion wins ties)
//   - an upsert tying with unchanged content is a no-op replay
//   - a delete must be strictly newer than the document to apply, so a
//     re-delivered delete at the same instant counts as already applied
func Resolve(existing *notedomain.Document, event notedomain.Event, receivedAt time.Time) Decision {
	eventTime := receivedAt
	if t := event.EventTime(); t != nil {
		eventTime = *t
	}

	if existing == nil {
		switch event.(type) {
		case notedomain.DeleteEvent:
			// Tombstone-first creation: the only case where a delete
			// inserts a row.
			return Decision{Apply: true, Reason: ReasonDeleted}
		default:
			return Decision{Apply: true, Reason: ReasonCreated}
		}
	}

	existingTime := existing.SourceTime()

	if existingTime != nil && eventTime.Before(*existingTime) {
		return Decision{Apply: false, Reason: ReasonStale}
	}

	switch ev := event.(type) {
	case notedomain.UpsertEvent:
		if existingTime != nil && eventTime.Equal(*existingTime) {
			if existing.Tombstoned() {
				return Decision{Apply: false, Reason: ReasonStale}
			}
			if ev.ContentHash == existing.ContentHash {
				return Decision{Apply: false, Reason: ReasonUnchanged}
			}
		}
		return Decision{Apply: true, Reason: ReasonUpdated}
	case notedomain.DeleteEvent:
		if existingTime != nil && !eventTime.After(*existingTime) {
			return Decision{Apply: false, Reason: ReasonStale}
		}
		return Decision{Apply: true, Reason: ReasonDeleted}
	default:
		return Decision{Apply: false, Reason: ReasonStale}
	}
}
