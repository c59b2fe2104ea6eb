package domain

import "time"

// Event is a change delivered by a source adapter: either an upsert or a
// delete. The two shapes are distinct types so downstream code dispatches on
// the variant instead of sniffing optional fields.
type Event interface {
	EventExternalID() string
	// EventTime is the source timestamp of the change; nil when the source
	// supplied none (the pipeline substitutes the batch receipt time).
	EventTime() *time.Time
}

// UpsertEvent creates or updates a document's content.
type UpsertEvent struct {
	ExternalID      string
	Title           string
	Content         string
	ContentEncoding string
	ContentHash     string
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
	Metadata        map[string]interface{}
}

func (e UpsertEvent) EventExternalID() string { return e.ExternalID }
func (e UpsertEvent) EventTime() *time.Time   { return e.UpdatedAt }

// DeleteEvent tombstones a document. A delete for an unknown external id
// still creates a (tombstoned) row, so a delete arriving before its create
// is absorbed rather than lost.
type DeleteEvent struct {
	ExternalID string
	DeletedAt  *time.Time
	Metadata   map[string]interface{}
}

func (e DeleteEvent) EventExternalID() string { return e.ExternalID }
func (e DeleteEvent) EventTime() *time.Time   { return e.DeletedAt }
