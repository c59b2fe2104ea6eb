package source

import (
	"context"
	"fmt"
	"time"

	notedomain "resurface-backend/internal/note/domain"
)

// Scope identifies whose data an adapter pull is for.
type Scope struct {
	ConnectionID string
	UserID       string
}

// Cursor is the resumable position handed back to an adapter on the next
// pull.
type Cursor struct {
	LastSyncAt time.Time
	Token      *string
}

// PullStats describes what a pull saw at the source.
type PullStats struct {
	Pulled int `json:"pulled"`
}

// Batch is one incremental delta from a source.
type Batch struct {
	Items      []map[string]interface{}
	NextCursor *string
	Stats      PullStats
}

// Adapter pulls incremental changes from one source kind. Concrete adapters
// live outside this module; the sync job only depends on this contract.
type Adapter interface {
	Pull(ctx context.Context, scope Scope, cursor *Cursor) (*Batch, error)
}

// Registry maps source kinds to their adapters.
type Registry struct {
	adapters map[notedomain.SourceKind]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[notedomain.SourceKind]Adapter)}
}

func (r *Registry) Register(kind notedomain.SourceKind, adapter Adapter) {
	r.adapters[kind] = adapter
}

func (r *Registry) Get(kind notedomain.SourceKind) (Adapter, error) {
	adapter, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for source kind %q", kind)
	}
	return adapter, nil
}
