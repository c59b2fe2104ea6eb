package usecase

import (
	"context"
	"log"
	"time"

	notedomain "resurface-backend/internal/note/domain"
	noterepo "resurface-backend/internal/note/repository"
	"resurface-backend/internal/note/source"
)

// SyncReport summarizes one re-sync run across connections.
type SyncReport struct {
	Connections int `json:"connections"`
	Synced      int `json:"synced"`
	Failed      int `json:"failed"`
	Accepted    int `json:"accepted"`
	Skipped     int `json:"skipped"`
	Rejected    int `json:"rejected"`
}

// Syncer re-pulls all active connections of one source kind through the
// ingestion pipeline. Connections are processed one at a time with a fixed
// delay in between so the source API is never bursted.
type Syncer struct {
	connections noterepo.ConnectionRepository
	cursors     noterepo.SyncCursorRepository
	pipeline    *Pipeline
	adapters    *source.Registry
	delay       time.Duration
}

func NewSyncer(connections noterepo.ConnectionRepository, cursors noterepo.SyncCursorRepository, pipeline *Pipeline, adapters *source.Registry, delay time.Duration) *Syncer {
	return &Syncer{
		connections: connections,
		cursors:     cursors,
		pipeline:    pipeline,
		adapters:    adapters,
		delay:       delay,
	}
}

// SyncAllForKind pulls and ingests every active connection of the given
// kind. A failing connection is logged and skipped; the run continues.
func (s *Syncer) SyncAllForKind(ctx context.Context, kind notedomain.SourceKind, now time.Time) (*SyncReport, error) {
	adapter, err := s.adapters.Get(kind)
	if err != nil {
		return nil, err
	}

	conns, err := s.connections.FindActiveByKind(kind)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Connections: len(conns)}
	log.Printf("[SourceSync] syncing %d active %s connections", len(conns), kind)

	for i, conn := range conns {
		if i > 0 && s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}

		if err := s.syncConnection(ctx, adapter, conn, now, report); err != nil {
			log.Printf("[SourceSync] connection %s failed: %v", conn.ID, err)
			report.Failed++
			continue
		}
		report.Synced++
	}

	log.Printf("[SourceSync] done: %d synced, %d failed (accepted=%d skipped=%d rejected=%d)",
		report.Synced, report.Failed, report.Accepted, report.Skipped, report.Rejected)
	return report, nil
}

func (s *Syncer) syncConnection(ctx context.Context, adapter source.Adapter, conn *notedomain.Connection, now time.Time, report *SyncReport) error {
	var cursor *source.Cursor
	stored, err := s.cursors.Get(conn.ID)
	if err != nil {
		return err
	}
	if stored != nil {
		cursor = &source.Cursor{
			LastSyncAt: stored.LastIncrementalSyncAt,
			Token:      stored.ContinuationToken,
		}
	}

	batch, err := adapter.Pull(ctx, source.Scope{ConnectionID: conn.ID, UserID: conn.UserID}, cursor)
	if err != nil {
		return err
	}

	result, err := s.pipeline.Run(ctx, conn, batch.Items, now, batch.NextCursor)
	if result != nil {
		report.Accepted += result.Accepted
		report.Skipped += result.Skipped
		report.Rejected += result.Rejected
	}
	return err
}
