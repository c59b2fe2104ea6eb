package repository

import (
	"time"

	digestdomain "resurface-backend/internal/digest/domain"
)

// DigestRepository defines the interface for digest persistence. Replacing a
// digest's item set and its status is a single transaction: readers never see
// a new status paired with stale items.
type DigestRepository interface {
	// ReplaceScheduled creates or replaces the user's scheduled digest with
	// the given items, atomically.
	ReplaceScheduled(userID string, scheduledFor time.Time, items []*digestdomain.DigestItem) (*digestdomain.Digest, error)
	FindScheduled() ([]*digestdomain.Digest, error)
	ItemsByDigest(digestID string) ([]*digestdomain.DigestItem, error)
	MarkSent(digestID string, sentAt time.Time) error
	MarkFailed(digestID string, reason string) error
	// LastSentAtByUsers returns each user's most recent sent-digest time.
	LastSentAtByUsers(userIDs []string) (map[string]time.Time, error)
	// FirstSentAtByUsers returns each user's first-ever sent-digest time,
	// the milestone anchor for onboarding sequence steps.
	FirstSentAtByUsers(userIDs []string) (map[string]time.Time, error)
	// UserIDsWithSentCountAtLeast lists users who have received at least n
	// sent digests. Feeds the upgrade-funnel discovery routine.
	UserIDsWithSentCountAtLeast(n int) ([]string, error)
}

// ReviewStateRepository defines the interface for per-document resurfacing
// state.
type ReviewStateRepository interface {
	FindByUser(userID string) ([]*digestdomain.ReviewState, error)
	// MarkSent advances review state for the given documents after a digest
	// went out.
	MarkSent(userID string, documentIDs []string, sentAt time.Time, nextDueAt time.Time) error
}
