package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	digestdomain "resurface-backend/internal/digest/domain"
	digestrepo "resurface-backend/internal/digest/repository"
	noterepo "resurface-backend/internal/note/repository"
	senddomain "resurface-backend/internal/send/domain"
	sendrepo "resurface-backend/internal/send/repository"
	userdomain "resurface-backend/internal/user/domain"
	"resurface-backend/pkg/mailer"

	"github.com/google/uuid"
)

// Mailer is the slice of the delivery client the digest runner needs.
type Mailer interface {
	Send(ctx context.Context, msg *mailer.Message, idempotencyKey string) (*mailer.SendResult, error)
}

// GenerateReport summarizes one generation run.
type GenerateReport struct {
	Users     int `json:"users"`
	Generated int `json:"generated"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
}

// SendReport summarizes one send run.
type SendReport struct {
	Scheduled int `json:"scheduled"`
	Sent      int `json:"sent"`
	NotDue    int `json:"not_due"`
	Failed    int `json:"failed"`
	WouldSend int `json:"would_send,omitempty"` // dry-run only
}

// Runner owns the two digest batch jobs: generation (selection -> scheduled
// digest) and sending (due check -> provider -> state transition). Both are
// idempotent entry points safe to re-invoke; rows are processed one at a
// time so a failure never blocks the batch.
type Runner struct {
	users     userRepository
	reviews   digestrepo.ReviewStateRepository
	digests   digestrepo.DigestRepository
	documents noterepo.DocumentRepository
	sends     sendrepo.SendRecordRepository
	selector  Selector
	policy    SchedulePolicy
	mailer    Mailer
	from      string
	batchSize int
}

// userRepository is the slice of the user store the runner needs.
type userRepository interface {
	FindAll() ([]*userdomain.User, error)
	FindByIDs(ids []string) (map[string]*userdomain.User, error)
}

func NewRunner(
	users userRepository,
	reviews digestrepo.ReviewStateRepository,
	digests digestrepo.DigestRepository,
	documents noterepo.DocumentRepository,
	sends sendrepo.SendRecordRepository,
	selector Selector,
	policy SchedulePolicy,
	m Mailer,
	from string,
	batchSize int,
) *Runner {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Runner{
		users:     users,
		reviews:   reviews,
		digests:   digests,
		documents: documents,
		sends:     sends,
		selector:  selector,
		policy:    policy,
		mailer:    m,
		from:      from,
		batchSize: batchSize,
	}
}

// GenerateForAllUsers builds or refreshes every user's scheduled digest. A
// user whose selection comes back empty gets a skipped digest; per-user
// failures are counted and the run continues.
func (r *Runner) GenerateForAllUsers(ctx context.Context, now time.Time) (*GenerateReport, error) {
	users, err := r.users.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	report := &GenerateReport{Users: len(users)}
	log.Printf("[DigestRunner] generating digests for %d users", len(users))

	for _, u := range users {
		digest, err := r.generateForUser(u, now)
		if err != nil {
			log.Printf("[DigestRunner] generation failed for user %s: %v", u.ID, err)
			report.Failed++
			continue
		}
		if digest.Status == digestdomain.DigestSkipped {
			report.Empty++
		} else {
			report.Generated++
		}
	}

	log.Printf("[DigestRunner] generation done: %d generated, %d empty, %d failed", report.Generated, report.Empty, report.Failed)
	return report, nil
}

func (r *Runner) generateForUser(u *userdomain.User, now time.Time) (*digestdomain.Digest, error) {
	states, err := r.reviews.FindByUser(u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review states: %w", err)
	}

	candidates := make([]Candidate, 0, len(states))
	for _, s := range states {
		candidates = append(candidates, Candidate{
			DocumentID:         s.DocumentID,
			Status:             string(s.Status),
			NextDueAt:          s.NextDueAt,
			LastSentAt:         s.LastSentAt,
			PriorityWeight:     s.PriorityWeight,
			DeprioritizedUntil: s.DeprioritizedUntil,
		})
	}

	selection := r.selector.Select(candidates, r.batchSize, now)

	ids := make([]string, 0, len(selection.Items))
	for _, item := range selection.Items {
		ids = append(ids, item.DocumentID)
	}
	hashes, err := r.documents.HashesByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load content hashes: %w", err)
	}

	items := make([]*digestdomain.DigestItem, 0, len(selection.Items))
	for _, selected := range selection.Items {
		items = append(items, &digestdomain.DigestItem{
			DocumentID:  selected.DocumentID,
			Position:    selected.Position,
			ContentHash: hashes[selected.DocumentID],
		})
	}

	return r.digests.ReplaceScheduled(u.ID, now, items)
}

// SendDue delivers every scheduled digest whose user is inside their send
// window. Each send happens exactly once per occurrence: the digest id is
// the idempotency key, and the scheduled->sent transition guards replays.
func (r *Runner) SendDue(ctx context.Context, now time.Time, dryRun bool) (*SendReport, error) {
	scheduled, err := r.digests.FindScheduled()
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled digests: %w", err)
	}

	userIDs := make([]string, 0, len(scheduled))
	for _, d := range scheduled {
		userIDs = append(userIDs, d.UserID)
	}
	users, err := r.users.FindByIDs(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	lastSent, err := r.digests.LastSentAtByUsers(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load last-sent times: %w", err)
	}

	report := &SendReport{Scheduled: len(scheduled)}
	log.Printf("[DigestRunner] %d scheduled digests to consider", len(scheduled))

	for _, d := range scheduled {
		u := users[d.UserID]
		if u == nil {
			log.Printf("[DigestRunner] digest %s references missing user %s", d.ID, d.UserID)
			report.Failed++
			continue
		}

		var last *time.Time
		if t, ok := lastSent[u.ID]; ok {
			last = &t
		}
		if !r.policy.IsDigestDue(now, u, last) {
			report.NotDue++
			continue
		}

		if err := r.sendDigest(ctx, d, u, now, dryRun, report); err != nil {
			log.Printf("[DigestRunner] send failed for digest %s: %v", d.ID, err)
			report.Failed++
		}
	}

	log.Printf("[DigestRunner] send done: %d sent, %d not due, %d failed", report.Sent, report.NotDue, report.Failed)
	return report, nil
}

func (r *Runner) sendDigest(ctx context.Context, d *digestdomain.Digest, u *userdomain.User, now time.Time, dryRun bool, report *SendReport) error {
	items, err := r.digests.ItemsByDigest(d.ID)
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}
	if len(items) == 0 {
		if markErr := r.digests.MarkFailed(d.ID, "scheduled digest has no items"); markErr != nil {
			return markErr
		}
		return fmt.Errorf("scheduled digest has no items")
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.DocumentID)
	}
	docs, err := r.documents.FindByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	// Consistency check: a selected document that lost its content hash
	// since selection is a fault for this digest only, never a silent drop.
	for _, item := range items {
		doc := docs[item.DocumentID]
		if doc == nil || doc.ContentHash == "" {
			reason := fmt.Sprintf("document %s missing content hash at send time", item.DocumentID)
			if markErr := r.digests.MarkFailed(d.ID, reason); markErr != nil {
				return markErr
			}
			return fmt.Errorf("%s", reason)
		}
		if doc.ContentHash != item.ContentHash {
			log.Printf("[DigestRunner] document %s drifted since selection (digest %s)", item.DocumentID, d.ID)
		}
	}

	if dryRun {
		log.Printf("[DigestRunner] dry-run: would send digest %s to user %s (%d items)", d.ID, u.ID, len(items))
		report.WouldSend++
		return nil
	}

	msg := renderDigest(u, items, docs, r.from)
	result, err := r.mailer.Send(ctx, msg, "digest:"+d.ID)
	if err != nil {
		if markErr := r.digests.MarkFailed(d.ID, err.Error()); markErr != nil {
			log.Printf("[DigestRunner] failed to mark digest %s failed: %v", d.ID, markErr)
		}
		return err
	}

	if err := r.digests.MarkSent(d.ID, now); err != nil {
		return fmt.Errorf("failed to mark digest sent: %w", err)
	}

	return r.finishSend(u, d, ids, result.ID, now, report)
}

func (r *Runner) finishSend(u *userdomain.User, d *digestdomain.Digest, documentIDs []string, providerMessageID string, now time.Time, report *SendReport) error {
	if err := r.sends.Record(newSendRecord(u.ID, d.ID, providerMessageID)); err != nil {
		log.Printf("[DigestRunner] failed to record send for digest %s: %v", d.ID, err)
	}
	if err := r.reviews.MarkSent(u.ID, documentIDs, now, now.Add(u.RequiredInterval())); err != nil {
		log.Printf("[DigestRunner] failed to advance review state for user %s: %v", u.ID, err)
	}
	report.Sent++
	return nil
}

func newSendRecord(userID, digestID, providerMessageID string) *senddomain.SendRecord {
	return &senddomain.SendRecord{
		ID:                uuid.New().String(),
		UserID:            userID,
		ContentID:         "digest:" + digestID,
		IdempotencyKey:    "digest:" + digestID,
		ProviderMessageID: providerMessageID,
	}
}
