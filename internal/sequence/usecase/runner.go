package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	noterepo "resurface-backend/internal/note/repository"
	senddomain "resurface-backend/internal/send/domain"
	sendrepo "resurface-backend/internal/send/repository"
	sequencedomain "resurface-backend/internal/sequence/domain"
	sequencerepo "resurface-backend/internal/sequence/repository"
	userdomain "resurface-backend/internal/user/domain"
	"resurface-backend/pkg/mailer"

	"github.com/google/uuid"
)

const (
	idempotencyKeyMax = 256

	// upgradeEntryThreshold is how many sent digests a user needs before the
	// upgrade sequence picks them up.
	upgradeEntryThreshold = 4
)

// Mailer is the slice of the delivery client the sequence runner needs.
type Mailer interface {
	Send(ctx context.Context, msg *mailer.Message, idempotencyKey string) (*mailer.SendResult, error)
}

// digestMilestones is the slice of digest history the runner consults for
// anchors and for upgrade discovery.
type digestMilestones interface {
	FirstSentAtByUsers(userIDs []string) (map[string]time.Time, error)
	UserIDsWithSentCountAtLeast(n int) ([]string, error)
}

// userRepository is the slice of the user store the runner needs.
type userRepository interface {
	FindByIDs(ids []string) (map[string]*userdomain.User, error)
}

// Report summarizes one sequence run.
type Report struct {
	Active     int `json:"active"`
	Discovered int `json:"discovered"`
	Sent       int `json:"sent"`
	NotDue     int `json:"not_due"`
	Blocked    int `json:"blocked"`
	Exited     int `json:"exited"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	WouldSend  int `json:"would_send,omitempty"` // dry-run only
}

// Runner advances every active sequence state by at most one step per run.
// Exit conditions are checked before due times, so a user who no longer
// belongs in a sequence exits even if an email happens to be due.
type Runner struct {
	states         sequencerepo.SequenceStateRepository
	users          userRepository
	digests        digestMilestones
	connections    noterepo.ConnectionRepository
	sends          sendrepo.SendRecordRepository
	mailer         Mailer
	defs           sequencedomain.Definitions
	from           string
	billingEnabled bool
}

func NewRunner(
	states sequencerepo.SequenceStateRepository,
	users userRepository,
	digests digestMilestones,
	connections noterepo.ConnectionRepository,
	sends sendrepo.SendRecordRepository,
	m Mailer,
	defs sequencedomain.Definitions,
	from string,
	billingEnabled bool,
) *Runner {
	return &Runner{
		states:         states,
		users:          users,
		digests:        digests,
		connections:    connections,
		sends:          sends,
		mailer:         m,
		defs:           defs,
		from:           from,
		billingEnabled: billingEnabled,
	}
}

// Enter puts a user into a sequence at step one. Re-entering is a no-op:
// the (user, sequence) row is unique, terminal or not.
func (r *Runner) Enter(userID, sequenceName string, now time.Time) (bool, error) {
	if _, ok := r.defs[sequenceName]; !ok {
		return false, fmt.Errorf("unknown sequence %q", sequenceName)
	}
	return r.states.CreateIfAbsent(&sequencedomain.SequenceState{
		ID:           uuid.New().String(),
		UserID:       userID,
		SequenceName: sequenceName,
		CurrentStep:  1,
		Status:       sequencedomain.SequenceActive,
		EnteredAt:    now,
	})
}

// Run discovers new upgrade entrants, then walks every active state.
func (r *Runner) Run(ctx context.Context, now time.Time, dryRun bool) (*Report, error) {
	report := &Report{}

	if err := r.discoverUpgradeEntrants(now, report); err != nil {
		log.Printf("[SequenceRunner] upgrade discovery failed: %v", err)
	}

	states, err := r.states.FindActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load active sequence states: %w", err)
	}
	report.Active = len(states)
	log.Printf("[SequenceRunner] %d active states to consider", len(states))

	userIDs := make([]string, 0, len(states))
	for _, s := range states {
		userIDs = append(userIDs, s.UserID)
	}
	users, err := r.users.FindByIDs(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	firstDigest, err := r.digests.FirstSentAtByUsers(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load first-digest times: %w", err)
	}
	hasConnection, err := r.connections.HasAnyByUsers(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection presence: %w", err)
	}

	for _, state := range states {
		u := users[state.UserID]
		if u == nil {
			log.Printf("[SequenceRunner] state %s references missing user %s", state.ID, state.UserID)
			report.Failed++
			continue
		}
		var first *time.Time
		if t, ok := firstDigest[u.ID]; ok {
			first = &t
		}
		if err := r.advance(ctx, state, u, first, hasConnection[u.ID], now, dryRun, report); err != nil {
			log.Printf("[SequenceRunner] %s/%s step %d failed: %v", state.SequenceName, u.ID, state.CurrentStep, err)
			report.Failed++
		}
	}

	log.Printf("[SequenceRunner] run done: %d sent, %d not due, %d blocked, %d exited, %d completed, %d failed",
		report.Sent, report.NotDue, report.Blocked, report.Exited, report.Completed, report.Failed)
	return report, nil
}

// discoverUpgradeEntrants enters the upgrade sequence for every non-paying
// user with enough sent digests. Insert-if-absent makes the scan safe to
// repeat.
func (r *Runner) discoverUpgradeEntrants(now time.Time, report *Report) error {
	if _, ok := r.defs[sequencedomain.SequenceUpgrade]; !ok {
		return nil
	}
	candidateIDs, err := r.digests.UserIDsWithSentCountAtLeast(upgradeEntryThreshold)
	if err != nil {
		return err
	}
	candidates, err := r.users.FindByIDs(candidateIDs)
	if err != nil {
		return err
	}
	for _, userID := range candidateIDs {
		u := candidates[userID]
		if u == nil || u.IsPaying() {
			continue
		}
		created, err := r.states.CreateIfAbsent(&sequencedomain.SequenceState{
			ID:           uuid.New().String(),
			UserID:       userID,
			SequenceName: sequencedomain.SequenceUpgrade,
			CurrentStep:  1,
			Status:       sequencedomain.SequenceActive,
			EnteredAt:    now,
		})
		if err != nil {
			log.Printf("[SequenceRunner] failed to enter user %s into upgrade: %v", userID, err)
			continue
		}
		if created {
			report.Discovered++
		}
	}
	return nil
}

func (r *Runner) advance(ctx context.Context, state *sequencedomain.SequenceState, u *userdomain.User, firstDigestAt *time.Time, hasConnection bool, now time.Time, dryRun bool, report *Report) error {
	def, ok := r.defs[state.SequenceName]
	if !ok {
		return r.exit(state, "sequence definition removed", now, report, dryRun)
	}

	if reason := r.exitReason(state.SequenceName, u, hasConnection); reason != "" {
		return r.exit(state, reason, now, report, dryRun)
	}

	step := def.Step(state.CurrentStep)
	if step == nil {
		return r.complete(state, now, report, dryRun)
	}

	dueAt := StepDueAt(state, step, firstDigestAt)
	if dueAt == nil {
		report.Blocked++
		return nil
	}
	if dueAt.After(now) {
		report.NotDue++
		return nil
	}

	if dryRun {
		log.Printf("[SequenceRunner] dry-run: would send %s step %d to user %s", state.SequenceName, state.CurrentStep, u.ID)
		report.WouldSend++
		return nil
	}

	key := stepIdempotencyKey(state.SequenceName, u.ID, state.CurrentStep)
	result, err := r.mailer.Send(ctx, renderStep(u, step, r.from), key)
	if err != nil {
		return err
	}

	if err := r.sends.Record(&senddomain.SendRecord{
		ID:                uuid.New().String(),
		UserID:            u.ID,
		ContentID:         step.ContentID,
		IdempotencyKey:    key,
		ProviderMessageID: result.ID,
	}); err != nil {
		log.Printf("[SequenceRunner] failed to record send %s: %v", key, err)
	}

	state.LastEmailSentAt = &now
	state.CurrentStep++
	if def.Step(state.CurrentStep) == nil {
		state.Status = sequencedomain.SequenceCompleted
		state.CompletedAt = &now
		report.Completed++
	}
	report.Sent++
	return r.states.Save(state)
}

// exitReason returns the non-empty exit reason when the user no longer
// belongs in the sequence.
func (r *Runner) exitReason(sequenceName string, u *userdomain.User, hasConnection bool) string {
	switch sequenceName {
	case sequencedomain.SequenceWelcome:
		if hasConnection {
			return "connected a source"
		}
	case sequencedomain.SequenceOnboarding, sequencedomain.SequenceUpgrade:
		if r.billingEnabled && u.IsPaying() {
			return "became a paying user"
		}
	}
	return ""
}

func (r *Runner) exit(state *sequencedomain.SequenceState, reason string, now time.Time, report *Report, dryRun bool) error {
	if dryRun {
		log.Printf("[SequenceRunner] dry-run: would exit %s/%s (%s)", state.SequenceName, state.UserID, reason)
		return nil
	}
	state.Status = sequencedomain.SequenceExited
	state.ExitReason = reason
	state.CompletedAt = &now
	report.Exited++
	return r.states.Save(state)
}

func (r *Runner) complete(state *sequencedomain.SequenceState, now time.Time, report *Report, dryRun bool) error {
	if dryRun {
		log.Printf("[SequenceRunner] dry-run: would complete %s/%s", state.SequenceName, state.UserID)
		return nil
	}
	state.Status = sequencedomain.SequenceCompleted
	state.CompletedAt = &now
	report.Completed++
	return r.states.Save(state)
}

func stepIdempotencyKey(sequenceName, userID string, step int) string {
	key := fmt.Sprintf("sequence:%s:%s:%d", sequenceName, userID, step)
	if len(key) > idempotencyKeyMax {
		key = key[:idempotencyKeyMax]
	}
	return key
}

func renderStep(u *userdomain.User, step *sequencedomain.Step, from string) *mailer.Message {
	body := step.Body
	if u.Name != "" {
		body = "Hi " + u.Name + ",\n\n" + body
	}
	return &mailer.Message{
		From:    from,
		To:      []string{u.Email},
		Subject: step.Subject,
		Text:    body,
	}
}
