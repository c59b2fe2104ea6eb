package usecase

import (
	"time"

	sequencedomain "resurface-backend/internal/sequence/domain"
)

// StepDueAt computes when a step becomes due for the given state. A nil
// return means the step is blocked: its anchor milestone does not exist yet,
// so the step has no due time at all rather than one in the future.
func StepDueAt(state *sequencedomain.SequenceState, step *sequencedomain.Step, firstDigestAt *time.Time) *time.Time {
	var anchor time.Time
	switch step.Anchor {
	case sequencedomain.AnchorEntered:
		anchor = state.EnteredAt
	case sequencedomain.AnchorFirstDigest:
		if firstDigestAt == nil {
			return nil
		}
		anchor = *firstDigestAt
	default:
		return nil
	}
	due := anchor.Add(step.Offset.Duration())
	return &due
}
