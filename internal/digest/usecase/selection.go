package usecase

import (
	"sort"
	"time"
)

// Candidate is one document's review state offered to the selection
// function.
type Candidate struct {
	DocumentID         string
	Status             string
	NextDueAt          *time.Time
	LastSentAt         *time.Time
	PriorityWeight     int
	DeprioritizedUntil *time.Time
}

// SelectedItem is one chosen document with its digest position.
type SelectedItem struct {
	DocumentID string
	Position   int
}

// Selection is the selection function's output.
type Selection struct {
	Items   []SelectedItem
	Skipped []string
}

// Selector picks which candidates go into a digest. The ranking algorithm is
// external to this module; this interface is its contract.
type Selector interface {
	Select(candidates []Candidate, batchSize int, now time.Time) Selection
}

// DueDateSelector is the built-in fallback selector: due candidates ordered
// by due time, then priority weight. It stands in until a real ranking
// implementation is plugged in.
type DueDateSelector struct{}

func (DueDateSelector) Select(candidates []Candidate, batchSize int, now time.Time) Selection {
	var eligible []Candidate
	var skipped []string

	for _, c := range candidates {
		switch {
		case c.Status != "active":
			skipped = append(skipped, c.DocumentID)
		case c.DeprioritizedUntil != nil && c.DeprioritizedUntil.After(now):
			skipped = append(skipped, c.DocumentID)
		case c.NextDueAt != nil && c.NextDueAt.After(now):
			skipped = append(skipped, c.DocumentID)
		default:
			eligible = append(eligible, c)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		// Never-sent documents come first.
		switch {
		case a.NextDueAt == nil && b.NextDueAt != nil:
			return true
		case a.NextDueAt != nil && b.NextDueAt == nil:
			return false
		case a.NextDueAt != nil && b.NextDueAt != nil && !a.NextDueAt.Equal(*b.NextDueAt):
			return a.NextDueAt.Before(*b.NextDueAt)
		}
		return a.PriorityWeight > b.PriorityWeight
	})

	if batchSize > 0 && len(eligible) > batchSize {
		for _, c := range eligible[batchSize:] {
			skipped = append(skipped, c.DocumentID)
		}
		eligible = eligible[:batchSize]
	}

	selection := Selection{Skipped: skipped}
	for i, c := range eligible {
		selection.Items = append(selection.Items, SelectedItem{DocumentID: c.DocumentID, Position: i + 1})
	}
	return selection
}
