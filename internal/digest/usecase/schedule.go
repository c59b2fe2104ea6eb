package usecase

import (
	"hash/fnv"
	"time"

	userdomain "resurface-backend/internal/user/domain"
)

// SchedulePolicy decides whether a user's digest is due at a given instant.
// Exactly one policy is active per deployment, selected by configuration;
// the two implementations disagree on day-boundary tie-breaking and must
// never be merged.
type SchedulePolicy interface {
	IsDigestDue(now time.Time, user *userdomain.User, lastSentAt *time.Time) bool
}

// PolicyFromName maps the configured policy name to an implementation,
// defaulting to the local-clock policy.
func PolicyFromName(name string) SchedulePolicy {
	if name == "stagger" {
		return StaggerPolicy{}
	}
	return LocalClockPolicy{}
}

// LocalClockPolicy is the canonical rule: the send window is the user's
// preferred hour on their own wall clock, with at most one send per local
// calendar day and a plan-adjusted minimum gap between sends.
type LocalClockPolicy struct{}

func (LocalClockPolicy) IsDigestDue(now time.Time, user *userdomain.User, lastSentAt *time.Time) bool {
	loc := userLocation(user)
	local := now.In(loc)

	// True calendar conversion, so the window tracks DST shifts.
	if local.Hour() != user.PreferredHour {
		return false
	}

	if lastSentAt != nil {
		lastLocal := lastSentAt.In(loc)
		if sameDate(local, lastLocal) {
			return false // at most one send per local day
		}
		if now.Sub(*lastSentAt) < user.RequiredInterval() {
			return false
		}
	}

	return true
}

// StaggerPolicy is the preserved alternative rule: windows are evaluated on
// the UTC clock, and weekly/monthly users are additionally spread across the
// week/month by a deterministic hash of their id, so digest sends never pile
// onto the same calendar day.
type StaggerPolicy struct{}

func (StaggerPolicy) IsDigestDue(now time.Time, user *userdomain.User, lastSentAt *time.Time) bool {
	utc := now.UTC()

	if utc.Hour() != user.PreferredHour {
		return false
	}

	switch user.EffectiveFrequency() {
	case userdomain.FrequencyWeekly:
		if userSlot(user.ID, 7) != int(utc.Weekday()) {
			return false
		}
	case userdomain.FrequencyMonthly:
		if userSlot(user.ID, 28)+1 != utc.Day() {
			return false
		}
	}

	if lastSentAt != nil {
		lastUTC := lastSentAt.UTC()
		if sameDate(utc, lastUTC) {
			return false
		}
		if now.Sub(*lastSentAt) < user.RequiredInterval() {
			return false
		}
	}

	return true
}

func userLocation(user *userdomain.User) *time.Location {
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func userSlot(userID string, buckets int) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32() % uint32(buckets))
}
