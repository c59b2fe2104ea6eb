package domain

import "time"

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Duration maps a frequency to the minimum gap between digests.
func (f Frequency) Duration() time.Duration {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// PlanLimits bounds the digest interval a plan may configure.
type PlanLimits struct {
	MinIntervalDays int
	MaxIntervalDays int
}

var planLimits = map[Plan]PlanLimits{
	PlanFree: {MinIntervalDays: 7, MaxIntervalDays: 90},
	PlanPro:  {MinIntervalDays: 1, MaxIntervalDays: 90},
}

// LimitsFor returns the interval limits for a plan, defaulting to the free
// plan's limits for unknown values.
func LimitsFor(p Plan) PlanLimits {
	if limits, ok := planLimits[p]; ok {
		return limits
	}
	return planLimits[PlanFree]
}

// EffectiveFrequency downgrades a requested frequency to what the plan
// allows. Free users asking for daily digests get weekly ones.
func EffectiveFrequency(p Plan, requested Frequency) Frequency {
	if p == PlanFree && requested == FrequencyDaily {
		return FrequencyWeekly
	}
	return requested
}

// ClampIntervalDays clamps a requested custom interval into the plan's
// allowed range.
func ClampIntervalDays(p Plan, days int) int {
	limits := LimitsFor(p)
	if days < limits.MinIntervalDays {
		return limits.MinIntervalDays
	}
	if days > limits.MaxIntervalDays {
		return limits.MaxIntervalDays
	}
	return days
}
