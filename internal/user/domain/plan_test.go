package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveFrequency(t *testing.T) {
	assert.Equal(t, FrequencyWeekly, EffectiveFrequency(PlanFree, FrequencyDaily))
	assert.Equal(t, FrequencyWeekly, EffectiveFrequency(PlanFree, FrequencyWeekly))
	assert.Equal(t, FrequencyMonthly, EffectiveFrequency(PlanFree, FrequencyMonthly))
	assert.Equal(t, FrequencyDaily, EffectiveFrequency(PlanPro, FrequencyDaily))
}

func TestClampIntervalDays(t *testing.T) {
	tests := []struct {
		plan Plan
		days int
		want int
	}{
		{PlanFree, 3, 7},    // below free minimum
		{PlanFree, 7, 7},    // at minimum
		{PlanFree, 30, 30},  // in range
		{PlanFree, 120, 90}, // above maximum
		{PlanPro, 1, 1},     // pro allows daily
		{PlanPro, 0, 1},     // below pro minimum
		{PlanPro, 120, 90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampIntervalDays(tt.plan, tt.days), "plan=%s days=%d", tt.plan, tt.days)
	}
}

func TestLimitsForUnknownPlan(t *testing.T) {
	assert.Equal(t, LimitsFor(PlanFree), LimitsFor(Plan("enterprise")))
}

func TestRequiredInterval(t *testing.T) {
	custom := 10
	tooLow := 2

	tests := []struct {
		name string
		user User
		want time.Duration
	}{
		{
			name: "frequency duration",
			user: User{Plan: PlanPro, Frequency: FrequencyDaily},
			want: 24 * time.Hour,
		},
		{
			name: "free daily downgrades to weekly",
			user: User{Plan: PlanFree, Frequency: FrequencyDaily},
			want: 7 * 24 * time.Hour,
		},
		{
			name: "custom interval",
			user: User{Plan: PlanPro, Frequency: FrequencyWeekly, CustomIntervalDays: &custom},
			want: 10 * 24 * time.Hour,
		},
		{
			name: "custom interval clamped to plan floor",
			user: User{Plan: PlanFree, Frequency: FrequencyWeekly, CustomIntervalDays: &tooLow},
			want: 7 * 24 * time.Hour,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.RequiredInterval())
		})
	}
}

func TestIsPaying(t *testing.T) {
	now := time.Now()
	assert.False(t, (&User{Plan: PlanFree}).IsPaying())
	assert.False(t, (&User{Plan: PlanPro}).IsPaying()) // paid plan without a start date
	assert.True(t, (&User{Plan: PlanPro, PayingSince: &now}).IsPaying())
}
