package domain

import "time"

type User struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	Email              string     `json:"email" gorm:"uniqueIndex;not null"`
	Name               string     `json:"name"`
	Timezone           string     `json:"timezone" gorm:"default:'UTC'"` // IANA zone name
	PreferredHour      int        `json:"preferred_hour" gorm:"default:8"`
	Frequency          Frequency  `json:"frequency" gorm:"default:'weekly'"`
	CustomIntervalDays *int       `json:"custom_interval_days,omitempty"`
	Plan               Plan       `json:"plan" gorm:"default:'free'"`
	PayingSince        *time.Time `json:"paying_since,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsPaying reports whether the user currently has a paid plan.
func (u *User) IsPaying() bool {
	return u.Plan != PlanFree && u.PayingSince != nil
}

// EffectiveFrequency returns the digest frequency after plan limits are
// applied.
func (u *User) EffectiveFrequency() Frequency {
	return EffectiveFrequency(u.Plan, u.Frequency)
}

// RequiredInterval returns the minimum gap between two digests for this user.
// A custom interval is clamped into the plan's allowed range; otherwise the
// effective frequency's duration applies.
func (u *User) RequiredInterval() time.Duration {
	if u.CustomIntervalDays != nil {
		days := ClampIntervalDays(u.Plan, *u.CustomIntervalDays)
		return time.Duration(days) * 24 * time.Hour
	}
	return u.EffectiveFrequency().Duration()
}
