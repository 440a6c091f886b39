package domain

import "time"

// User is the identity a user-scoped graph is rendered for.
type User struct {
	ID                int64
	Email             string
	IsAdmin           bool
	CreatedAt         time.Time
	FirstReportSent   bool       // onboarding completed
	LastAccountChange *time.Time // last time an account was added or removed
	LastSumJob        *time.Time // last background summary run
}

// NeedsSummaryRefresh reports whether summary-based graphs for this user are stale:
// onboarding never completed, or accounts changed after the last summary run.
func (u *User) NeedsSummaryRefresh() bool {
	if !u.FirstReportSent {
		return true
	}
	if u.LastAccountChange == nil {
		return false
	}
	return u.LastSumJob == nil || u.LastAccountChange.After(*u.LastSumJob)
}
