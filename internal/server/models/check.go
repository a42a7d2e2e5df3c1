package models

import "time"

// AliveCheck is one liveness probe: a single-use token mailed to the user
// with an expiry window of the user's check frequency.
//
// ConfirmedAt is set at most once, by the confirmation handler. MissedAt is
// set at most once, by the miss evaluator, and marks that this check has
// already contributed to the owner's missed_checks_count. The two are
// mutually exclusive. Rows are never deleted (audit trail).
type AliveCheck struct {
	ID          string
	UserID      string
	Token       string
	SentAt      time.Time
	ExpiresAt   time.Time
	ConfirmedAt *time.Time
	MissedAt    *time.Time
}

// Expired reports whether the check's confirmation window has closed.
func (c *AliveCheck) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}
