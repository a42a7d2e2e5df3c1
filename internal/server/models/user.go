// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account holding final messages and device passcodes, plus the
// liveness-machine state that decides when those secrets are released.
//
// Once IsDeceased and MessagesSent are both true the liveness machine is
// terminal: no further checks are issued or evaluated for this user.
type User struct {
	ID           string
	Email        string
	PasswordHash string

	// CheckFrequencyDays is how often (in days, >= 1) an alive check is sent.
	CheckFrequencyDays int
	LastCheckSent      *time.Time
	LastCheckConfirmed *time.Time
	// MissedChecksCount is the number of consecutive alive checks that
	// expired unconfirmed. Reset to zero on every confirmation.
	MissedChecksCount int
	IsDeceased        bool
	MessagesSent      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
