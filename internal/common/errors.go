// Package common defines shared constants and sentinel errors used across
// Last Message components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Alive-check token lifecycle errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrAlreadyConfirmed = errors.New("already confirmed")

	// External collaborator failures, reported per user or per probe and
	// never allowed to abort the rest of a cycle.
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrNotifierUnavailable = errors.New("notifier unavailable")

	// ErrInconsistentState marks a partial multi-row update that needs
	// manual operator reconciliation.
	ErrInconsistentState = errors.New("inconsistent state")

	// Validation errors.
	ErrorInvalidFrequency = errors.New("check frequency must be at least one day")
	ErrorEmailInUse       = errors.New("email already in use")
)
