// Package users provides the PostgreSQL-backed repository for user accounts
// and their liveness-machine state.
package users

import (
	"context"
	"time"

	"github.com/lastmessage-app/server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// ListLive returns users whose liveness machine is still running
	// (is_deceased=false and messages_sent=false).
	ListLive(ctx context.Context) ([]*models.User, error)

	SetCheckSent(ctx context.Context, userID string, sentAt time.Time) error
	ResetMissedChecks(ctx context.Context, userID string, confirmedAt time.Time) error

	// IncrementMissedChecks bumps missed_checks_count by one, guarded on the
	// user still being live. It returns the new count and whether the update
	// was applied.
	IncrementMissedChecks(ctx context.Context, userID string) (int, bool, error)

	// MarkDeceased and MarkMessagesSent are conditional check-and-set
	// updates; they report whether this caller performed the transition.
	MarkDeceased(ctx context.Context, userID string) (bool, error)
	MarkMessagesSent(ctx context.Context, userID string) (bool, error)

	UpdateCheckFrequency(ctx context.Context, userID string, days int) error
}
