// Package checks provides the PostgreSQL-backed repository for alive checks.
package checks

import (
	"context"
	"time"

	"github.com/lastmessage-app/server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, check *models.AliveCheck) (*models.AliveCheck, error)
	GetByToken(ctx context.Context, token string) (*models.AliveCheck, error)

	// Confirm sets confirmed_at, guarded on the check being neither
	// confirmed nor already counted as missed. Reports whether this caller
	// won the write.
	Confirm(ctx context.Context, id string, confirmedAt time.Time) (bool, error)

	// ListMissable returns expired, unconfirmed, not-yet-counted checks
	// whose owner's liveness machine is still running.
	ListMissable(ctx context.Context, now time.Time) ([]*models.AliveCheck, error)

	// MarkMissed sets missed_at under the same guard as Confirm, so a check
	// contributes to the miss counter at most once ever, and never after a
	// confirmation has landed.
	MarkMissed(ctx context.Context, id string, missedAt time.Time) (bool, error)
}
