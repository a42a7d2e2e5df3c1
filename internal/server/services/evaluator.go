package services

import (
	"context"

	"github.com/lastmessage-app/server/internal/logging"
	"github.com/lastmessage-app/server/internal/server/config"
	"github.com/lastmessage-app/server/internal/server/models"
	"github.com/lastmessage-app/server/internal/server/repositories/checks"
	"github.com/lastmessage-app/server/internal/server/repositories/users"
)

// Evaluator turns expired unconfirmed checks into missed-check counts and
// triggers the release once a user crosses the threshold.
type Evaluator struct {
	users    users.Repository
	checks   checks.Repository
	releaser *Releaser
	logger   logging.Logger
	cfg      *config.Config
}

func NewEvaluator(u users.Repository, c checks.Repository, r *Releaser, l logging.Logger, cfg *config.Config) *Evaluator {
	return &Evaluator{users: u, checks: c, releaser: r, logger: l, cfg: cfg}
}

func (e *Evaluator) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.OpTimeout)
}

// Run scans all expired unconfirmed checks belonging to live users and
// increments each affected user's missed_checks_count by exactly one,
// however many stale checks that user has accumulated. Each check is claimed
// with a conditional update before it counts, so a check contributes to the
// counter at most once ever: re-runs, overlapping cycles and concurrent
// evaluators all converge on the same counts. Users whose count reaches the
// threshold are handed to the release executor.
//
// Per-user failures are logged and skipped; a partial run never corrupts
// state because every step is an idempotent conditional write.
func (e *Evaluator) Run(ctx context.Context) (missed, released, failed int) {
	now := timeNow()

	opctx, cancel := e.opCtx(ctx)
	stale, err := e.checks.ListMissable(opctx, now)
	cancel()
	if err != nil {
		e.logger.Error(ctx, "listing missable checks", "err", err)
		return 0, 0, 1
	}

	// Group by user: a user with several stale checks still contributes a
	// single increment this cycle.
	byUser := make(map[string][]*models.AliveCheck)
	var order []string
	for _, check := range stale {
		if _, seen := byUser[check.UserID]; !seen {
			order = append(order, check.UserID)
		}
		byUser[check.UserID] = append(byUser[check.UserID], check)
	}

	for _, userID := range order {
		if ctx.Err() != nil {
			return missed, released, failed
		}

		counted, didRelease, err := e.evaluateUser(ctx, userID, byUser[userID])
		if err != nil {
			e.logger.Error(ctx, "evaluating missed checks", "user_id", userID, "err", err)
			failed++
			continue
		}
		if counted {
			missed++
		}
		if didRelease {
			released++
		}
	}

	return missed, released, failed
}

// evaluateUser reports whether the user's counter moved and whether that
// crossed the threshold into a release.
func (e *Evaluator) evaluateUser(ctx context.Context, userID string, staleChecks []*models.AliveCheck) (counted, didRelease bool, err error) {
	now := timeNow()

	// Claim every stale check so none of them can count again in a later
	// cycle; the whole set contributes one increment.
	claimed := 0
	for _, check := range staleChecks {
		opctx, cancel := e.opCtx(ctx)
		applied, err := e.checks.MarkMissed(opctx, check.ID, now)
		cancel()
		if err != nil {
			return false, false, err
		}
		if applied {
			claimed++
		}
	}

	if claimed == 0 {
		// Every check was confirmed or claimed by a concurrent evaluator
		// after we listed it; nothing to count.
		return false, false, nil
	}

	opctx, cancel := e.opCtx(ctx)
	count, applied, err := e.users.IncrementMissedChecks(opctx, userID)
	cancel()
	if err != nil {
		return false, false, err
	}
	if !applied {
		// User went terminal between the listing and the increment.
		return false, false, nil
	}

	e.logger.Info(ctx, "missed check recorded", "user_id", userID, "missed_checks_count", count)

	if count < MissThreshold {
		return true, false, nil
	}

	if err := e.releaser.Release(ctx, userID); err != nil {
		return true, false, err
	}

	return true, true, nil
}
