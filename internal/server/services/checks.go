// Package services contains the liveness-check lifecycle engine and the
// account-facing services built on top of the repositories. The engine keeps
// no state between invocations: every decision is driven off persisted
// per-row timestamps, so it is safe to run on any schedule, including
// irregular or skipped ones.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lastmessage-app/server/internal/common"
	"github.com/lastmessage-app/server/internal/logging"
	"github.com/lastmessage-app/server/internal/mailer"
	"github.com/lastmessage-app/server/internal/server/config"
	"github.com/lastmessage-app/server/internal/server/models"
	"github.com/lastmessage-app/server/internal/server/repositories/checks"
	"github.com/lastmessage-app/server/internal/server/repositories/users"
)

// MissThreshold is the number of consecutive missed checks after which a
// user's secrets are released.
const MissThreshold = 3

const (
	tokenBytes  = 32
	hoursPerDay = 24
)

var timeNow = time.Now

// ConfirmResult distinguishes a fresh confirmation from an idempotent
// repeat click, which the UI renders differently.
type ConfirmResult int

const (
	Confirmed ConfirmResult = iota
	AlreadyConfirmed
)

// CheckService issues alive checks and handles their confirmation.
type CheckService struct {
	users    users.Repository
	checks   checks.Repository
	notifier mailer.Notifier
	logger   logging.Logger
	cfg      *config.Config
}

func NewCheckService(u users.Repository, c checks.Repository, n mailer.Notifier, l logging.Logger, cfg *config.Config) *CheckService {
	return &CheckService{users: u, checks: c, notifier: n, logger: l, cfg: cfg}
}

func (s *CheckService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OpTimeout)
}

// checkDue reports whether a new alive check should be issued for the user:
// the frequency window has elapsed since the last check was sent, or since
// account creation if none was ever sent.
func checkDue(user *models.User, now time.Time) bool {
	last := user.CreatedAt
	if user.LastCheckSent != nil {
		last = *user.LastCheckSent
	}
	elapsedDays := now.Sub(last).Hours() / hoursPerDay
	return elapsedDays >= float64(user.CheckFrequencyDays)
}

// IssueDueChecks walks all live users and issues one alive check to each user
// whose frequency window has elapsed. Per-user failures are logged and do not
// abort the rest of the scan. It returns the number of checks issued and the
// number of users that failed.
func (s *CheckService) IssueDueChecks(ctx context.Context) (issued, failed int) {
	now := timeNow()

	opctx, cancel := s.opCtx(ctx)
	liveUsers, err := s.users.ListLive(opctx)
	cancel()
	if err != nil {
		s.logger.Error(ctx, "listing live users", "err", err)
		return 0, 1
	}

	for _, user := range liveUsers {
		if ctx.Err() != nil {
			return issued, failed
		}
		if !checkDue(user, now) {
			continue
		}
		if err := s.issueCheck(ctx, user, now); err != nil {
			s.logger.Error(ctx, "issuing alive check", "user_id", user.ID, "err", err)
			failed++
			continue
		}
		issued++
	}

	return issued, failed
}

// IssueForUser issues an alive check immediately, skipping the frequency
// window. Backs the authenticated manual trigger endpoint.
func (s *CheckService) IssueForUser(ctx context.Context, userID string) error {
	opctx, cancel := s.opCtx(ctx)
	user, err := s.users.GetByID(opctx, userID)
	cancel()
	if err != nil {
		return err
	}

	if user.IsDeceased || user.MessagesSent {
		return common.ErrorNotFound
	}

	return s.issueCheck(ctx, user, timeNow())
}

// issueCheck mints the token, persists the check row, stamps last_check_sent
// and requests the probe mail. A mail failure is logged, not returned: the
// check row and timestamp stand, and the next cycle will not re-issue until
// the frequency window elapses again. A transient mail outage can therefore
// cost the user one notification; that is an accepted limitation.
func (s *CheckService) issueCheck(ctx context.Context, user *models.User, now time.Time) error {
	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	check := &models.AliveCheck{
		UserID:    user.ID,
		Token:     token,
		SentAt:    now,
		ExpiresAt: now.Add(time.Duration(user.CheckFrequencyDays) * hoursPerDay * time.Hour),
	}

	opctx, cancel := s.opCtx(ctx)
	_, err = s.checks.Create(opctx, check)
	cancel()
	if err != nil {
		return err
	}

	opctx, cancel = s.opCtx(ctx)
	err = s.users.SetCheckSent(opctx, user.ID, now)
	cancel()
	if err != nil {
		return err
	}

	confirmationLink := fmt.Sprintf("%s/api/alive-check/confirm?token=%s", s.cfg.AppURL, token)

	opctx, cancel = s.opCtx(ctx)
	err = s.notifier.Send(opctx, mailer.AliveCheckEmail(user.Email, confirmationLink))
	cancel()
	if err != nil {
		s.logger.Warn(ctx, "alive check mail failed", "user_id", user.ID, "err", err)
	} else {
		s.logger.Info(ctx, "alive check issued", "user_id", user.ID, "expires_at", check.ExpiresAt)
	}

	return nil
}

// Confirm resolves an inbound confirmation token.
//
// Outcomes: Confirmed (fresh), AlreadyConfirmed (idempotent repeat),
// common.ErrInvalidToken (unknown token), common.ErrTokenExpired (click after
// expiry; the check stays missed — a late click must not undo a miss that an
// evaluation has already counted).
func (s *CheckService) Confirm(ctx context.Context, token string) (ConfirmResult, error) {
	now := timeNow()

	opctx, cancel := s.opCtx(ctx)
	check, err := s.checks.GetByToken(opctx, token)
	cancel()
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrInvalidToken
		}
		return 0, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	if check.ConfirmedAt != nil {
		return AlreadyConfirmed, nil
	}

	if check.MissedAt != nil || check.Expired(now) {
		return 0, common.ErrTokenExpired
	}

	opctx, cancel = s.opCtx(ctx)
	applied, err := s.checks.Confirm(opctx, check.ID, now)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	if !applied {
		// Lost a race: either a duplicate click confirmed it first or the
		// evaluator counted the miss in between. Re-read to tell them apart.
		opctx, cancel = s.opCtx(ctx)
		check, err = s.checks.GetByToken(opctx, token)
		cancel()
		if err == nil && check.ConfirmedAt != nil {
			return AlreadyConfirmed, nil
		}
		return 0, common.ErrTokenExpired
	}

	// Both writes belong together, but no cross-row transaction is assumed
	// available. A failed counter reset leaves a recoverable inconsistency
	// that is surfaced for manual reconciliation, not auto-corrected.
	opctx, cancel = s.opCtx(ctx)
	err = s.users.ResetMissedChecks(opctx, check.UserID, now)
	cancel()
	if err != nil {
		s.logger.Error(ctx, "check confirmed but counter reset failed, needs reconciliation",
			"user_id", check.UserID, "check_id", check.ID, "err", err)
		return 0, fmt.Errorf("%w: resetting missed checks for user %s: %w",
			common.ErrInconsistentState, check.UserID, err)
	}

	s.logger.Info(ctx, "alive check confirmed", "user_id", check.UserID, "check_id", check.ID)

	return Confirmed, nil
}
