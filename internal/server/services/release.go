package services

import (
	"context"
	"fmt"

	"github.com/lastmessage-app/server/internal/cryptox"
	"github.com/lastmessage-app/server/internal/logging"
	"github.com/lastmessage-app/server/internal/mailer"
	"github.com/lastmessage-app/server/internal/server/config"
	"github.com/lastmessage-app/server/internal/server/repositories/messages"
	"github.com/lastmessage-app/server/internal/server/repositories/passcodes"
	"github.com/lastmessage-app/server/internal/server/repositories/users"
)

// Releaser performs the one-time disclosure of a user's stored secrets to
// their designated recipients.
type Releaser struct {
	users     users.Repository
	messages  messages.Repository
	passcodes passcodes.Repository
	cipher    *cryptox.Cipher
	notifier  mailer.Notifier
	logger    logging.Logger
	cfg       *config.Config
}

func NewReleaser(u users.Repository, m messages.Repository, p passcodes.Repository,
	cipher *cryptox.Cipher, n mailer.Notifier, l logging.Logger, cfg *config.Config) *Releaser {
	return &Releaser{users: u, messages: m, passcodes: p, cipher: cipher, notifier: n, logger: l, cfg: cfg}
}

func (r *Releaser) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.OpTimeout)
}

// Release marks the user deceased and mails every stored message and
// passcode, decrypted, to its recipient. The messages_sent flag is a release
// latch: once true the whole operation is a no-op, so retried or duplicated
// evaluations cannot disclose twice.
//
// Individual recipient failures are logged and do not block the remaining
// sends or the latch: the release counts as performed once attempted, since
// no transport-level delivery acknowledgment exists. If the process dies
// after the deceased mark but before the latch, a re-invocation re-sends;
// duplicate final mails on crash recovery are a tolerated side effect.
func (r *Releaser) Release(ctx context.Context, userID string) error {
	opctx, cancel := r.opCtx(ctx)
	user, err := r.users.GetByID(opctx, userID)
	cancel()
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	if user.MessagesSent {
		return nil
	}

	opctx, cancel = r.opCtx(ctx)
	applied, err := r.users.MarkDeceased(opctx, userID)
	cancel()
	if err != nil {
		return fmt.Errorf("marking deceased: %w", err)
	}
	if !applied {
		// Another invocation latched messages_sent in between.
		return nil
	}

	opctx, cancel = r.opCtx(ctx)
	userMessages, err := r.messages.ListByUser(opctx, userID)
	cancel()
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	opctx, cancel = r.opCtx(ctx)
	userPasscodes, err := r.passcodes.ListByUser(opctx, userID)
	cancel()
	if err != nil {
		return fmt.Errorf("loading passcodes: %w", err)
	}

	senderName := mailer.SenderName(user.Email)

	for _, message := range userMessages {
		content, err := r.cipher.DecryptString(message.Content, userID)
		if err != nil {
			r.logger.Error(ctx, "decrypting message for release", "user_id", userID, "message_id", message.ID, "err", err)
			continue
		}

		opctx, cancel = r.opCtx(ctx)
		err = r.notifier.Send(opctx, mailer.FinalMessageEmail(message.RecipientEmail, senderName, content))
		cancel()
		if err != nil {
			r.logger.Error(ctx, "sending final message", "user_id", userID, "message_id", message.ID, "err", err)
		}
	}

	for _, passcode := range userPasscodes {
		code, err := r.cipher.DecryptString(passcode.Passcode, userID)
		if err != nil {
			r.logger.Error(ctx, "decrypting passcode for release", "user_id", userID, "passcode_id", passcode.ID, "err", err)
			continue
		}

		opctx, cancel = r.opCtx(ctx)
		err = r.notifier.Send(opctx, mailer.PasscodeEmail(passcode.RecipientEmail, senderName, passcode.DeviceType, code))
		cancel()
		if err != nil {
			r.logger.Error(ctx, "sending passcode", "user_id", userID, "passcode_id", passcode.ID, "err", err)
		}
	}

	opctx, cancel = r.opCtx(ctx)
	_, err = r.users.MarkMessagesSent(opctx, userID)
	cancel()
	if err != nil {
		return fmt.Errorf("latching messages_sent: %w", err)
	}

	r.logger.Info(ctx, "final messages released",
		"user_id", userID, "messages", len(userMessages), "passcodes", len(userPasscodes))

	return nil
}
