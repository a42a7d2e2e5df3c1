package httpapi

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lastmessage-app/server/internal/common"
	"github.com/lastmessage-app/server/internal/server/services"
)

// ConfirmCheck resolves the token from an alive-check email. It is the one
// unauthenticated endpoint a recipient ever touches, so outcomes are rendered
// as redirects to static pages rather than API responses.
func (h *Handler) ConfirmCheck(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing token"})
	}

	result, err := h.checks.Confirm(c.UserContext(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid token"})
		case errors.Is(err, common.ErrTokenExpired):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "token expired"})
		default:
			return h.fail(c, err)
		}
	}

	if result == services.AlreadyConfirmed {
		return c.Redirect(h.cfg.AppURL+"/alive-check-already-confirmed", fiber.StatusFound)
	}

	return c.Redirect(h.cfg.AppURL+"/alive-check-confirmed", fiber.StatusFound)
}

// TriggerCheck issues an alive check for the caller immediately, outside the
// frequency window.
func (h *Handler) TriggerCheck(c *fiber.Ctx) error {
	if err := h.checks.IssueForUser(c.UserContext(), userID(c)); err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "sent"})
}

// RunCycle runs one full issue-and-evaluate cycle. Meant to be hit by an
// external scheduler (cron) presenting the shared cycle token.
func (h *Handler) RunCycle(c *fiber.Ctx) error {
	presented := c.Get("X-Cycle-Token")
	if subtle.ConstantTimeCompare([]byte(presented), []byte(h.cfg.CycleToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	return c.JSON(h.cycle.Run(c.UserContext()))
}
