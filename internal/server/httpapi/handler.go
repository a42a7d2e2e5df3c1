// Package httpapi exposes the server over HTTP: account registration and
// login, the owner-facing CRUD surface for messages and passcodes, the
// public confirmation endpoint that alive-check emails link to, and the
// scheduler entry point that runs a cycle.
package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lastmessage-app/server/internal/common"
	"github.com/lastmessage-app/server/internal/logging"
	"github.com/lastmessage-app/server/internal/server/config"
	"github.com/lastmessage-app/server/internal/server/services"
)

// Handler bundles the services behind the HTTP routes.
type Handler struct {
	users     *services.UserService
	checks    *services.CheckService
	messages  *services.MessageService
	passcodes *services.PasscodeService
	cycle     *services.Cycle
	logger    logging.Logger
	cfg       *config.Config
}

func NewHandler(
	users *services.UserService,
	checks *services.CheckService,
	messages *services.MessageService,
	passcodes *services.PasscodeService,
	cycle *services.Cycle,
	logger logging.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		users:     users,
		checks:    checks,
		messages:  messages,
		passcodes: passcodes,
		cycle:     cycle,
		logger:    logger,
		cfg:       cfg,
	}
}

// fail maps service errors onto HTTP statuses. Unrecognized errors are logged
// and reported as an opaque 500 so internals never leak to clients.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, common.ErrorUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, common.ErrorEmailInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already in use"})
	case errors.Is(err, common.ErrorInvalidFrequency):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "check frequency must be at least one day"})
	default:
		h.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil || input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	user, err := h.users.Register(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"email": user.Email,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	token, err := h.users.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{"access_token": token})
}

func (h *Handler) GetSettings(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), userID(c))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(newSettingsResponse(user))
}

func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var input settingsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.users.UpdateCheckFrequency(c.UserContext(), userID(c), input.CheckFrequencyDays); err != nil {
		return h.fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
