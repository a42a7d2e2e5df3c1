package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateMessage(c *fiber.Ctx) error {
	var input messageInput
	if err := c.BodyParser(&input); err != nil || input.RecipientEmail == "" || input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	message, err := h.messages.Create(c.UserContext(), userID(c), input.RecipientEmail, input.Content)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newMessageResponse(message))
}

func (h *Handler) ListMessages(c *fiber.Ctx) error {
	list, err := h.messages.List(c.UserContext(), userID(c))
	if err != nil {
		return h.fail(c, err)
	}

	result := make([]messageResponse, 0, len(list))
	for _, message := range list {
		result = append(result, newMessageResponse(message))
	}

	return c.JSON(result)
}

func (h *Handler) GetMessage(c *fiber.Ctx) error {
	message, err := h.messages.Get(c.UserContext(), userID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(newMessageResponse(message))
}

func (h *Handler) UpdateMessage(c *fiber.Ctx) error {
	var input messageInput
	if err := c.BodyParser(&input); err != nil || input.RecipientEmail == "" || input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	err := h.messages.Update(c.UserContext(), userID(c), c.Params("id"), input.RecipientEmail, input.Content)
	if err != nil {
		return h.fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeleteMessage(c *fiber.Ctx) error {
	if err := h.messages.Delete(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) CreatePasscode(c *fiber.Ctx) error {
	var input passcodeInput
	if err := c.BodyParser(&input); err != nil || input.Passcode == "" || input.RecipientEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	passcode, err := h.passcodes.Create(c.UserContext(), userID(c), input.DeviceType, input.Passcode, input.RecipientEmail)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newPasscodeResponse(passcode))
}

func (h *Handler) ListPasscodes(c *fiber.Ctx) error {
	list, err := h.passcodes.List(c.UserContext(), userID(c))
	if err != nil {
		return h.fail(c, err)
	}

	result := make([]passcodeResponse, 0, len(list))
	for _, passcode := range list {
		result = append(result, newPasscodeResponse(passcode))
	}

	return c.JSON(result)
}

func (h *Handler) DeletePasscode(c *fiber.Ctx) error {
	if err := h.passcodes.Delete(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
