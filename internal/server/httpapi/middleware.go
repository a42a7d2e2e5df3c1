package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lastmessage-app/server/internal/server/auth"
)

const userIDKey = "userID"

// RequireAuth verifies the Bearer token and stores the authenticated user's
// ID in the request locals.
func (h *Handler) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}

	id, err := auth.GetUserIDFromToken(token, []byte(h.cfg.SecretKey))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	c.Locals(userIDKey, id)

	return c.Next()
}

// userID returns the authenticated user's ID. Only valid behind RequireAuth.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
