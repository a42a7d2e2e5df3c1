package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *Handler) {
	// Public surface: the email confirmation link, the scheduler hook and
	// account registration/login.
	app.Get("/api/alive-check/confirm", h.ConfirmCheck)
	app.Post("/api/cycle/run", h.RunCycle)
	app.Post("/api/v1/register", h.Register)
	app.Post("/api/v1/login", h.Login)

	// Authenticated owner surface.
	app.Post("/api/alive-check/trigger", h.RequireAuth, h.TriggerCheck)
	app.Get("/api/v1/settings", h.RequireAuth, h.GetSettings)
	app.Put("/api/v1/settings", h.RequireAuth, h.UpdateSettings)
	app.Get("/api/v1/messages", h.RequireAuth, h.ListMessages)
	app.Post("/api/v1/messages", h.RequireAuth, h.CreateMessage)
	app.Get("/api/v1/messages/:id", h.RequireAuth, h.GetMessage)
	app.Put("/api/v1/messages/:id", h.RequireAuth, h.UpdateMessage)
	app.Delete("/api/v1/messages/:id", h.RequireAuth, h.DeleteMessage)
	app.Get("/api/v1/passcodes", h.RequireAuth, h.ListPasscodes)
	app.Post("/api/v1/passcodes", h.RequireAuth, h.CreatePasscode)
	app.Delete("/api/v1/passcodes/:id", h.RequireAuth, h.DeletePasscode)
}
