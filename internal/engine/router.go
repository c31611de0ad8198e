package engine

import "github.com/gofiber/fiber/v2"

func RegisterValidationRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	api := app.Group("/api", middleware...)

	api.Post("/validate", h.Validate)
}
