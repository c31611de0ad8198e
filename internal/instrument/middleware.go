package instrument

import (
	"github.com/gofiber/fiber/v2"

	"gatekeeper-backend/internal/metadata"
)

// Middleware attaches the instrumenter and a fresh trace ID to the request
// context and wraps the request in a root span. The user ID is attached
// when an earlier middleware has already authenticated the request.
func Middleware(inst Instrumenter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		ctx = WithTraceID(ctx, newUUID())
		ctx = WithInstrumenter(ctx, inst)
		if user, ok := c.Locals("user").(*metadata.UserContext); ok && user != nil {
			ctx = WithUserID(ctx, user.ID)
		}

		ctx, span := inst.StartSpan(ctx, "http", "api", c.Method()+" "+c.Path())
		c.SetUserContext(ctx)

		handlerErr := c.Next()
		if handlerErr != nil {
			span.SetStatus("error")
		} else {
			span.SetStatus("ok")
		}
		span.End()
		return handlerErr
	}
}
