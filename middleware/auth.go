// middleware/auth.go
package middleware

import (
	"log"

	"deck-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware resolves the request's session token (cookie or bearer
// header) to a user and attaches it to the context. Requests with no valid,
// unexpired session are rejected with 401 before any handler runs, so
// ownership checks never see an unauthenticated request.
func UserContextMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := services.TokenFromRequest(c)

		user, err := auth.CurrentUser(token)
		if err != nil {
			log.Printf("❌ [USER_CTX] Session lookup failed: %v | Path: %s", err, c.Path())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve session",
			})
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		// Attach to ctx for handlers
		c.Locals("user", user)

		return c.Next()
	}
}
