// handlers/auth_routes.go
package handlers

import (
	"deck-tracker-system/middleware"
	"deck-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(api fiber.Router, authService *services.AuthService) {
	// 🔓 Public: session exchange and logout (logout is idempotent, no auth needed)
	api.Post("/auth/session", authService.CreateSession)
	api.Post("/auth/logout", authService.Logout)

	// 🔐 Requires a valid session
	api.Get("/auth/me", middleware.UserContextMiddleware(authService), authService.GetMe)
}
