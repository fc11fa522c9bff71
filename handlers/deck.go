// handlers/deck_routes.go
package handlers

import (
	"deck-tracker-system/middleware"
	"deck-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDeckRoutes(api fiber.Router, deckService *services.DeckService, matchService *services.MatchService, authService *services.AuthService) {
	// 🔐 Every deck and match route requires a resolved identity; repositories
	// then enforce ownership on top of it.
	secured := api.Group("", middleware.UserContextMiddleware(authService))

	secured.Post("/decks", deckService.CreateDeck)
	secured.Get("/decks", deckService.GetDecks)
	secured.Get("/decks/:id", deckService.GetDeck)
	secured.Put("/decks/:id", deckService.UpdateDeck)
	secured.Delete("/decks/:id", deckService.DeleteDeck)

	secured.Get("/decks/:id/stats", deckService.GetDeckStats)
	secured.Post("/decks/:id/test-results", deckService.SaveTestResults)

	secured.Post("/matches", matchService.CreateMatch)
	secured.Get("/matches/:deck_id", matchService.GetMatches)
	secured.Put("/matches/:id", matchService.UpdateMatch)
	secured.Delete("/matches/:id", matchService.DeleteMatch)
}
