// handlers/card_routes.go
package handlers

import (
	"deck-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCardRoutes(api fiber.Router, cardService *services.CardService, metaService *services.MetaService) {
	// 🔓 Card catalog is public read-only; batch save feeds the cache
	// progressively from the frontend.
	// /cards/count and /cards/image must register before the :set_code route.
	api.Get("/cards/count", cardService.GetCardCount)
	api.Get("/cards/image/:set_code/:card_number", cardService.GetCardImage)
	api.Get("/cards/:set_code/:card_number", cardService.GetCard)
	api.Post("/cards/batch", cardService.SaveCardsBatch)

	api.Get("/meta-wizard/:deck_name", metaService.GetMetaWizard)
}
