// deck-tracker-system/services/deck_service.go
package services

import (
	"errors"
	"log"
	"time"

	"deck-tracker-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DeckService struct {
	DB *gorm.DB
}

func NewDeckService(db *gorm.DB) *DeckService {
	return &DeckService{DB: db}
}

func requestUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}

type DeckCreate struct {
	DeckName string         `json:"deck_name"`
	DeckList string         `json:"deck_list"`
	CardData datatypes.JSON `json:"card_data,omitempty"`
}

// DeckUpdate uses pointer fields so a partial PUT only touches what it names.
// JSON null collapses to "absent" here; there is no way to null a field out.
type DeckUpdate struct {
	DeckName *string        `json:"deck_name"`
	DeckList *string        `json:"deck_list"`
	CardData datatypes.JSON `json:"card_data"`
}

// CreateDeck creates a new deck with empty test results and stats.
func (s *DeckService) CreateDeck(c *fiber.Ctx) error {
	user := requestUser(c)

	var req DeckCreate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.DeckName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "deck_name is required"})
	}

	now := time.Now().UTC()
	deck := models.Deck{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		DeckName:  req.DeckName,
		Slug:      slug.Make(req.DeckName),
		DeckList:  req.DeckList,
		CardData:  req.CardData,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.DB.Create(&deck).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create deck",
			"cause": err.Error(),
		})
	}

	return c.JSON(deck)
}

// GetDecks lists every deck owned by the user, each annotated with a summary
// computed from its matches on the fly. The persisted stats field is never
// authoritative.
func (s *DeckService) GetDecks(c *fiber.Ctx) error {
	user := requestUser(c)

	var decks []models.Deck
	if err := s.DB.Where("user_id = ?", user.ID).Find(&decks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch decks",
			"cause": err.Error(),
		})
	}

	for i := range decks {
		var matches []models.Match
		if err := s.DB.Where("deck_id = ?", decks[i].ID).Find(&matches).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch matches",
				"cause": err.Error(),
			})
		}
		decks[i].Stats = ComputeDeckSummary(matches)
	}

	return c.JSON(decks)
}

// GetDeck returns a single deck. Absent and unowned are both 404; ownership
// failure must be indistinguishable from absence.
func (s *DeckService) GetDeck(c *fiber.Ctx) error {
	user := requestUser(c)
	deckID := c.Params("id")

	var deck models.Deck
	err := s.DB.Where("id = ? AND user_id = ?", deckID, user.ID).First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Deck not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch deck",
			"cause": err.Error(),
		})
	}

	return c.JSON(deck)
}

// UpdateDeck applies only the fields present in the request. A deck_list
// change invalidates the accumulated hand simulator data, so test_results is
// forcibly cleared whenever deck_list appears in the update.
func (s *DeckService) UpdateDeck(c *fiber.Ctx) error {
	user := requestUser(c)
	deckID := c.Params("id")

	var req DeckUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var deck models.Deck
	err := s.DB.Where("id = ? AND user_id = ?", deckID, user.ID).First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Deck not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch deck",
			"cause": err.Error(),
		})
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if req.DeckName != nil {
		updates["deck_name"] = *req.DeckName
		updates["slug"] = slug.Make(*req.DeckName)
	}
	if req.DeckList != nil {
		updates["deck_list"] = *req.DeckList
		// New list invalidates prior simulations
		updates["test_results"] = nil
	}
	// An explicit JSON null collapses to "absent"; card_data cannot be nulled out
	if req.CardData != nil && string(req.CardData) != "null" {
		updates["card_data"] = req.CardData
	}

	if err := s.DB.Model(&models.Deck{}).Where("id = ?", deckID).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update deck",
			"cause": err.Error(),
		})
	}

	var updated models.Deck
	if err := s.DB.Where("id = ?", deckID).First(&updated).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch updated deck",
			"cause": err.Error(),
		})
	}

	return c.JSON(updated)
}

// DeleteDeck removes the deck and every match logged against it. The two
// deletes are not wrapped in a transaction; a crash in between leaves orphan
// matches that only ever show up as dead rows, never in API responses.
func (s *DeckService) DeleteDeck(c *fiber.Ctx) error {
	user := requestUser(c)
	deckID := c.Params("id")

	res := s.DB.Where("id = ? AND user_id = ?", deckID, user.ID).Delete(&models.Deck{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete deck",
			"cause": res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Deck not found"})
	}

	if err := s.DB.Where("deck_id = ?", deckID).Delete(&models.Match{}).Error; err != nil {
		log.Printf("[DECK] Failed to cascade match deletion for deck %s: %v", deckID, err)
	}

	return c.JSON(fiber.Map{"message": "Deck deleted successfully"})
}

// GetDeckStats recomputes the full breakdown from the deck's match set on
// every call. No persisted cache.
func (s *DeckService) GetDeckStats(c *fiber.Ctx) error {
	user := requestUser(c)
	deckID := c.Params("id")

	var deck models.Deck
	err := s.DB.Where("id = ? AND user_id = ?", deckID, user.ID).First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Deck not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch deck",
			"cause": err.Error(),
		})
	}

	var matches []models.Match
	if err := s.DB.Where("deck_id = ?", deckID).Find(&matches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch matches",
			"cause": err.Error(),
		})
	}

	return c.JSON(ComputeDeckStats(matches))
}

// SaveTestResults merges one hand simulator batch into the deck's running
// averages. No deduplication: a double-submitted batch counts twice, and of two
// concurrent submissions the last writer wins.
func (s *DeckService) SaveTestResults(c *fiber.Ctx) error {
	user := requestUser(c)
	deckID := c.Params("id")

	var batch TestResultsInput
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var deck models.Deck
	err := s.DB.Where("id = ? AND user_id = ?", deckID, user.ID).First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Deck not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch deck",
			"cause": err.Error(),
		})
	}

	merged := AccumulateTestResults(deck.TestResults, batch, time.Now().UTC())

	if err := s.DB.Model(&models.Deck{}).Where("id = ?", deckID).
		Update("test_results", &merged).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save test results",
			"cause": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":             "Test results saved successfully (accumulated)",
		"total_hands":         merged.TotalHands,
		"mulligan_percentage": merged.MulliganPercentage,
	})
}
