// deck-tracker-system/services/match_service.go
package services

import (
	"errors"
	"time"

	"deck-tracker-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

type MatchCreate struct {
	DeckID           string `json:"deck_id"`
	Result           string `json:"result"`
	OpponentDeckName string `json:"opponent_deck_name"`
	WentFirst        bool   `json:"went_first"`
	BadGame          bool   `json:"bad_game"`
	MulliganCount    int    `json:"mulligan_count"`
	Notes            string `json:"notes"`
}

// MatchUpdate mirrors DeckUpdate: pointer fields, absent means untouched.
type MatchUpdate struct {
	Result           *string `json:"result"`
	OpponentDeckName *string `json:"opponent_deck_name"`
	WentFirst        *bool   `json:"went_first"`
	BadGame          *bool   `json:"bad_game"`
	MulliganCount    *int    `json:"mulligan_count"`
	Notes            *string `json:"notes"`
}

// CreateMatch logs a match against a deck the user owns.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	user := requestUser(c)

	var req MatchCreate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Result != models.ResultWin && req.Result != models.ResultLoss {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "result must be 'win' or 'loss'"})
	}

	// Deck ownership gates match creation; absent and unowned both 404
	var deck models.Deck
	err := s.DB.Where("id = ? AND user_id = ?", req.DeckID, user.ID).First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Deck not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch deck",
			"cause": err.Error(),
		})
	}

	match := models.Match{
		ID:               uuid.NewString(),
		DeckID:           req.DeckID,
		UserID:           user.ID,
		Result:           req.Result,
		OpponentDeckName: req.OpponentDeckName,
		WentFirst:        req.WentFirst,
		BadGame:          req.BadGame,
		MulliganCount:    req.MulliganCount,
		Notes:            req.Notes,
		MatchDate:        time.Now().UTC(),
	}

	if err := s.DB.Create(&match).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create match",
			"cause": err.Error(),
		})
	}

	return c.JSON(match)
}

// GetMatches returns every match for an owned deck, newest first.
func (s *MatchService) GetMatches(c *fiber.Ctx) error {
	user := requestUser(c)
	deckID := c.Params("deck_id")

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
	if err := s.DB.Where("deck_id = ?", deckID).
		Order("match_date DESC").
		Find(&matches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch matches",
			"cause": err.Error(),
		})
	}

	return c.JSON(matches)
}

// UpdateMatch applies only the fields present in the request.
func (s *MatchService) UpdateMatch(c *fiber.Ctx) error {
	user := requestUser(c)
	matchID := c.Params("id")

	var req MatchUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Result != nil && *req.Result != models.ResultWin && *req.Result != models.ResultLoss {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "result must be 'win' or 'loss'"})
	}

	var match models.Match
	err := s.DB.Where("id = ? AND user_id = ?", matchID, user.ID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch match",
			"cause": err.Error(),
		})
	}

	updates := map[string]any{}
	if req.Result != nil {
		updates["result"] = *req.Result
	}
	if req.OpponentDeckName != nil {
		updates["opponent_deck_name"] = *req.OpponentDeckName
	}
	if req.WentFirst != nil {
		updates["went_first"] = *req.WentFirst
	}
	if req.BadGame != nil {
		updates["bad_game"] = *req.BadGame
	}
	if req.MulliganCount != nil {
		updates["mulligan_count"] = *req.MulliganCount
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&models.Match{}).Where("id = ?", matchID).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update match",
				"cause": err.Error(),
			})
		}
	}

	var updated models.Match
	if err := s.DB.Where("id = ?", matchID).First(&updated).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch updated match",
			"cause": err.Error(),
		})
	}

	return c.JSON(updated)
}

// DeleteMatch removes a single match the user owns.
func (s *MatchService) DeleteMatch(c *fiber.Ctx) error {
	user := requestUser(c)
	matchID := c.Params("id")

	res := s.DB.Where("id = ? AND user_id = ?", matchID, user.ID).Delete(&models.Match{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete match",
			"cause": res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
	}

	return c.JSON(fiber.Map{"message": "Match deleted successfully"})
}
