// deck-tracker-system/services/card_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"regexp"
	"strings"
	"time"

	"deck-tracker-system/models"
	"deck-tracker-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const cardCacheTTL = 1 * time.Hour

// Card page image CDN pattern, e.g.
// https://limitlesstcg.nyc3.cdn.digitaloceanspaces.com/tpci/MEW/MEW_123_R_EN_LG.png
var cardImagePattern = regexp.MustCompile(`https://limitlesstcg\.nyc3\.cdn\.digitaloceanspaces\.com/tpci/[^"]+\.png`)

// CardService serves the card catalog cache. Cache may be nil; lookups then go
// straight to the database.
type CardService struct {
	DB           *gorm.DB
	Cache        *redis.Client
	ImageBaseURL string
}

func NewCardService(db *gorm.DB, cache *redis.Client) *CardService {
	return &CardService{
		DB:           db,
		Cache:        cache,
		ImageBaseURL: "https://limitlesstcg.com/cards",
	}
}

// GetCard looks a card up by set code + number: exact (SET, number) match
// first, then the lowercase "set-number" card_id form. Unauthenticated
// read-only route.
func (s *CardService) GetCard(c *fiber.Ctx) error {
	setCode := strings.ToUpper(c.Params("set_code"))
	cardNumber := c.Params("card_number")
	cardID := fmt.Sprintf("%s-%s", strings.ToLower(setCode), cardNumber)

	cacheKey := "card:" + cardID
	if s.Cache != nil {
		if data, err := s.Cache.Get(c.Context(), cacheKey).Bytes(); err == nil {
			c.Set("Content-Type", "application/json")
			return c.Send(data)
		}
	}

	var card models.PokemonCard
	err := s.DB.Where("set_code = ? AND card_number = ?", setCode, cardNumber).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.DB.Where("card_id = ?", cardID).First(&card).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Card not found in database"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch card",
			"cause": err.Error(),
		})
	}

	if s.Cache != nil {
		if data, err := json.Marshal(card); err == nil {
			if err := s.Cache.Set(c.Context(), cacheKey, data, cardCacheTTL).Err(); err != nil {
				log.Printf("[CARDS] Failed to cache %s: %v", cardID, err)
			}
		}
	}

	return c.JSON(card)
}

// GetCardCount returns the total number of cached cards.
func (s *CardService) GetCardCount(c *fiber.Ctx) error {
	var count int64
	if err := s.DB.Model(&models.PokemonCard{}).Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count cards",
			"cause": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"count": count})
}

type cardBatchEntry struct {
	Name        string          `json:"name"`
	Supertype   string          `json:"supertype"`
	HP          string          `json:"hp"`
	Subtypes    json.RawMessage `json:"subtypes"`
	Types       json.RawMessage `json:"types"`
	Abilities   json.RawMessage `json:"abilities"`
	Attacks     json.RawMessage `json:"attacks"`
	Weaknesses  json.RawMessage `json:"weaknesses"`
	Resistances json.RawMessage `json:"resistances"`
	RetreatCost json.RawMessage `json:"retreatCost"`
	Rules       json.RawMessage `json:"rules"`
	Image       string          `json:"image"`
}

// SaveCardsBatch persists a batch keyed "SET-NUMBER", skipping cards already
// cached. Used by the frontend to progressively populate the catalog.
func (s *CardService) SaveCardsBatch(c *fiber.Ctx) error {
	var batch map[string]cardBatchEntry
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	saved := 0
	skipped := 0

	for cacheKey, entry := range batch {
		parts := strings.SplitN(cacheKey, "-", 2)
		if len(parts) < 2 {
			continue
		}
		setCode := strings.ToUpper(parts[0])
		cardNumber := parts[1] // card numbers may themselves contain dashes
		cardID := fmt.Sprintf("%s-%s", strings.ToLower(setCode), cardNumber)

		var existing models.PokemonCard
		err := s.DB.Where("(set_code = ? AND card_number = ?) OR card_id = ?",
			setCode, cardNumber, cardID).First(&existing).Error
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save cards",
				"cause": err.Error(),
			})
		}

		card := models.PokemonCard{
			ID:          uuid.NewString(),
			CardID:      cardID,
			SetCode:     setCode,
			CardNumber:  cardNumber,
			Name:        entry.Name,
			Supertype:   entry.Supertype,
			HP:          entry.HP,
			Subtypes:    jsonOrEmptyList(entry.Subtypes),
			Types:       jsonOrEmptyList(entry.Types),
			Abilities:   jsonOrEmptyList(entry.Abilities),
			Attacks:     jsonOrEmptyList(entry.Attacks),
			Weaknesses:  jsonOrEmptyList(entry.Weaknesses),
			Resistances: jsonOrEmptyList(entry.Resistances),
			RetreatCost: jsonOrEmptyList(entry.RetreatCost),
			Rules:       jsonOrEmptyList(entry.Rules),
			ImageSmall:  entry.Image,
		}
		if err := s.DB.Create(&card).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save cards",
				"cause": err.Error(),
			})
		}
		saved++
	}

	return c.JSON(fiber.Map{
		"message": "Cards saved successfully",
		"saved":   saved,
		"skipped": skipped,
		"total":   saved + skipped,
	})
}

func jsonOrEmptyList(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

// GetCardImage resolves a card's image URL by scraping the LimitlessTCG card
// page. Best-effort: on any failure it returns a null-image payload rather
// than an error. When R2 is configured and the card is cached, the resolved
// image is mirrored to the bucket and the CDN URL stored on the card row.
func (s *CardService) GetCardImage(c *fiber.Ctx) error {
	setCode := strings.ToUpper(c.Params("set_code"))
	cardNumber := c.Params("card_number")

	pageURL := fmt.Sprintf("%s/%s/%s", s.ImageBaseURL, setCode, cardNumber)
	resp, err := utils.HTTPClient.Get(pageURL)
	if err != nil {
		log.Printf("[CARDS] Error fetching image page from LimitlessTCG: %v", err)
		return c.JSON(fiber.Map{"image_url": nil, "error": err.Error()})
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		log.Printf("[CARDS] LimitlessTCG returned %d for %s/%s", resp.StatusCode, setCode, cardNumber)
		return c.JSON(fiber.Map{"image_url": nil, "error": fmt.Sprintf("upstream returned %d", resp.StatusCode)})
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.JSON(fiber.Map{"image_url": nil, "error": err.Error()})
	}

	imageURL := pickCardImage(cardImagePattern.FindAllString(string(html), -1))
	if imageURL == "" {
		return c.JSON(fiber.Map{"image_url": nil, "error": "Image not found in page"})
	}

	s.mirrorCardImage(setCode, cardNumber, imageURL)

	return c.JSON(fiber.Map{"image_url": imageURL})
}

// pickCardImage prefers the large render when the page carries several sizes.
func pickCardImage(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	for _, u := range candidates {
		if strings.HasSuffix(u, "_LG.png") {
			return u
		}
	}
	return candidates[0]
}

// mirrorCardImage re-hosts the resolved image in R2 so later requests do not
// depend on the scrape source. Best-effort: failures are logged and dropped.
func (s *CardService) mirrorCardImage(setCode, cardNumber, imageURL string) {
	if !utils.R2Enabled() {
		return
	}

	var card models.PokemonCard
	err := s.DB.Where("set_code = ? AND card_number = ?", setCode, cardNumber).First(&card).Error
	if err != nil || card.ImageLarge != "" {
		return
	}

	resp, err := utils.HTTPClient.Get(imageURL)
	if err != nil {
		log.Printf("[CARDS] Failed to download image for mirroring: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}

	key := fmt.Sprintf("cards/%s/%s%s", setCode, cardNumber, path.Ext(imageURL))
	cdnURL, err := utils.UploadBytesToR2(data, key, "image/png")
	if err != nil {
		log.Printf("[CARDS] Failed to mirror image to R2: %v", err)
		return
	}

	if err := s.DB.Model(&models.PokemonCard{}).Where("id = ?", card.ID).
		Update("image_large", cdnURL).Error; err != nil {
		log.Printf("[CARDS] Failed to store mirrored image URL: %v", err)
	}
}
