// deck-tracker-system/services/meta_service.go
package services

import (
	"io"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"deck-tracker-system/utils"

	"github.com/gofiber/fiber/v2"
)

var (
	tableRowPattern   = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	tableCellPattern  = regexp.MustCompile(`(?s)<t[dh][^>]*>(.*?)</t[dh]>`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	percentagePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

// Matchup is one opponent deck's win rate from the meta site.
type Matchup struct {
	Opponent string  `json:"opponent"`
	WinRate  float64 `json:"win_rate"`
}

// MetaService scrapes the TrainerHill meta page for deck matchup data.
// Best-effort throughout: anything that fails to parse degrades to an
// explanatory fallback payload, never a hard error for the caller.
type MetaService struct {
	MetaURL string
}

func NewMetaService() *MetaService {
	return &MetaService{MetaURL: "https://www.trainerhill.com/meta?game=PTCG"}
}

// GetMetaWizard returns the best and worst three matchups for a deck name.
func (s *MetaService) GetMetaWizard(c *fiber.Ctx) error {
	deckName := c.Params("deck_name")

	resp, err := utils.HTTPClient.Get(s.MetaURL)
	if err != nil {
		log.Printf("[META] Error fetching meta data from TrainerHill: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch meta data",
			"cause": err.Error(),
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		log.Printf("[META] TrainerHill returned %d", resp.StatusCode)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch meta data",
		})
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch meta data",
			"cause": err.Error(),
		})
	}

	matchups := parseMatchups(string(html), deckName)

	if len(matchups) == 0 {
		log.Printf("[META] No matchup data found for %s on TrainerHill", deckName)
		return c.JSON(fiber.Map{
			"deck_name":      deckName,
			"best_matchups":  []Matchup{{Opponent: "Data not available"}},
			"worst_matchups": []Matchup{{Opponent: "Data not available"}},
			"source":         "TrainerHill",
			"note":           "Unable to parse matchup data. Deck may not be in current meta.",
		})
	}

	sort.SliceStable(matchups, func(i, j int) bool {
		return matchups[i].WinRate > matchups[j].WinRate
	})

	best := matchups
	if len(best) > 3 {
		best = best[:3]
	}
	worst := make([]Matchup, 0, 3)
	for i := len(matchups) - 1; i >= 0 && len(worst) < 3; i-- {
		worst = append(worst, matchups[i])
	}

	return c.JSON(fiber.Map{
		"deck_name":      deckName,
		"best_matchups":  best,
		"worst_matchups": worst,
		"source":         "TrainerHill",
		"total_matchups": len(matchups),
	})
}

// parseMatchups walks the page's table rows looking for the deck's row and
// pulls a win percentage out of every cell that carries one. The deck-name
// match is deliberately loose because the meta site abbreviates names ("Gardevoir"
// vs "Gardevoir ex").
func parseMatchups(html, deckName string) []Matchup {
	searchName := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(deckName), " ex", ""))
	searchName = strings.ReplaceAll(searchName, "ex", "")
	searchName = strings.TrimSpace(searchName)

	var matchups []Matchup

	for _, row := range tableRowPattern.FindAllStringSubmatch(html, -1) {
		cells := tableCellPattern.FindAllStringSubmatch(row[1], -1)
		if len(cells) == 0 {
			continue
		}

		firstCell := strings.ToLower(strings.TrimSpace(htmlTagPattern.ReplaceAllString(cells[0][1], "")))
		if firstCell == "" {
			continue
		}
		if !strings.Contains(firstCell, searchName) && !strings.Contains(searchName, firstCell) {
			continue
		}

		for i, cell := range cells[1:] {
			text := strings.TrimSpace(htmlTagPattern.ReplaceAllString(cell[1], ""))
			m := percentagePattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			winRate, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			matchups = append(matchups, Matchup{
				Opponent: "Matchup " + strconv.Itoa(i+1),
				WinRate:  winRate,
			})
		}
	}

	return matchups
}
