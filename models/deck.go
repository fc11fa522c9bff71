// models/deck.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Deck is a user's decklist plus cached card data and accumulated hand-test results.
// Stats is filled on the fly for dashboard listings and never persisted authoritatively.
type Deck struct {
	ID       string `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"index;not null"`
	DeckName string `json:"deck_name" gorm:"not null"`
	Slug     string `json:"slug" gorm:"index"`
	DeckList string `json:"deck_list"` // PTCGL format text

	// Cached card data from the Pokemon TCG API (free-form document)
	CardData datatypes.JSON `json:"card_data,omitempty"`

	// Hand simulator results, accumulated across runs.
	// Cleared whenever deck_list changes; old simulations no longer apply.
	TestResults *TestResults `json:"test_results,omitempty" gorm:"type:json"`

	// Computed on read, not stored
	Stats *DeckSummary `json:"stats,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TestResults is a running hand-count-weighted average over every batch
// submitted since the last decklist change, not a snapshot of the last run.
type TestResults struct {
	TotalHands         int       `json:"total_hands"`
	MulliganCount      int       `json:"mulligan_count"`
	MulliganPercentage float64   `json:"mulligan_percentage"`
	AvgPokemon         float64   `json:"avg_pokemon"`
	AvgTrainer         float64   `json:"avg_trainer"`
	AvgEnergy          float64   `json:"avg_energy"`
	AvgBasicPokemon    float64   `json:"avg_basic_pokemon"`
	LastTested         time.Time `json:"last_tested"`
}

// Stored as a JSON column. Valuer/Scanner rather than a gorm serializer so the
// field also works in map-style Updates.
func (tr *TestResults) Value() (driver.Value, error) {
	if tr == nil {
		return nil, nil
	}
	return json.Marshal(tr)
}

func (tr *TestResults) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported test_results column type %T", value)
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, tr)
}

// DeckSummary is the lightweight win/loss block attached to dashboard listings.
type DeckSummary struct {
	TotalMatches int     `json:"total_matches"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
}
