// models/card.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// PokemonCard caches card metadata fetched from the public card database.
// CardID is the lowercase "set-number" form (e.g. "mew-123"); SetCode is stored
// uppercase. Lookups try the (set_code, card_number) pair first, then card_id.
type PokemonCard struct {
	ID         string `json:"id" gorm:"primaryKey"`
	CardID     string `json:"card_id" gorm:"uniqueIndex;not null"`
	SetCode    string `json:"set_code" gorm:"index:idx_set_number;not null"`
	CardNumber string `json:"card_number" gorm:"index:idx_set_number;not null"`

	Name      string `json:"name"`
	Supertype string `json:"supertype"`
	HP        string `json:"hp,omitempty"`

	Subtypes    datatypes.JSON `json:"subtypes,omitempty"`
	Types       datatypes.JSON `json:"types,omitempty"`
	Abilities   datatypes.JSON `json:"abilities,omitempty"`
	Attacks     datatypes.JSON `json:"attacks,omitempty"`
	Weaknesses  datatypes.JSON `json:"weaknesses,omitempty"`
	Resistances datatypes.JSON `json:"resistances,omitempty"`
	RetreatCost datatypes.JSON `json:"retreat_cost,omitempty"`
	Rules       datatypes.JSON `json:"rules,omitempty"`

	// 🖼️ Media
	ImageSmall string `json:"image_small,omitempty"`
	ImageLarge string `json:"image_large,omitempty"` // mirrored to R2 when resolved

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
