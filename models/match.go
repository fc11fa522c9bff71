// models/match.go
package models

import "time"

const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// Match records a single game played with a deck against a named opponent deck.
// UserID is denormalized from the owning deck so ownership checks stay one query.
type Match struct {
	ID               string `json:"id" gorm:"primaryKey"`
	DeckID           string `json:"deck_id" gorm:"index;not null"`
	UserID           string `json:"user_id" gorm:"index;not null"`
	Result           string `json:"result" gorm:"type:varchar(8);check:result IN ('win','loss')"`
	OpponentDeckName string `json:"opponent_deck_name"`
	WentFirst        bool   `json:"went_first"`
	BadGame          bool   `json:"bad_game" gorm:"default:false"`
	MulliganCount    int    `json:"mulligan_count" gorm:"default:0"`
	Notes            string `json:"notes,omitempty"`

	MatchDate time.Time `json:"match_date"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
