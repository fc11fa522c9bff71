// models/user.go
package models

import (
	"time"
)

// User is created on first successful OAuth handoff and never mutated afterwards.
// Keyed uniquely by email so repeat logins resolve to the same identity.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Session ties an opaque session token to a user for a 7-day window.
// Expiry is checked lazily on lookup; the sweeper only reclaims storage.
type Session struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"index;not null"`
	SessionToken string    `json:"session_token" gorm:"uniqueIndex;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

const SessionDuration = 7 * 24 * time.Hour
