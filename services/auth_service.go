// deck-tracker-system/services/auth_service.go
package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"deck-tracker-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const SessionCookieName = "session_token"

type AuthService struct {
	DB       *gorm.DB
	Provider *AuthProviderClient
}

func NewAuthService(db *gorm.DB, provider *AuthProviderClient) *AuthService {
	return &AuthService{DB: db, Provider: provider}
}

// TokenFromRequest pulls the session token off the request: cookie first,
// then a "Bearer ..." Authorization header. Empty string means no credential.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// CurrentUser resolves a session token to its owning user. Returns (nil, nil)
// for every not-authenticated case: missing token, unknown or expired session,
// and the inconsistent session-without-user case all fail safe the same way.
func (s *AuthService) CurrentUser(token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	var session models.Session
	err := s.DB.Where("session_token = ? AND expires_at > ?", token, time.Now().UTC()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.DB.Where("id = ?", session.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// CreateSession exchanges the OAuth handoff's session_id with the external
// provider, finds or creates the user by email, opens a 7-day session and
// hands the token back as an http-only cookie.
func (s *AuthService) CreateSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	providerData, err := s.Provider.GetSessionData(req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to authenticate",
			"cause": err.Error(),
		})
	}

	// Find-or-create by email. Repeat logins never overwrite identity fields.
	var user models.User
	err = s.DB.Where("email = ?", providerData.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:      uuid.NewString(),
			Email:   providerData.Email,
			Name:    providerData.Name,
			Picture: providerData.Picture,
		}
		if err := s.DB.Create(&user).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create user",
				"cause": err.Error(),
			})
		}
		log.Printf("👤 [AUTH] New user registered: %s", user.Email)
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "DB error fetching user",
			"cause": err.Error(),
		})
	}

	session := models.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		SessionToken: providerData.SessionToken,
		ExpiresAt:    time.Now().UTC().Add(models.SessionDuration),
	}
	if err := s.DB.Create(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create session",
			"cause": err.Error(),
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    session.SessionToken,
		Path:     "/",
		MaxAge:   int(models.SessionDuration.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
	})

	return c.JSON(fiber.Map{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
	})
}

// GetMe returns the authenticated user's identity.
func (s *AuthService) GetMe(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(fiber.Map{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
	})
}

// Logout deletes the presented session, if any, and clears the cookie.
// Idempotent: succeeds whether or not a session existed.
func (s *AuthService) Logout(c *fiber.Ctx) error {
	if token := TokenFromRequest(c); token != "" {
		if err := s.DB.Where("session_token = ?", token).Delete(&models.Session{}).Error; err != nil {
			log.Printf("[AUTH] Failed to delete session on logout: %v", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
	})

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
