// deck-tracker-system/services/auth_provider_client.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type AuthProviderClient struct {
	BaseURL string
	Client  *http.Client
}

// ProviderSession is the identity payload the external OAuth provider returns
// when an opaque session_id is exchanged.
type ProviderSession struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

func NewAuthProviderClient(baseURL string) *AuthProviderClient {
	return &AuthProviderClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetSessionData exchanges the provider's opaque session_id for user identity
// data. Single attempt, no retries; failures surface as a client error upstream.
func (c *AuthProviderClient) GetSessionData(sessionID string) (*ProviderSession, error) {
	req, err := http.NewRequest("GET", c.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("AuthProvider session exchange returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("session exchange failed: %d", resp.StatusCode)
	}

	var out ProviderSession
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
