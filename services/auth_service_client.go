// team-manage-system/services/auth_service_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AuthServiceClient talks to the hosted auth service (sign-in, token
// validation). The gateway in front of this service uses it; handlers only
// ever see the resulting Session.
type AuthServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Session is the explicit, request-scoped view of an authenticated identity.
// There is no ambient global mirror of auth state: a Session is produced per
// request and refreshed on demand via Refresh.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Roles       []string  `json:"roles"`
	ExpiresAt   time.Time `json:"expires_at"`

	accessToken string
	client      *AuthServiceClient
}

func NewAuthServiceClient(baseURL, token string) *AuthServiceClient {
	return &AuthServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ValidateToken calls /validate on the auth service and wraps the result in a
// Session bound to this client.
func (c *AuthServiceClient) ValidateToken(accessToken string) (*Session, error) {
	url := fmt.Sprintf("%s/auth/validate", c.BaseURL)

	reqBody := map[string]interface{}{
		"access_token": accessToken,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token) // service → auth service token

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("AuthService /validate returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("auth validation failed: %d", resp.StatusCode)
	}

	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, err
	}
	sess.accessToken = accessToken
	sess.client = c

	return &sess, nil
}

// Refresh re-validates the session's token and updates the session in place.
// Call it when a long-lived handler needs current roles instead of the values
// captured at request start.
func (s *Session) Refresh() error {
	if s.client == nil {
		return fmt.Errorf("session is not bound to an auth client")
	}
	fresh, err := s.client.ValidateToken(s.accessToken)
	if err != nil {
		return err
	}
	s.UserID = fresh.UserID
	s.Email = fresh.Email
	s.DisplayName = fresh.DisplayName
	s.Roles = fresh.Roles
	s.ExpiresAt = fresh.ExpiresAt
	return nil
}
