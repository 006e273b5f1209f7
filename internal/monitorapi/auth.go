// internal/monitorapi/auth.go
package monitorapi

import (
	"context"
	"encoding/json"

	"github.com/nmercer/insighthub/internal/domain/models"
)

// Login exchanges credentials for a bearer token. Deployments disagree on the
// token field name, so both token and access_token are accepted; a success
// body without either is ErrTokenMissing. The profile is included when the
// server sends one and fetched lazily otherwise.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	raw, err := c.post(ctx, "", "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return LoginResult{}, err
	}

	var body struct {
		Token       string              `json:"token"`
		AccessToken string              `json:"access_token"`
		User        *models.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return LoginResult{}, ErrTokenMissing
	}

	token := body.Token
	if token == "" {
		token = body.AccessToken
	}
	if token == "" {
		return LoginResult{}, ErrTokenMissing
	}
	return LoginResult{Token: token, Profile: body.User}, nil
}

// Me fetches the signed-in account's profile. An auth failure here means the
// stored token is no longer valid.
func (c *Client) Me(ctx context.Context, token string) (*models.UserProfile, error) {
	raw, err := c.get(ctx, token, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var p models.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &APIError{Message: "malformed profile response"}
	}
	return &p, nil
}

// Register creates a console account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := c.post(ctx, "", "/api/auth/register", req)
	return err
}

// ForgotPassword resets an account password by email.
func (c *Client) ForgotPassword(ctx context.Context, email, newPassword string) error {
	_, err := c.post(ctx, "", "/api/auth/forgot-password", map[string]string{
		"email":        email,
		"new_password": newPassword,
	})
	return err
}
