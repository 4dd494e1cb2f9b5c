package gateway

import (
	"context"
	"net/http"

	"mesagoo-console/internal/models"
)

// LoginRequest carries the credentials posted to /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the gateway and persists the returned token
// and profile in the session store. The request itself carries no bearer
// token; login is what establishes one.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	err := c.doUnauthenticated(ctx, "Login", http.MethodPost, "/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	}, &auth)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetCredentials(ctx, auth.Token, auth.User); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Logout clears the stored token and profile. It is purely local; the
// gateway keeps no server-side session to invalidate. The configured base
// URL survives so the next login targets the same deployment.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Logout(ctx)
}
