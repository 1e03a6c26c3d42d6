package client

import (
	"context"
	"net/http"

	"studypath/internal/domain"
	"studypath/internal/dto"
)

// Login authenticates with email and password and returns the
// session-carrying user.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	var resp dto.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		dto.LoginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// Register creates a new account and returns the session-carrying user.
func (c *Client) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	var resp dto.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/register", nil,
		dto.RegisterRequest{Name: name, Email: email, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// Me fetches the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*dto.UserPayload, error) {
	var resp dto.UserPayload
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the session server-side. Callers treat failures as
// best-effort; local session clearing never depends on this call.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, true)
	return err
}
