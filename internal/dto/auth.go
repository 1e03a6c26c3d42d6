package dto

import (
	"studypath/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest is the request body for POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse carries a fresh token pair.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserPayload is the user object as the backend serializes it.
type UserPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// AuthResponse is the response body of login/register/social callbacks.
type AuthResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserPayload `json:"user"`
}

// ToDomain converts the auth response into a session-carrying user.
func (r *AuthResponse) ToDomain() *domain.User {
	provider := domain.Provider(r.User.Provider)
	if provider == "" {
		provider = domain.ProviderEmail
	}
	return &domain.User{
		ID:           r.User.ID,
		Name:         r.User.Name,
		Email:        r.User.Email,
		Avatar:       r.User.Avatar,
		Provider:     provider,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}

// AuthClaims defines the custom claims carried by the backend's JWTs.
// The client only reads them (unverified) to detect expiry; verification
// is the server's job.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// GoogleUserInfo holds user information obtained from Google.
type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GitHubUserInfo holds user information obtained from GitHub.
type GitHubUserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}
