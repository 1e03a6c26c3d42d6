package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"studypath/internal/config"
	"studypath/internal/domain"
	"studypath/internal/dto"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubUserInfoURL = "https://api.github.com/user"
)

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from provider")
)

// OAuthFlow drives the authorization-code flow for one social provider
// and turns the provider's profile into a session user.
type OAuthFlow struct {
	provider     domain.Provider
	oauth2Config *oauth2.Config
}

// NewGoogleFlow builds the Google OAuth flow.
func NewGoogleFlow(cfg config.OAuthProviderConfig) *OAuthFlow {
	return &OAuthFlow{
		provider: domain.ProviderGoogle,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// NewGitHubFlow builds the GitHub OAuth flow.
func NewGitHubFlow(cfg config.OAuthProviderConfig) *OAuthFlow {
	return &OAuthFlow{
		provider: domain.ProviderGitHub,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

// Provider returns the provider this flow authenticates against.
func (f *OAuthFlow) Provider() domain.Provider {
	return f.provider
}

// LoginURL returns the provider's consent page URL for the given state.
func (f *OAuthFlow) LoginURL(state string) string {
	return f.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// HandleCallback validates the state, exchanges the authorization code,
// and fetches the provider profile. The returned user carries the
// provider's tokens; the caller hands it to the auth manager.
func (f *OAuthFlow) HandleCallback(ctx context.Context, code, receivedState, expectedState string) (*domain.User, error) {
	if receivedState != expectedState {
		return nil, ErrInvalidAuthState
	}

	token, err := f.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	user, err := f.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	user.AccessToken = token.AccessToken
	user.RefreshToken = token.RefreshToken
	return user, nil
}

func (f *OAuthFlow) fetchProfile(ctx context.Context, token *oauth2.Token) (*domain.User, error) {
	httpClient := f.oauth2Config.Client(ctx, token)

	switch f.provider {
	case domain.ProviderGoogle:
		resp, err := httpClient.Get(googleUserInfoURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
		}
		defer resp.Body.Close()

		var info dto.GoogleUserInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("failed to decode user info: %w", err)
		}
		if info.ID == "" || info.Email == "" {
			return nil, fmt.Errorf("%w: incomplete profile", ErrFailedToGetUserInfo)
		}
		return &domain.User{
			ID:       info.ID,
			Name:     info.Name,
			Email:    info.Email,
			Avatar:   info.Picture,
			Provider: domain.ProviderGoogle,
		}, nil

	case domain.ProviderGitHub:
		resp, err := httpClient.Get(githubUserInfoURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
		}
		defer resp.Body.Close()

		var info dto.GitHubUserInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("failed to decode user info: %w", err)
		}
		if info.ID == 0 {
			return nil, fmt.Errorf("%w: incomplete profile", ErrFailedToGetUserInfo)
		}
		name := info.Name
		if name == "" {
			name = info.Login
		}
		return &domain.User{
			ID:       strconv.FormatInt(info.ID, 10),
			Name:     name,
			Email:    info.Email,
			Avatar:   info.AvatarURL,
			Provider: domain.ProviderGitHub,
		}, nil
	}

	return nil, fmt.Errorf("unsupported oauth provider: %s", f.provider)
}
