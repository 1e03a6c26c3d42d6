package client

import (
	"context"
	"strings"
	"testing"

	"studypath/internal/config"
	"studypath/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestOAuthFlow_LoginURL(t *testing.T) {
	flow := NewGoogleFlow(config.OAuthProviderConfig{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:8080/callback",
	})

	loginURL := flow.LoginURL("state123")
	assert.True(t, strings.HasPrefix(loginURL, "https://accounts.google.com/"))
	assert.Contains(t, loginURL, "state=state123")
	assert.Contains(t, loginURL, "client_id=client-id")
	assert.Equal(t, domain.ProviderGoogle, flow.Provider())
}

func TestOAuthFlow_HandleCallback_StateMismatch(t *testing.T) {
	flow := NewGitHubFlow(config.OAuthProviderConfig{ClientID: "client-id"})

	user, err := flow.HandleCallback(context.Background(), "code", "tampered", "expected")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrInvalidAuthState)
}
