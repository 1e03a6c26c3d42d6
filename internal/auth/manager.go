// Package auth tracks the client's session: anonymous, checking, or
// authenticated. Credentials persist across restarts through the store.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"studypath/internal/domain"
	"studypath/internal/dto"
	"studypath/internal/logger"
	"studypath/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// State is the auth machine's current state.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateChecking      State = "checking"
	StateAuthenticated State = "authenticated"
)

// SessionAPI is the server-side session surface the manager needs.
// Implemented by the REST client.
type SessionAPI interface {
	Logout(ctx context.Context) error
}

// Manager is the auth state machine. All methods are safe for concurrent
// use.
type Manager struct {
	mu    sync.RWMutex
	state State
	user  *domain.User

	creds *store.CredentialStore
	api   SessionAPI
}

// NewManager creates an anonymous Manager. api may be nil when no
// server-side logout is wanted (tests, offline use).
func NewManager(creds *store.CredentialStore, api SessionAPI) *Manager {
	return &Manager{
		state: StateAnonymous,
		creds: creds,
		api:   api,
	}
}

// AttachSessionAPI wires the server-side session surface after
// construction. The manager and the REST client reference each other, so
// one side attaches late.
func (m *Manager) AttachSessionAPI(api SessionAPI) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api = api
}

// CheckAuth restores a persisted session. Run once at application start;
// while it is pending the state is StateChecking and the UI blocks.
// Absent or unusable credentials transition to anonymous with any stale
// blob cleared and no error surfaced.
func (m *Manager) CheckAuth(ctx context.Context) error {
	m.mu.Lock()
	m.state = StateChecking
	m.mu.Unlock()

	user, err := m.creds.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			// Unreadable storage is treated like an absent session, but
			// worth a log line.
			logger.Get().Warn("Failed to read persisted session", zap.Error(err))
			_ = m.creds.Clear(ctx)
		}
		m.setAnonymous()
		return nil
	}

	if user.RefreshToken != "" && tokenExpired(user.RefreshToken) {
		logger.Get().Info("Persisted session expired, clearing", zap.String("userID", user.ID))
		_ = m.creds.Clear(ctx)
		m.setAnonymous()
		return nil
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = user
	m.mu.Unlock()
	logger.Get().Info("Session restored", zap.String("userID", user.ID))
	return nil
}

// Login transitions to authenticated and persists the credentials.
func (m *Manager) Login(ctx context.Context, user *domain.User) error {
	return m.establish(ctx, user)
}

// SocialLogin transitions to authenticated with a provider-sourced user
// and persists the credentials.
func (m *Manager) SocialLogin(ctx context.Context, user *domain.User) error {
	return m.establish(ctx, user)
}

func (m *Manager) establish(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = user
	m.mu.Unlock()

	if err := m.creds.Save(ctx, user); err != nil {
		return domain.NewInternalError("failed to persist session", err)
	}
	logger.Get().Info("User logged in",
		zap.String("userID", user.ID),
		zap.String("provider", string(user.Provider)))
	return nil
}

// Logout transitions to anonymous and clears persisted credentials. The
// server call is best-effort: its failure never prevents local logout.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	api := m.api
	m.mu.RUnlock()
	if api != nil {
		if err := api.Logout(ctx); err != nil {
			logger.Get().Warn("Server-side logout failed, clearing local session anyway", zap.Error(err))
		}
	}
	m.ForceLogout(ctx)
}

// ForceLogout clears the local session without a server round trip. Used
// when a token refresh fails.
func (m *Manager) ForceLogout(ctx context.Context) {
	m.mu.Lock()
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()

	if err := m.creds.Clear(ctx); err != nil {
		logger.Get().Warn("Failed to clear persisted session", zap.Error(err))
	}
}

// UpdateTokens refreshes the active session's credentials in place and
// persists them. No-op when anonymous.
func (m *Manager) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return domain.NewUnauthorizedError("no active session to update")
	}
	m.user.AccessToken = accessToken
	if refreshToken != "" {
		m.user.RefreshToken = refreshToken
	}
	user := *m.user
	m.mu.Unlock()

	return m.creds.Save(ctx, &user)
}

// SetTokens implements the REST client's TokenProvider.
func (m *Manager) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	return m.UpdateTokens(ctx, accessToken, refreshToken)
}

// AccessToken implements the REST client's TokenProvider.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.AccessToken
}

// RefreshToken implements the REST client's TokenProvider.
func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.RefreshToken
}

// State returns the current machine state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// IsLoading reports whether the startup session check is still pending.
func (m *Manager) IsLoading() bool {
	return m.State() == StateChecking
}

// CurrentUser returns a copy of the signed-in user, or nil when anonymous.
func (m *Manager) CurrentUser() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// UserID returns the signed-in user's id, or UNAUTHORIZED when anonymous.
// There is deliberately no fallback identity.
func (m *Manager) UserID() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return "", domain.NewUnauthorizedError("not signed in")
	}
	return m.user.ID, nil
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()
}

// tokenExpired reads the token's registered claims without verifying the
// signature; verification is the server's job.
func tokenExpired(tokenString string) bool {
	claims := &dto.AuthClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
