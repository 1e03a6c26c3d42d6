package store

import (
	"context"
	"encoding/json"

	"studypath/internal/domain"
)

// credentialBlob is the serialized shape of the persisted session.
type credentialBlob struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar,omitempty"`
		Provider string `json:"provider"`
	} `json:"user"`
}

// CredentialStore persists the authenticated session under a fixed key.
type CredentialStore struct {
	kv KV
}

// NewCredentialStore creates a credential store over the given KV.
func NewCredentialStore(kv KV) *CredentialStore {
	return &CredentialStore{kv: kv}
}

// Load reads the persisted session. Returns ErrNotFound when no session
// is stored; a corrupt blob is also reported as ErrNotFound after being
// cleared, so a bad write can never wedge startup.
func (s *CredentialStore) Load(ctx context.Context) (*domain.User, error) {
	raw, err := s.kv.Load(ctx, CredentialsKey())
	if err != nil {
		return nil, err
	}

	var blob credentialBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		_ = s.kv.Clear(ctx, CredentialsKey())
		return nil, ErrNotFound
	}

	return &domain.User{
		ID:           blob.User.ID,
		Name:         blob.User.Name,
		Email:        blob.User.Email,
		Avatar:       blob.User.Avatar,
		Provider:     domain.Provider(blob.User.Provider),
		AccessToken:  blob.AccessToken,
		RefreshToken: blob.RefreshToken,
	}, nil
}

// Save persists the session.
func (s *CredentialStore) Save(ctx context.Context, user *domain.User) error {
	var blob credentialBlob
	blob.AccessToken = user.AccessToken
	blob.RefreshToken = user.RefreshToken
	blob.User.ID = user.ID
	blob.User.Name = user.Name
	blob.User.Email = user.Email
	blob.User.Avatar = user.Avatar
	blob.User.Provider = string(user.Provider)

	raw, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return s.kv.Save(ctx, CredentialsKey(), raw)
}

// Clear removes the persisted session.
func (s *CredentialStore) Clear(ctx context.Context) error {
	return s.kv.Clear(ctx, CredentialsKey())
}
