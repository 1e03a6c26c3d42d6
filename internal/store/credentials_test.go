package store

import (
	"context"
	"testing"

	"studypath/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	creds := NewCredentialStore(kv)

	user := &domain.User{
		ID:           "user1",
		Name:         "Test Student",
		Email:        "student@example.com",
		Provider:     domain.ProviderGoogle,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}
	require.NoError(t, creds.Save(ctx, user))

	loaded, err := creds.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)
	assert.Equal(t, user.Email, loaded.Email)
	assert.Equal(t, domain.ProviderGoogle, loaded.Provider)
	assert.Equal(t, "access-token", loaded.AccessToken)
	assert.Equal(t, "refresh-token", loaded.RefreshToken)
}

func TestCredentialStore_Load_Missing(t *testing.T) {
	creds := NewCredentialStore(NewMemoryKV())

	_, err := creds.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCredentialStore_Load_CorruptBlobCleared(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Save(ctx, CredentialsKey(), []byte("{not json")))

	creds := NewCredentialStore(kv)
	_, err := creds.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	// The corrupt blob is gone after the failed load.
	_, err = kv.Load(ctx, CredentialsKey())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCredentialStore_Clear(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	creds := NewCredentialStore(kv)

	require.NoError(t, creds.Save(ctx, &domain.User{ID: "user1", Email: "a@b.c"}))
	require.NoError(t, creds.Clear(ctx))

	_, err := creds.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}
