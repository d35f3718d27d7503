package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/globalconnect/internal/models"
	"github.com/iudanet/globalconnect/internal/server/storage"
)

func TestTokenStorage_SaveRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	tests := []struct {
		name  string
		token *models.RefreshToken
	}{
		{
			name: "save new refresh token",
			token: &models.RefreshToken{
				Token:     "token123",
				UserID:    userID,
				ExpiresAt: time.Now().Add(24 * time.Hour),
				CreatedAt: time.Now(),
			},
		},
		{
			name: "replace existing token with same value",
			token: &models.RefreshToken{
				Token:     "token123", // Same token
				UserID:    userID,
				ExpiresAt: time.Now().Add(48 * time.Hour), // Different expiry
				CreatedAt: time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SaveRefreshToken(ctx, tt.token)
			require.NoError(t, err)

			// Verify token was saved
			retrieved, err := s.GetRefreshToken(ctx, tt.token.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.token.Token, retrieved.Token)
			assert.Equal(t, tt.token.UserID, retrieved.UserID)
			assert.WithinDuration(t, tt.token.ExpiresAt, retrieved.ExpiresAt, time.Second)
		})
	}
}

func TestTokenStorage_SaveRefreshToken_UnknownUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "orphan",
		UserID:    "nonexistent",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	})
	assert.Error(t, err, "foreign key must reject unknown user")
}

func TestTokenStorage_GetRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	token := &models.RefreshToken{
		Token:     "findme",
		UserID:    userID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.SaveRefreshToken(ctx, token))

	tests := []struct {
		wantError error
		name      string
		token     string
	}{
		{
			name:  "get existing token",
			token: "findme",
		},
		{
			name:      "get non-existent token",
			token:     "notfound",
			wantError: storage.ErrTokenNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retrieved, err := s.GetRefreshToken(ctx, tt.token)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, retrieved)
			} else {
				require.NoError(t, err)
				assert.Equal(t, token.Token, retrieved.Token)
				assert.Equal(t, token.UserID, retrieved.UserID)
			}
		})
	}
}

func TestTokenStorage_RotateRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	now := time.Now()

	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "first",
		UserID:    userID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}))

	next := &models.RefreshToken{
		Token:     "second",
		UserID:    userID,
		ExpiresAt: now.Add(2 * time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, s.RotateRefreshToken(ctx, "first", next))

	_, err := s.GetRefreshToken(ctx, "first")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	got, err := s.GetRefreshToken(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	t.Run("reused token is rejected", func(t *testing.T) {
		err := s.RotateRefreshToken(ctx, "first", &models.RefreshToken{
			Token:     "third",
			UserID:    userID,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
		})
		assert.ErrorIs(t, err, storage.ErrTokenNotFound)

		_, err = s.GetRefreshToken(ctx, "third")
		assert.ErrorIs(t, err, storage.ErrTokenNotFound, "rolled back")
	})
}

func TestTokenStorage_DeleteRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "deleteme",
		UserID:    userID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}))

	require.NoError(t, s.DeleteRefreshToken(ctx, "deleteme"))

	_, err := s.GetRefreshToken(ctx, "deleteme")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	err = s.DeleteRefreshToken(ctx, "deleteme")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_DeleteUserTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID1 := createTestUser(t, ctx, s)
	userID2 := createTestUser(t, ctx, s)

	for i, owner := range []string{userID1, userID1, userID2} {
		require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
			Token:     []string{"a", "b", "c"}[i],
			UserID:    owner,
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}))
	}

	deleted, err := s.DeleteUserTokens(ctx, userID1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	deleted, err = s.DeleteUserTokens(ctx, userID1)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)

	_, err = s.GetRefreshToken(ctx, "c")
	assert.NoError(t, err, "other user's token must survive")
}

func TestTokenStorage_DeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	now := time.Now()

	tokens := []*models.RefreshToken{
		{Token: "expired1", UserID: userID, ExpiresAt: now.Add(-2 * time.Hour), CreatedAt: now.Add(-3 * time.Hour)},
		{Token: "expired2", UserID: userID, ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)},
		{Token: "valid", UserID: userID, ExpiresAt: now.Add(time.Hour), CreatedAt: now},
	}
	for _, token := range tokens {
		require.NoError(t, s.SaveRefreshToken(ctx, token))
	}

	deleted, err := s.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, err = s.GetRefreshToken(ctx, "valid")
	assert.NoError(t, err)

	deleted, err = s.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
