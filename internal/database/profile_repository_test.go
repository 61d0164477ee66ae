package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/habitbot/pkg/models"
)

func TestProfileUpsertAndLookup(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, users, "alice", true)

	_, err := profiles.GetByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, profiles.Upsert(ctx, &models.UserProfile{
		UserID: user.ID, TelegramID: "111", TelegramUsername: "alice_tg",
	}))

	got, err := profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "111", got.TelegramID)

	// Relinking replaces the row in place.
	require.NoError(t, profiles.Upsert(ctx, &models.UserProfile{
		UserID: user.ID, TelegramID: "222", TelegramUsername: "alice_new",
	}))
	got, err = profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "222", got.TelegramID)
	assert.Equal(t, "alice_new", got.TelegramUsername)

	got, err = profiles.GetByTelegramID(ctx, "222")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	_, err = profiles.GetByTelegramID(ctx, "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileDeletedWithUser(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, users, "alice", true)
	require.NoError(t, profiles.Upsert(ctx, &models.UserProfile{UserID: user.ID, TelegramID: "111"}))

	require.NoError(t, users.Delete(ctx, user.ID))

	_, err := profiles.GetByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetActiveUsers(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, users, "alice", true)
	createUser(t, users, "bob", false)
	createUser(t, users, "carol", true)

	active, err := users.GetActiveUsers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "alice", active[0].Username)
	assert.Equal(t, "carol", active[1].Username)
}
