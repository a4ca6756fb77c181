//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-videotube/internal/model"
	"go-videotube/internal/repository"
)

func createUser(t *testing.T, users *repository.UserRepository, username string, email string) model.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	u := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     username + " full",
		Avatar:       "http://cdn/" + username + ".png",
		PasswordHash: "hash-" + username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(testDB.Pool)

	alice := createUser(t, users, "Alice", "Alice@Example.com")

	t.Run("find by id", func(t *testing.T) {
		found, err := users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
		assert.Equal(t, "hash-Alice", found.PasswordHash)
		assert.Nil(t, found.RefreshToken)

		_, err = users.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, model.ErrUserNotFound)

		_, err = users.FindByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("find by username or email", func(t *testing.T) {
		byName, err := users.FindByUsernameOrEmail(ctx, "ALICE", "")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byName.ID)

		byEmail, err := users.FindByUsernameOrEmail(ctx, "", "alice@example.COM")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byEmail.ID)

		_, err = users.FindByUsernameOrEmail(ctx, "", "")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("username or email uniqueness", func(t *testing.T) {
		exists, err := users.ExistsByUsernameOrEmail(ctx, "alice", "new@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = users.ExistsByUsernameOrEmail(ctx, "newbie", "ALICE@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = users.ExistsByUsernameOrEmail(ctx, "newbie", "new@example.com")
		require.NoError(t, err)
		assert.False(t, exists)

		dup := model.User{ID: uuid.NewString(), Username: "alice", Email: "other@example.com", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		assert.ErrorIs(t, users.Create(ctx, dup), model.ErrUserAlreadyExists)

		dup = model.User{ID: uuid.NewString(), Username: "other", Email: "alice@example.com", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		assert.ErrorIs(t, users.Create(ctx, dup), model.ErrUserAlreadyExists)
	})

	t.Run("updates", func(t *testing.T) {
		bob := createUser(t, users, "bob", "bob@example.com")

		updated, err := users.UpdateAccount(ctx, bob.ID, "Robert", "robert@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Robert", updated.FullName)

		_, err = users.UpdateAccount(ctx, bob.ID, "Robert", "alice@example.com")
		assert.ErrorIs(t, err, model.ErrUserAlreadyExists)

		updated, err = users.UpdateAvatar(ctx, bob.ID, "http://cdn/new.png")
		require.NoError(t, err)
		assert.Equal(t, "http://cdn/new.png", updated.Avatar)

		updated, err = users.UpdateCoverImage(ctx, bob.ID, "http://cdn/cover.png")
		require.NoError(t, err)
		assert.Equal(t, "http://cdn/cover.png", updated.CoverImage)

		require.NoError(t, users.UpdatePassword(ctx, bob.ID, "new-hash"))
		assert.ErrorIs(t, users.UpdatePassword(ctx, uuid.NewString(), "x"), model.ErrUserNotFound)

		_, err = users.UpdateAvatar(ctx, uuid.NewString(), "x")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestTokenRepository(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(testDB.Pool)
	tokens := repository.NewTokenRepository(testDB.Pool)

	alice := createUser(t, users, "alice", "alice@example.com")

	require.NoError(t, tokens.Store(ctx, alice.ID, "first"))
	require.NoError(t, tokens.Store(ctx, alice.ID, "second"))

	found, err := users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found.RefreshToken)
	assert.Equal(t, "second", *found.RefreshToken)

	require.NoError(t, tokens.Revoke(ctx, alice.ID))
	found, err = users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, found.RefreshToken)

	assert.ErrorIs(t, tokens.Store(ctx, uuid.NewString(), "x"), model.ErrUserNotFound)
}

func TestChannelRepository(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(testDB.Pool)
	channels := repository.NewChannelRepository(testDB.Pool)

	alice := createUser(t, users, "alice", "alice@example.com")
	bob := createUser(t, users, "bob", "bob@example.com")
	carol := createUser(t, users, "carol", "carol@example.com")

	require.NoError(t, channels.Subscribe(ctx, alice.ID, bob.ID))
	require.NoError(t, channels.Subscribe(ctx, alice.ID, bob.ID))
	require.NoError(t, channels.Subscribe(ctx, carol.ID, bob.ID))
	require.NoError(t, channels.Subscribe(ctx, bob.ID, carol.ID))

	profile, err := channels.Profile(ctx, "BOB", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, profile.ID)
	assert.Equal(t, int64(2), profile.SubscriberCount)
	assert.Equal(t, int64(1), profile.SubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	profile, err = channels.Profile(ctx, "bob", bob.ID)
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)

	require.NoError(t, channels.Unsubscribe(ctx, alice.ID, bob.ID))
	profile, err = channels.Profile(ctx, "bob", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscriberCount)
	assert.False(t, profile.IsSubscribed)

	_, err = channels.Profile(ctx, "ghost", alice.ID)
	assert.ErrorIs(t, err, model.ErrChannelNotFound)
}
