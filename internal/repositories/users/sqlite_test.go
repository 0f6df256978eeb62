package users

import (
	"context"
	"database/sql"
	"testing"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/models"
	"github.com/planloop/planloop/internal/storage"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open("file:usersrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateOrUpdate_RoundTripsFriendsAndInvites(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	u := models.NewUser("Alice", "alice@example.com")
	f1 := models.NewPlaceholderUser("f1")
	f2 := models.NewPlaceholderUser("f2")
	u.Friends = []*models.User{f1, f2}
	inv := models.NewInvite(u.UID, "f3")
	u.SentInvites = []models.Invite{inv}

	require.NoError(t, repo.CreateOrUpdate(ctx, u))

	got, err := repo.GetByUID(ctx, u.UID)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Name)
	require.Equal(t, []string{"f1", "f2"}, got.FriendIDs())
	require.Len(t, got.SentInvites, 1)
	require.Equal(t, inv.ID(), got.SentInvites[0].ID())
	require.Empty(t, got.ReceivedInvites)
	require.True(t, got.Dirty)

	// updating replaces links rather than accumulating
	u.Friends = []*models.User{f2}
	require.NoError(t, repo.CreateOrUpdate(ctx, u))

	got, err = repo.GetByUID(ctx, u.UID)
	require.NoError(t, err)
	require.Equal(t, []string{"f2"}, got.FriendIDs())
}

func TestGetByUID_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	_, err := repo.GetByUID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetDirty_ReturnsOnlyDirtyUsers(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	dirty := models.NewUser("Dirty", "d@example.com")
	clean := models.NewUser("Clean", "c@example.com")
	clean.MarkSynced()

	require.NoError(t, repo.CreateOrUpdate(ctx, dirty))
	require.NoError(t, repo.CreateOrUpdate(ctx, clean))

	got, err := repo.GetDirty(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, dirty.UID, got[0].UID)
}
