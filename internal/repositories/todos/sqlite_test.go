package todos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/models"
	"github.com/planloop/planloop/internal/repositories/categories"
	"github.com/planloop/planloop/internal/storage"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open("file:todosrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateOrUpdate_RoundTripsScalarsAndRefs(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	catRepo := categories.NewSQLiteRepository(db)
	ctx := context.Background()

	cat, err := catRepo.GetOrCreateByName(ctx, "Groceries", "u1")
	require.NoError(t, err)

	item := models.NewTodoItem("Buy milk", "2%", "u1")
	due := time.Date(2026, 3, 1, 8, 30, 0, 500000000, time.UTC)
	item.DueAt = &due
	item.RecurrenceRule = "FREQ=WEEKLY"
	meal := &models.Meal{}
	meal.UID = "m1"
	item.Meal = meal
	item.Category = cat

	require.NoError(t, repo.CreateOrUpdate(ctx, item))

	got, err := repo.GetByUID(ctx, item.UID)
	require.NoError(t, err)
	require.Equal(t, "Buy milk", got.Title)
	require.Equal(t, "2%", got.Details)
	require.Equal(t, "FREQ=WEEKLY", got.RecurrenceRule)
	require.NotNil(t, got.DueAt)
	require.Equal(t, due.UnixNano(), got.DueAt.UTC().UnixNano())
	require.NotNil(t, got.Meal)
	require.Equal(t, "m1", got.Meal.UID)
	require.Nil(t, got.ShoppingListItem)
	require.NotNil(t, got.Category)
	require.Equal(t, "Groceries", got.Category.Name)
}

func TestCreateOrUpdate_ClearsReferences(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	item := models.NewTodoItem("Task", "d", "u1")
	meal := &models.Meal{}
	meal.UID = "m1"
	item.Meal = meal
	require.NoError(t, repo.CreateOrUpdate(ctx, item))

	item.Meal = nil
	require.NoError(t, repo.CreateOrUpdate(ctx, item))

	got, err := repo.GetByUID(ctx, item.UID)
	require.NoError(t, err)
	require.Nil(t, got.Meal)
}

func TestGetDirty_SkipsClean(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a := models.NewTodoItem("A", "d", "u1")
	b := models.NewTodoItem("B", "d", "u1")
	b.MarkSynced()

	require.NoError(t, repo.CreateOrUpdate(ctx, a))
	require.NoError(t, repo.CreateOrUpdate(ctx, b))

	got, err := repo.GetDirty(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, a.UID, got[0].UID)

	_, err = repo.GetByUID(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
