package processors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/logging"
	"github.com/planloop/planloop/internal/models"
	"github.com/planloop/planloop/internal/repositories/categories"
	"github.com/planloop/planloop/internal/repositories/meals"
	"github.com/planloop/planloop/internal/repositories/recipes"
	"github.com/planloop/planloop/internal/repositories/shoppingitems"
	"github.com/planloop/planloop/internal/repositories/todos"
	"github.com/planloop/planloop/internal/repositories/users"
	"github.com/planloop/planloop/internal/storage"
)

func setupPipeline(t *testing.T, name string) (*Pipeline, *Services) {
	db, err := storage.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	svc := &Services{
		Users:         users.NewSQLiteRepository(db),
		Todos:         todos.NewSQLiteRepository(db),
		Recipes:       recipes.NewSQLiteRepository(db),
		Meals:         meals.NewSQLiteRepository(db),
		ShoppingItems: shoppingitems.NewSQLiteRepository(db),
		Categories:    categories.NewSQLiteRepository(db),
		Log:           logging.Discard(),
	}
	return NewPipeline(svc), svc
}

func TestApplyCreatesTodoItem(t *testing.T) {
	p, svc := setupPipeline(t, "proc_todo_create")
	ctx := context.Background()

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"TodoItem": {{
			dto.KeyEntityType: "TodoItem",
			dto.KeyUID:        "t1",
			dto.KeyOwnerID:    "u1",
			"title":           "Buy milk",
			"details":         "2%",
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Todos.GetByUID(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "Buy milk", got.Title)
	require.Equal(t, "2%", got.Details)
	require.Equal(t, "u1", got.OwnerID)
	require.False(t, got.Dirty)
}

func TestApplySkipsTodoItemWithoutRequiredFields(t *testing.T) {
	p, svc := setupPipeline(t, "proc_todo_skip")
	ctx := context.Background()

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"TodoItem": {{
			dto.KeyEntityType: "TodoItem",
			dto.KeyUID:        "t1",
			dto.KeyOwnerID:    "u1",
			"title":           "Buy milk",
			// no details
		}},
	})
	require.Equal(t, 0, applied)

	_, err := svc.Todos.GetByUID(ctx, "t1")
	require.Error(t, err)
}

func TestApplySkipsEntityWithoutUID(t *testing.T) {
	p, _ := setupPipeline(t, "proc_no_uid")

	applied := p.Apply(context.Background(), map[string][]dto.DTO{
		"TodoItem": {{
			dto.KeyEntityType: "TodoItem",
			"title":           "Buy milk",
			"details":         "2%",
		}},
	})
	require.Equal(t, 0, applied)
}

func TestApplyRelationshipMissLeavesUnset(t *testing.T) {
	// a mealId referencing a meal not yet materialized locally results in an
	// unlinked item, not an error
	p, svc := setupPipeline(t, "proc_todo_miss")
	ctx := context.Background()

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"TodoItem": {{
			dto.KeyEntityType: "TodoItem",
			dto.KeyUID:        "t1",
			dto.KeyOwnerID:    "u1",
			"title":           "Buy milk",
			"details":         "2%",
			"mealId":          "m1",
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Todos.GetByUID(ctx, "t1")
	require.NoError(t, err)
	require.Nil(t, got.Meal)
	require.False(t, got.Dirty)
}

func TestApplyRelationshipAbsenceClears(t *testing.T) {
	p, svc := setupPipeline(t, "proc_todo_clear")
	ctx := context.Background()

	meal := models.NewMeal(models.MealTypeDinner, "u1")
	require.NoError(t, svc.Meals.CreateOrUpdate(ctx, meal))

	item := models.NewTodoItem("Cook", "pasta night", "u1")
	item.SetMeal(meal, "u1")
	require.NoError(t, svc.Todos.CreateOrUpdate(ctx, item))

	// update DTO omits mealId entirely
	applied := p.Apply(ctx, map[string][]dto.DTO{
		"TodoItem": {{
			dto.KeyEntityType: "TodoItem",
			dto.KeyUID:        item.UID,
			dto.KeyOwnerID:    "u1",
			"completed":       true,
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Todos.GetByUID(ctx, item.UID)
	require.NoError(t, err)
	require.Nil(t, got.Meal)
	require.True(t, got.Completed)
	require.Equal(t, "Cook", got.Title, "absent scalars stay untouched")
}

func TestApplyRelationshipRelinks(t *testing.T) {
	p, svc := setupPipeline(t, "proc_todo_relink")
	ctx := context.Background()

	m1 := models.NewMeal(models.MealTypeLunch, "u1")
	m2 := models.NewMeal(models.MealTypeDinner, "u1")
	require.NoError(t, svc.Meals.CreateOrUpdate(ctx, m1))
	require.NoError(t, svc.Meals.CreateOrUpdate(ctx, m2))

	item := models.NewTodoItem("Cook", "pasta", "u1")
	item.SetMeal(m1, "u1")
	require.NoError(t, svc.Todos.CreateOrUpdate(ctx, item))

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"TodoItem": {{
			dto.KeyEntityType: "TodoItem",
			dto.KeyUID:        item.UID,
			dto.KeyOwnerID:    "u1",
			"mealId":          m2.UID,
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Todos.GetByUID(ctx, item.UID)
	require.NoError(t, err)
	require.NotNil(t, got.Meal)
	require.Equal(t, m2.UID, got.Meal.UID)
}

func TestApplyCategoryResolvesByName(t *testing.T) {
	p, svc := setupPipeline(t, "proc_todo_category")
	ctx := context.Background()

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"TodoItem": {{
			dto.KeyEntityType: "TodoItem",
			dto.KeyUID:        "t1",
			dto.KeyOwnerID:    "u1",
			"title":           "Buy milk",
			"details":         "2%",
			"categoryName":    "Groceries",
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Todos.GetByUID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	require.Equal(t, "Groceries", got.Category.Name)

	// resolving the same name again reuses the category
	c, err := svc.Categories.GetOrCreateByName(ctx, "Groceries", "u1")
	require.NoError(t, err)
	require.Equal(t, got.Category.UID, c.UID)
}

func TestApplyUserCreatesPlaceholderFriends(t *testing.T) {
	p, svc := setupPipeline(t, "proc_user_placeholder")
	ctx := context.Background()

	f1 := models.NewUser("Frida", "frida@example.com")
	f1.UID = "f1"
	f1.OwnerID = "f1"
	require.NoError(t, svc.Users.CreateOrUpdate(ctx, f1))

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"User": {{
			dto.KeyEntityType: "User",
			dto.KeyUID:        "u1",
			dto.KeyOwnerID:    "u1",
			"name":            "Alice",
			"email":           "alice@example.com",
			"friendIds":       []string{"f1", "f2"},
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Users.GetByUID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Friends, 2)
	require.True(t, got.HasFriend("f1"))
	require.True(t, got.HasFriend("f2"))

	// f2 exists as a uid-only placeholder now
	ph, err := svc.Users.GetByUID(ctx, "f2")
	require.NoError(t, err)
	require.Empty(t, ph.Name)
	require.False(t, ph.Dirty)
}

func TestApplyUserFriendAbsenceClears(t *testing.T) {
	p, svc := setupPipeline(t, "proc_user_clear")
	ctx := context.Background()

	a := models.NewUser("Alice", "alice@example.com")
	b := models.NewUser("Bob", "bob@example.com")
	require.NoError(t, svc.Users.CreateOrUpdate(ctx, b))
	a.AddFriend(b, a.UID)
	require.NoError(t, svc.Users.CreateOrUpdate(ctx, a))

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"User": {{
			dto.KeyEntityType: "User",
			dto.KeyUID:        a.UID,
			dto.KeyOwnerID:    a.UID,
			"name":            "Alice",
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Users.GetByUID(ctx, a.UID)
	require.NoError(t, err)
	require.Empty(t, got.Friends)
}

func TestApplyRecipeWithIngredientsAndSteps(t *testing.T) {
	p, svc := setupPipeline(t, "proc_recipe")
	ctx := context.Background()

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"Recipe": {{
			dto.KeyEntityType: "Recipe",
			dto.KeyUID:        "r1",
			dto.KeyOwnerID:    "u1",
			"name":            "Pancakes",
			"ingredients": []map[string]any{
				{"position": 0, "name": "Flour", "quantity": 200.0, "unit": "g"},
				{"position": 1, "name": "Milk", "quantity": 300.0, "unit": "ml"},
			},
			"steps": []map[string]any{
				{"position": 0, "text": "Mix"},
				{"position": 1, "text": "Fry"},
			},
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Recipes.GetByUID(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "Pancakes", got.Name)
	require.Len(t, got.Ingredients, 2)
	require.Equal(t, "Flour", got.Ingredients[0].Name)
	require.Equal(t, 200.0, got.Ingredients[0].Quantity)
	require.Len(t, got.Steps, 2)
	require.Equal(t, "Fry", got.Steps[1].Text)
}

func TestApplyMealLinksSetDifference(t *testing.T) {
	p, svc := setupPipeline(t, "proc_meal_links")
	ctx := context.Background()

	s1 := models.NewShoppingListItem("Eggs", 12, "pcs", "u1")
	s2 := models.NewShoppingListItem("Butter", 1, "pack", "u1")
	require.NoError(t, svc.ShoppingItems.CreateOrUpdate(ctx, s1))
	require.NoError(t, svc.ShoppingItems.CreateOrUpdate(ctx, s2))

	meal := models.NewMeal(models.MealTypeBreakfast, "u1")
	meal.AddShoppingListItem(s1, "u1")
	require.NoError(t, svc.Meals.CreateOrUpdate(ctx, meal))

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"Meal": {{
			dto.KeyEntityType:     "Meal",
			dto.KeyUID:            meal.UID,
			dto.KeyOwnerID:        "u1",
			"mealType":            "breakfast",
			"shoppingListItemIds": []string{s2.UID, "missing"},
		}},
	})
	require.Equal(t, 1, applied)

	got, err := svc.Meals.GetByUID(ctx, meal.UID)
	require.NoError(t, err)
	require.Len(t, got.ShoppingListItems, 1)
	require.Equal(t, s2.UID, got.ShoppingListItems[0].UID)
}

func TestApplyLastOneWinsOnRepeatedUID(t *testing.T) {
	p, svc := setupPipeline(t, "proc_last_wins")
	ctx := context.Background()

	applied := p.Apply(ctx, map[string][]dto.DTO{
		"ShoppingListItem": {
			{
				dto.KeyEntityType: "ShoppingListItem",
				dto.KeyUID:        "s1",
				dto.KeyOwnerID:    "u1",
				"name":            "Eggs",
				"quantity":        6.0,
			},
			{
				dto.KeyEntityType: "ShoppingListItem",
				dto.KeyUID:        "s1",
				dto.KeyOwnerID:    "u1",
				"name":            "Eggs",
				"quantity":        12.0,
			},
		},
	})
	require.Equal(t, 2, applied)

	got, err := svc.ShoppingItems.GetByUID(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 12.0, got.Quantity)
}

func TestDirtyEntitiesGroupsByKind(t *testing.T) {
	_, svc := setupPipeline(t, "proc_dirty_groups")
	ctx := context.Background()

	item := models.NewTodoItem("Buy milk", "2%", "u1")
	require.NoError(t, svc.Todos.CreateOrUpdate(ctx, item))
	rec := models.NewRecipe("Pancakes", "u1")
	require.NoError(t, svc.Recipes.CreateOrUpdate(ctx, rec))

	groups, err := svc.DirtyEntities(ctx)
	require.NoError(t, err)

	byType := map[models.EntityType]int{}
	for _, g := range groups {
		byType[g.Type] = len(g.Entities)
	}
	require.Equal(t, 1, byType[models.EntityTypeTodoItem])
	require.Equal(t, 1, byType[models.EntityTypeRecipe])
	require.Equal(t, 0, byType[models.EntityTypeMeal])
}
