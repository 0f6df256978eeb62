package dto

import (
	"testing"
	"time"

	"github.com/planloop/planloop/internal/models"
	"github.com/stretchr/testify/require"
)

func TestEncodeTodoItem_ScalarsAndRelationships(t *testing.T) {
	item := models.NewTodoItem("Buy milk", "2%", "u1")
	item.UID = "t1"

	meal := &models.Meal{}
	meal.UID = "m1"
	item.Meal = meal
	item.Category = &models.TodoItemCategory{Name: "Groceries"}

	due := time.Date(2026, 3, 1, 8, 30, 0, 123456789, time.UTC)
	item.DueAt = &due

	d, err := Encode(item)
	require.NoError(t, err)

	require.Equal(t, "TodoItem", d[KeyEntityType])
	require.Equal(t, "t1", d[KeyUID])
	require.Equal(t, "u1", d[KeyOwnerID])
	require.Equal(t, "Buy milk", d["title"])
	require.Equal(t, "2%", d["details"])
	require.Equal(t, false, d["completed"])
	require.Equal(t, "m1", d["mealId"])
	require.Equal(t, "Groceries", d["categoryName"])

	// no shopping list item linked: the key must be absent, not nil
	require.False(t, d.Has("shoppingListItemId"))

	// server assigns lastModified; the codec must not
	require.False(t, d.Has("lastModified"))

	got, ok := d.Time("dueAt")
	require.True(t, ok)
	require.Equal(t, due.UnixNano(), got.UnixNano())
}

func TestEncodeUser_FriendAndInviteIDs(t *testing.T) {
	u := models.NewUser("Alice", "alice@example.com")
	u.UID = "u1"
	u.OwnerID = "u1"

	f := models.NewPlaceholderUser("f1")
	u.Friends = []*models.User{f}
	inv := models.NewInvite("u1", "f2")
	u.SentInvites = []models.Invite{inv}

	d, err := Encode(u)
	require.NoError(t, err)

	require.Equal(t, "User", d[KeyEntityType])
	ids, ok := d.StrSlice("friendIds")
	require.True(t, ok)
	require.Equal(t, []string{"f1"}, ids)

	sent, ok := d.StrSlice("sentInviteIds")
	require.True(t, ok)
	require.Equal(t, []string{inv.ID()}, sent)

	require.False(t, d.Has("receivedInviteIds"))
}

func TestEncodeRecipe_OrderedIngredientsAndSteps(t *testing.T) {
	r := models.NewRecipe("Pancakes", "u1")
	r.Ingredients = []models.Ingredient{
		{Position: 0, Name: "Flour", Quantity: 200, Unit: "g"},
		{Position: 1, Name: "Milk", Quantity: 300, Unit: "ml"},
	}
	r.Steps = []models.RecipeStep{
		{Position: 0, Text: "Mix"},
		{Position: 1, Text: "Fry"},
	}

	d, err := Encode(r)
	require.NoError(t, err)

	ingredients, ok := d.MapSlice("ingredients")
	require.True(t, ok)
	require.Len(t, ingredients, 2)
	require.Equal(t, "Flour", ingredients[0]["name"])

	steps, ok := d.MapSlice("steps")
	require.True(t, ok)
	require.Equal(t, "Fry", steps[1]["text"])

	require.False(t, d.Has("mealIds"))
}

func TestEncodeMealAndShoppingListItem(t *testing.T) {
	meal := models.NewMeal(models.MealTypeDinner, "u1")
	item := models.NewShoppingListItem("Flour", 500, "g", "u1")
	todo := models.NewTodoItem("Cook", "dinner", "u1")

	meal.TodoItem = todo
	meal.ShoppingListItems = []*models.ShoppingListItem{item}
	item.Meals = []*models.Meal{meal}

	md, err := Encode(meal)
	require.NoError(t, err)
	require.Equal(t, "dinner", md["mealType"])
	require.Equal(t, todo.UID, md["todoItemId"])
	require.False(t, md.Has("recipeId"))
	ids, ok := md.StrSlice("shoppingListItemIds")
	require.True(t, ok)
	require.Equal(t, []string{item.UID}, ids)

	sd, err := Encode(item)
	require.NoError(t, err)
	require.Equal(t, "Flour", sd["name"])
	mealIDs, ok := sd.StrSlice("mealIds")
	require.True(t, ok)
	require.Equal(t, []string{meal.UID}, mealIDs)
}

func TestFieldAccessors_DecodedShapes(t *testing.T) {
	d := DTO{
		"title":     "x",
		"completed": true,
		"quantity":  int64(3),
		"friendIds": []any{"a", "b", 7},
		"steps":     []any{map[string]any{"position": float64(0), "text": "Mix"}},
	}

	s, ok := d.Str("title")
	require.True(t, ok)
	require.Equal(t, "x", s)

	_, ok = d.Str("missing")
	require.False(t, ok)

	q, ok := d.Float("quantity")
	require.True(t, ok)
	require.Equal(t, float64(3), q)

	ids, ok := d.StrSlice("friendIds")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, ids)

	steps, ok := d.MapSlice("steps")
	require.True(t, ok)
	pos, ok := DTO(steps[0]).Int("position")
	require.True(t, ok)
	require.Equal(t, 0, pos)
}
