package dto

import (
	"fmt"

	"github.com/planloop/planloop/internal/models"
)

// Encode serializes an entity into its wire map. Every scalar field is
// emitted under a stable key; relationship keys are emitted only while the
// relationship is populated, so absence encodes "not linked". lastModified is
// deliberately not emitted: the remote store assigns it server-side.
func Encode(e models.Entity) (DTO, error) {
	switch v := e.(type) {
	case *models.User:
		return encodeUser(v), nil
	case *models.TodoItem:
		return encodeTodoItem(v), nil
	case *models.Recipe:
		return encodeRecipe(v), nil
	case *models.Meal:
		return encodeMeal(v), nil
	case *models.ShoppingListItem:
		return encodeShoppingListItem(v), nil
	case *models.TodoItemCategory:
		return encodeCategory(v), nil
	default:
		return nil, fmt.Errorf("unsupported entity type %T", e)
	}
}

func encodeBase(e models.Entity) DTO {
	b := e.Base()
	return DTO{
		KeyEntityType:    string(e.Type()),
		KeyUID:           b.UID,
		KeyOwnerID:       b.OwnerID,
		"lastModifiedBy": b.LastModifiedBy,
		"isShared":       b.IsShared,
	}
}

func encodeUser(u *models.User) DTO {
	d := encodeBase(u)
	d["name"] = u.Name
	d["email"] = u.Email
	if len(u.Friends) > 0 {
		d["friendIds"] = u.FriendIDs()
	}
	if len(u.SentInvites) > 0 {
		d["sentInviteIds"] = inviteIDs(u.SentInvites)
	}
	if len(u.ReceivedInvites) > 0 {
		d["receivedInviteIds"] = inviteIDs(u.ReceivedInvites)
	}
	return d
}

func inviteIDs(invites []models.Invite) []string {
	ids := make([]string, 0, len(invites))
	for _, inv := range invites {
		ids = append(ids, inv.ID())
	}
	return ids
}

func encodeTodoItem(t *models.TodoItem) DTO {
	d := encodeBase(t)
	d["title"] = t.Title
	d["details"] = t.Details
	d["completed"] = t.Completed
	d["recurrenceRule"] = t.RecurrenceRule
	if t.DueAt != nil {
		d["dueAt"] = t.DueAt.UTC()
	}
	if t.Meal != nil {
		d["mealId"] = t.Meal.UID
	}
	if t.ShoppingListItem != nil {
		d["shoppingListItemId"] = t.ShoppingListItem.UID
	}
	if t.Category != nil {
		d["categoryName"] = t.Category.Name
	}
	return d
}

func encodeRecipe(r *models.Recipe) DTO {
	d := encodeBase(r)
	d["name"] = r.Name
	d["photoKey"] = r.PhotoKey

	ingredients := make([]map[string]any, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ingredients = append(ingredients, map[string]any{
			"position": ing.Position,
			"name":     ing.Name,
			"quantity": ing.Quantity,
			"unit":     ing.Unit,
		})
	}
	d["ingredients"] = ingredients

	steps := make([]map[string]any, 0, len(r.Steps))
	for _, st := range r.Steps {
		steps = append(steps, map[string]any{
			"position": st.Position,
			"text":     st.Text,
		})
	}
	d["steps"] = steps

	if len(r.Meals) > 0 {
		d["mealIds"] = r.MealIDs()
	}
	return d
}

func encodeMeal(m *models.Meal) DTO {
	d := encodeBase(m)
	d["scaleFactor"] = m.ScaleFactor
	d["mealType"] = string(m.MealType)
	if m.TodoItem != nil {
		d["todoItemId"] = m.TodoItem.UID
	}
	if m.Recipe != nil {
		d["recipeId"] = m.Recipe.UID
	}
	if len(m.ShoppingListItems) > 0 {
		d["shoppingListItemIds"] = m.ShoppingListItemIDs()
	}
	return d
}

func encodeShoppingListItem(s *models.ShoppingListItem) DTO {
	d := encodeBase(s)
	d["name"] = s.Name
	d["quantity"] = s.Quantity
	d["unit"] = s.Unit
	if s.TodoItem != nil {
		d["todoItemId"] = s.TodoItem.UID
	}
	if len(s.Meals) > 0 {
		d["mealIds"] = s.MealIDs()
	}
	return d
}

func encodeCategory(c *models.TodoItemCategory) DTO {
	d := encodeBase(c)
	d["name"] = c.Name
	return d
}
