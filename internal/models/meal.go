package models

import "github.com/google/uuid"

// MealType classifies when a meal is eaten.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// Meal is a planned serving of a recipe, scheduled through a todo item and
// feeding into shopping list items.
type Meal struct {
	Syncable

	ScaleFactor float64
	MealType    MealType

	TodoItem          *TodoItem
	Recipe            *Recipe
	ShoppingListItems []*ShoppingListItem
}

func NewMeal(mealType MealType, ownerID string) *Meal {
	m := &Meal{ScaleFactor: 1, MealType: mealType}
	m.UID = uuid.NewString()
	m.OwnerID = ownerID
	m.Touch(ownerID)
	return m
}

func (m *Meal) Type() EntityType { return EntityTypeMeal }

func (m *Meal) SetScaleFactor(f float64, by string) {
	m.ScaleFactor = f
	m.Touch(by)
}

func (m *Meal) SetMealType(t MealType, by string) {
	m.MealType = t
	m.Touch(by)
}

func (m *Meal) SetTodoItem(t *TodoItem, by string) {
	m.TodoItem = t
	m.Touch(by)
}

func (m *Meal) SetRecipe(r *Recipe, by string) {
	m.Recipe = r
	m.Touch(by)
}

func (m *Meal) AddShoppingListItem(s *ShoppingListItem, by string) {
	for _, existing := range m.ShoppingListItems {
		if existing.UID == s.UID {
			return
		}
	}
	m.ShoppingListItems = append(m.ShoppingListItems, s)
	m.Touch(by)
}

func (m *Meal) RemoveShoppingListItem(uid, by string) {
	for i, s := range m.ShoppingListItems {
		if s.UID == uid {
			m.ShoppingListItems = append(m.ShoppingListItems[:i], m.ShoppingListItems[i+1:]...)
			m.Touch(by)
			return
		}
	}
}

func (m *Meal) ShoppingListItemIDs() []string {
	ids := make([]string, 0, len(m.ShoppingListItems))
	for _, s := range m.ShoppingListItems {
		ids = append(ids, s.UID)
	}
	return ids
}
