package models

import "github.com/google/uuid"

// ShoppingListItem is one line of the shopping list, optionally scheduled
// through a todo item and linked to the meals that need it.
type ShoppingListItem struct {
	Syncable

	Name     string
	Quantity float64
	Unit     string

	TodoItem *TodoItem
	Meals    []*Meal
}

func NewShoppingListItem(name string, quantity float64, unit, ownerID string) *ShoppingListItem {
	s := &ShoppingListItem{Name: name, Quantity: quantity, Unit: unit}
	s.UID = uuid.NewString()
	s.OwnerID = ownerID
	s.Touch(ownerID)
	return s
}

func (s *ShoppingListItem) Type() EntityType { return EntityTypeShoppingListItem }

func (s *ShoppingListItem) SetName(name, by string) {
	s.Name = name
	s.Touch(by)
}

func (s *ShoppingListItem) SetQuantity(q float64, by string) {
	s.Quantity = q
	s.Touch(by)
}

func (s *ShoppingListItem) SetUnit(unit, by string) {
	s.Unit = unit
	s.Touch(by)
}

func (s *ShoppingListItem) SetTodoItem(t *TodoItem, by string) {
	s.TodoItem = t
	s.Touch(by)
}

func (s *ShoppingListItem) AddMeal(m *Meal, by string) {
	for _, existing := range s.Meals {
		if existing.UID == m.UID {
			return
		}
	}
	s.Meals = append(s.Meals, m)
	s.Touch(by)
}

func (s *ShoppingListItem) RemoveMeal(uid, by string) {
	for i, m := range s.Meals {
		if m.UID == uid {
			s.Meals = append(s.Meals[:i], s.Meals[i+1:]...)
			s.Touch(by)
			return
		}
	}
}

func (s *ShoppingListItem) MealIDs() []string {
	ids := make([]string, 0, len(s.Meals))
	for _, m := range s.Meals {
		ids = append(ids, m.UID)
	}
	return ids
}
