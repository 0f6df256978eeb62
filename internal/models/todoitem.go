package models

import (
	"time"

	"github.com/google/uuid"
)

// TodoItem is a schedulable task. It may be linked to the meal or shopping
// list item it schedules, and to a category.
type TodoItem struct {
	Syncable

	Title          string
	Details        string
	Completed      bool
	RecurrenceRule string
	DueAt          *time.Time

	Meal             *Meal
	ShoppingListItem *ShoppingListItem
	Category         *TodoItemCategory
}

func NewTodoItem(title, details, ownerID string) *TodoItem {
	t := &TodoItem{Title: title, Details: details}
	t.UID = uuid.NewString()
	t.OwnerID = ownerID
	t.Touch(ownerID)
	return t
}

func (t *TodoItem) Type() EntityType { return EntityTypeTodoItem }

func (t *TodoItem) SetTitle(title, by string) {
	t.Title = title
	t.Touch(by)
}

func (t *TodoItem) SetDetails(details, by string) {
	t.Details = details
	t.Touch(by)
}

func (t *TodoItem) SetCompleted(completed bool, by string) {
	t.Completed = completed
	t.Touch(by)
}

// SetRecurrenceRule accepts the string form; validation is the caller's
// responsibility via ParseRecurrenceRule.
func (t *TodoItem) SetRecurrenceRule(rule, by string) {
	t.RecurrenceRule = rule
	t.Touch(by)
}

func (t *TodoItem) SetDueAt(due *time.Time, by string) {
	t.DueAt = due
	t.Touch(by)
}

func (t *TodoItem) SetMeal(m *Meal, by string) {
	t.Meal = m
	t.Touch(by)
}

func (t *TodoItem) SetShoppingListItem(s *ShoppingListItem, by string) {
	t.ShoppingListItem = s
	t.Touch(by)
}

func (t *TodoItem) SetCategory(c *TodoItemCategory, by string) {
	t.Category = c
	t.Touch(by)
}
