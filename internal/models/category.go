package models

import "github.com/google/uuid"

// TodoItemCategory groups todo items by name. Categories are name-keyed with
// fetch-or-create semantics and are never duplicated by name.
type TodoItemCategory struct {
	Syncable

	Name string
}

func NewTodoItemCategory(name, ownerID string) *TodoItemCategory {
	c := &TodoItemCategory{Name: name}
	c.UID = uuid.NewString()
	c.OwnerID = ownerID
	c.Touch(ownerID)
	return c
}

func (c *TodoItemCategory) Type() EntityType { return EntityTypeTodoItemCategory }
