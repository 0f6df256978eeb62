// Package models defines the syncable entity kinds of the planloop object
// graph and their dirty-tracking behavior.
package models

import "time"

// EntityType classifies an entity kind on the wire.
type EntityType string

const (
	EntityTypeUser             EntityType = "User"
	EntityTypeTodoItem         EntityType = "TodoItem"
	EntityTypeRecipe           EntityType = "Recipe"
	EntityTypeMeal             EntityType = "Meal"
	EntityTypeShoppingListItem EntityType = "ShoppingListItem"
	EntityTypeTodoItemCategory EntityType = "TodoItemCategory"
)

// Syncable carries the attributes every synchronizable entity shares. It is
// embedded in every concrete kind.
//
// Invariant: Dirty is true from creation or any mutating call until a sync
// round confirms the current state was durably persisted remotely.
type Syncable struct {
	// UID is the globally unique identifier, assigned at first creation and
	// never reassigned.
	UID string

	// OwnerID references the user who owns this record. Empty only during
	// transient reconciliation windows.
	OwnerID string

	// LastModifiedBy references the user whose edit produced the current
	// state; set on every dirtying mutation.
	LastModifiedBy string

	// LastModified is the server-assigned modification timestamp, updated
	// when a remote copy of the record is applied locally.
	LastModified time.Time

	// Dirty marks local state not yet confirmed persisted remotely.
	Dirty bool

	// IsShared gates whether the shared-partition query surfaces this record
	// to collaborators. Computed by the sharing-preferences process.
	IsShared bool
}

// Base returns the embedded sync attributes; it lets code handle any entity
// kind uniformly.
func (s *Syncable) Base() *Syncable { return s }

// Touch marks the entity dirty and records who made the edit. Every mutating
// setter calls it.
func (s *Syncable) Touch(by string) {
	s.Dirty = true
	s.LastModifiedBy = by
}

// MarkSynced clears the dirty flag after a successful sync round.
func (s *Syncable) MarkSynced() { s.Dirty = false }

// Entity is implemented by every concrete entity kind.
type Entity interface {
	Base() *Syncable
	Type() EntityType
}
