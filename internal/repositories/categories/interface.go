package categories

import (
	"context"

	"github.com/planloop/planloop/internal/models"
)

// Repository describes operations for TodoItemCategory objects. Categories
// are name-keyed: GetOrCreateByName never duplicates a name and never fails
// with a lookup miss.
type Repository interface {
	CreateOrUpdate(ctx context.Context, c *models.TodoItemCategory) error
	GetByUID(ctx context.Context, uid string) (*models.TodoItemCategory, error)

	// GetOrCreateByName returns the category with the given name, creating it
	// (dirty, owned by ownerID) when absent.
	GetOrCreateByName(ctx context.Context, name, ownerID string) (*models.TodoItemCategory, error)

	GetDirty(ctx context.Context) ([]*models.TodoItemCategory, error)
}
