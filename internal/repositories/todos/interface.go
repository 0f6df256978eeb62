package todos

import (
	"context"

	"github.com/planloop/planloop/internal/models"
)

// Repository describes CRUD and lookup operations for TodoItem objects in the
// local store. Related entities are hydrated as uid stubs (categories also
// carry their name, since category links resolve by name).
type Repository interface {
	CreateOrUpdate(ctx context.Context, t *models.TodoItem) error
	GetByUID(ctx context.Context, uid string) (*models.TodoItem, error)
	GetDirty(ctx context.Context) ([]*models.TodoItem, error)
}
