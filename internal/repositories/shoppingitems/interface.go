package shoppingitems

import (
	"context"

	"github.com/planloop/planloop/internal/models"
)

// Repository describes CRUD and lookup operations for ShoppingListItem objects
// in the local store. Related entities are hydrated as uid stubs. The
// meal/item link table is shared with the meals repository; each side replaces
// only its own rows on save.
type Repository interface {
	CreateOrUpdate(ctx context.Context, s *models.ShoppingListItem) error
	GetByUID(ctx context.Context, uid string) (*models.ShoppingListItem, error)
	GetDirty(ctx context.Context) ([]*models.ShoppingListItem, error)
}
