package meals

import (
	"context"

	"github.com/planloop/planloop/internal/models"
)

// Repository describes CRUD and lookup operations for Meal objects in the
// local store. Related entities are hydrated as uid stubs.
type Repository interface {
	CreateOrUpdate(ctx context.Context, m *models.Meal) error
	GetByUID(ctx context.Context, uid string) (*models.Meal, error)
	GetDirty(ctx context.Context) ([]*models.Meal, error)
}
