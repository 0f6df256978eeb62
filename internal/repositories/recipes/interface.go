package recipes

import (
	"context"

	"github.com/planloop/planloop/internal/models"
)

// Repository describes CRUD and lookup operations for Recipe objects in the
// local store, including their ordered ingredients and steps and their meal
// links (hydrated as uid stubs).
type Repository interface {
	CreateOrUpdate(ctx context.Context, rec *models.Recipe) error
	GetByUID(ctx context.Context, uid string) (*models.Recipe, error)
	GetDirty(ctx context.Context) ([]*models.Recipe, error)
}
