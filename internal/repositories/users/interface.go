package users

import (
	"context"

	"github.com/planloop/planloop/internal/models"
)

// Repository describes CRUD and lookup operations for User objects, backed by
// the local store. Related users are hydrated as uid stubs; callers needing a
// fully loaded friend fetch it by uid.
type Repository interface {
	// CreateOrUpdate inserts a new user or updates an existing one by uid,
	// replacing friend links and invites to match the in-memory state.
	CreateOrUpdate(ctx context.Context, u *models.User) error

	// GetByUID returns a user by identifier, or common.ErrorNotFound.
	GetByUID(ctx context.Context, uid string) (*models.User, error)

	// GetDirty returns users with local changes not yet synchronized.
	GetDirty(ctx context.Context) ([]*models.User, error)
}
