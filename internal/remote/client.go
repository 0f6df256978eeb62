// Package remote is the sole component that talks to the remote document
// store. It batches writes under the backend's operation cap, polls the owned
// and shared partitions by last-modified watermark, and maintains live
// snapshot subscriptions that deliver incremental change sets.
package remote

import (
	"context"

	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/models"
)

// UpdateBatch groups raw entity DTOs by entity type.
type UpdateBatch map[string][]dto.DTO

// Result summarizes one SyncEntities call. Partial success is a possible and
// accepted outcome: committed batches stay committed even when a later batch
// fails, and Result reports them alongside the error.
type Result struct {
	// Synced counts DTOs in batches whose commit succeeded.
	Synced int

	// Skipped counts DTOs dropped before batching for missing required keys.
	Skipped int

	// CommittedBatches counts batches that were durably committed.
	CommittedBatches int

	// SyncedUIDs lists the uids of every DTO in a committed batch. Skipped
	// DTOs and DTOs in uncommitted batches never appear here; callers clear
	// local dirty state only for these uids.
	SyncedUIDs []string
}

// CancelFunc tears down a live subscription, including every
// per-collaborator watch it established. No update callback fires after it
// returns.
type CancelFunc func()

// Client is the remote document store boundary the sync engine depends on.
type Client interface {
	// SyncEntities writes the DTOs in ordered batches not exceeding the
	// configured size limit. Batches commit strictly sequentially; the first
	// failure aborts all subsequent batches and surfaces the error.
	SyncEntities(ctx context.Context, dtos []dto.DTO) (Result, error)

	// FetchUpdatedEntities returns entities owned by the user or shared by
	// collaborators that changed since the user's persisted lastSync mark,
	// grouped by entity type. On success the mark advances monotonically to
	// the newest observed lastModified.
	FetchUpdatedEntities(ctx context.Context, userID string) (UpdateBatch, error)

	// SubscribeToEntityUpdates establishes live watches for the user's owned
	// and shared partitions and invokes onUpdate with each incremental change
	// set. The collaborator watch list follows the friendIds field of the
	// user's own record.
	SubscribeToEntityUpdates(ctx context.Context, userID string, onUpdate func(UpdateBatch)) (CancelFunc, error)
}

// Collaborators lists the user ids whose shared entities the given user can
// see. Backed by the local users repository.
type Collaborators interface {
	CollaboratorIDs(ctx context.Context, userID string) ([]string, error)
}

// collections maps entity types to their remote collection names.
var collections = map[string]string{
	string(models.EntityTypeUser):             "users",
	string(models.EntityTypeTodoItem):         "todoItems",
	string(models.EntityTypeRecipe):           "recipes",
	string(models.EntityTypeMeal):             "meals",
	string(models.EntityTypeShoppingListItem): "shoppingListItems",
	string(models.EntityTypeTodoItemCategory): "todoItemCategories",
}
