// Package processors applies incoming remote DTO batches to the local object
// graph. One routine per entity kind: each upserts by uid, applies scalar
// fields non-destructively, rewires relationship references by local lookup,
// and marks the entity clean. A malformed DTO is logged and skipped, never
// aborting the rest of its batch.
package processors

import (
	"context"
	"errors"
	"fmt"

	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/logging"
	"github.com/planloop/planloop/internal/models"
	"github.com/planloop/planloop/internal/repositories/categories"
	"github.com/planloop/planloop/internal/repositories/meals"
	"github.com/planloop/planloop/internal/repositories/recipes"
	"github.com/planloop/planloop/internal/repositories/shoppingitems"
	"github.com/planloop/planloop/internal/repositories/todos"
	"github.com/planloop/planloop/internal/repositories/users"
)

// Services bundles the local lookup services the processors resolve
// relationships against.
type Services struct {
	Users         users.Repository
	Todos         todos.Repository
	Recipes       recipes.Repository
	Meals         meals.Repository
	ShoppingItems shoppingitems.Repository
	Categories    categories.Repository
	Log           logging.Logger
}

// Save persists any entity kind through its repository.
func (s *Services) Save(ctx context.Context, e models.Entity) error {
	switch v := e.(type) {
	case *models.User:
		return s.Users.CreateOrUpdate(ctx, v)
	case *models.TodoItem:
		return s.Todos.CreateOrUpdate(ctx, v)
	case *models.Recipe:
		return s.Recipes.CreateOrUpdate(ctx, v)
	case *models.Meal:
		return s.Meals.CreateOrUpdate(ctx, v)
	case *models.ShoppingListItem:
		return s.ShoppingItems.CreateOrUpdate(ctx, v)
	case *models.TodoItemCategory:
		return s.Categories.CreateOrUpdate(ctx, v)
	default:
		return fmt.Errorf("unsupported entity type %T", e)
	}
}

// DirtyGroup is one entity kind's locally modified entities.
type DirtyGroup struct {
	Type     models.EntityType
	Entities []models.Entity
}

// DirtyEntities returns every locally modified entity grouped by kind, in a
// stable kind order.
func (s *Services) DirtyEntities(ctx context.Context) ([]DirtyGroup, error) {
	var groups []DirtyGroup

	us, err := s.Users.GetDirty(ctx)
	if err != nil {
		return nil, err
	}
	g := DirtyGroup{Type: models.EntityTypeUser}
	for _, u := range us {
		g.Entities = append(g.Entities, u)
	}
	groups = append(groups, g)

	cs, err := s.Categories.GetDirty(ctx)
	if err != nil {
		return nil, err
	}
	g = DirtyGroup{Type: models.EntityTypeTodoItemCategory}
	for _, c := range cs {
		g.Entities = append(g.Entities, c)
	}
	groups = append(groups, g)

	sis, err := s.ShoppingItems.GetDirty(ctx)
	if err != nil {
		return nil, err
	}
	g = DirtyGroup{Type: models.EntityTypeShoppingListItem}
	for _, si := range sis {
		g.Entities = append(g.Entities, si)
	}
	groups = append(groups, g)

	rs, err := s.Recipes.GetDirty(ctx)
	if err != nil {
		return nil, err
	}
	g = DirtyGroup{Type: models.EntityTypeRecipe}
	for _, r := range rs {
		g.Entities = append(g.Entities, r)
	}
	groups = append(groups, g)

	ms, err := s.Meals.GetDirty(ctx)
	if err != nil {
		return nil, err
	}
	g = DirtyGroup{Type: models.EntityTypeMeal}
	for _, m := range ms {
		g.Entities = append(g.Entities, m)
	}
	groups = append(groups, g)

	ts, err := s.Todos.GetDirty(ctx)
	if err != nil {
		return nil, err
	}
	g = DirtyGroup{Type: models.EntityTypeTodoItem}
	for _, t := range ts {
		g.Entities = append(g.Entities, t)
	}
	groups = append(groups, g)

	return groups, nil
}

// Pipeline dispatches incoming DTO batches to the kind-specific processors.
type Pipeline struct {
	svc *Services
}

func NewPipeline(svc *Services) *Pipeline {
	return &Pipeline{svc: svc}
}

// applyOrder puts relationship targets before the kinds that reference them,
// so that references within one batch resolve where possible. Misses are
// tolerated either way.
var applyOrder = []models.EntityType{
	models.EntityTypeUser,
	models.EntityTypeTodoItemCategory,
	models.EntityTypeShoppingListItem,
	models.EntityTypeRecipe,
	models.EntityTypeMeal,
	models.EntityTypeTodoItem,
}

// Apply upserts every DTO in the batch into the local store and returns how
// many were applied. Within a kind, DTOs apply in array order, last one wins
// on a repeated uid. Skips and per-DTO failures are logged, never raised.
func (p *Pipeline) Apply(ctx context.Context, updates map[string][]dto.DTO) int {
	applied := 0

	for _, typ := range applyOrder {
		for _, d := range updates[string(typ)] {
			uid, _ := d.Str(dto.KeyUID)
			if uid == "" {
				p.svc.Log.Warn(ctx, "skipping entity without uid", "entityType", typ)
				continue
			}

			if err := p.applyOne(ctx, typ, uid, d); err != nil {
				var skip errSkip
				if errors.As(err, &skip) {
					p.svc.Log.Warn(ctx, "skipping invalid entity", "entityType", typ, "uid", uid, "reason", skip.reason)
				} else {
					p.svc.Log.Error(ctx, "failed to apply entity", "entityType", typ, "uid", uid, "error", err)
				}
				continue
			}
			applied++
		}
	}

	for typ := range updates {
		if !knownType(typ) {
			p.svc.Log.Warn(ctx, "ignoring unknown entity type", "entityType", typ, "count", len(updates[typ]))
		}
	}

	return applied
}

func knownType(typ string) bool {
	for _, t := range applyOrder {
		if string(t) == typ {
			return true
		}
	}
	return false
}

func (p *Pipeline) applyOne(ctx context.Context, typ models.EntityType, uid string, d dto.DTO) error {
	switch typ {
	case models.EntityTypeUser:
		return p.applyUser(ctx, uid, d)
	case models.EntityTypeTodoItemCategory:
		return p.applyCategory(ctx, uid, d)
	case models.EntityTypeShoppingListItem:
		return p.applyShoppingListItem(ctx, uid, d)
	case models.EntityTypeRecipe:
		return p.applyRecipe(ctx, uid, d)
	case models.EntityTypeMeal:
		return p.applyMeal(ctx, uid, d)
	case models.EntityTypeTodoItem:
		return p.applyTodoItem(ctx, uid, d)
	default:
		return fmt.Errorf("no processor for entity type %q", typ)
	}
}

// errSkip marks a DTO that fails required-field validation on create. It is a
// per-item skip, not a failure.
type errSkip struct{ reason string }

func (e errSkip) Error() string { return "skipped: " + e.reason }

// applyBase copies the shared sync attributes from the wire. lastModified is
// present on pulled records (server-assigned) and absent on locally built
// DTOs.
func applyBase(b *models.Syncable, d dto.DTO) {
	if v, ok := d.Str(dto.KeyOwnerID); ok && v != "" {
		b.OwnerID = v
	}
	if v, ok := d.Str("lastModifiedBy"); ok {
		b.LastModifiedBy = v
	}
	if v, ok := d.Bool("isShared"); ok {
		b.IsShared = v
	}
	if t, ok := d.Time("lastModified"); ok {
		b.LastModified = t
	}
}
