package processors

import (
	"context"
	"errors"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/models"
)

// applyShoppingListItem upserts one incoming shopping list item. Creation
// requires a name.
func (p *Pipeline) applyShoppingListItem(ctx context.Context, uid string, d dto.DTO) error {
	si, err := p.svc.ShoppingItems.GetByUID(ctx, uid)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		if name, _ := d.Str("name"); name == "" {
			return errSkip{reason: "shopping list item without name"}
		}
		si = &models.ShoppingListItem{}
		si.UID = uid
	case err != nil:
		return err
	}

	if v, ok := d.Str("name"); ok {
		si.Name = v
	}
	if v, ok := d.Float("quantity"); ok {
		si.Quantity = v
	}
	if v, ok := d.Str("unit"); ok {
		si.Unit = v
	}

	applyBase(&si.Syncable, d)

	if d.Has("todoItemId") {
		id, _ := d.Str("todoItemId")
		if si.TodoItem == nil || si.TodoItem.UID != id {
			t, err := p.svc.Todos.GetByUID(ctx, id)
			switch {
			case err == nil:
				si.TodoItem = t
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}
	} else {
		si.TodoItem = nil
	}

	if !d.Has("mealIds") {
		si.Meals = nil
	} else {
		ids, _ := d.StrSlice("mealIds")
		si.Meals = p.reconcileMealLinks(ctx, si.Meals, ids)
	}

	si.MarkSynced()
	return p.svc.ShoppingItems.CreateOrUpdate(ctx, si)
}
