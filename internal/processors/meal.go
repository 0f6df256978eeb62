package processors

import (
	"context"
	"errors"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/models"
)

// applyMeal upserts one incoming meal. The scale factor defaults to 1 when
// the wire carries none.
func (p *Pipeline) applyMeal(ctx context.Context, uid string, d dto.DTO) error {
	m, err := p.svc.Meals.GetByUID(ctx, uid)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		m = &models.Meal{ScaleFactor: 1}
		m.UID = uid
	case err != nil:
		return err
	}

	if v, ok := d.Float("scaleFactor"); ok && v > 0 {
		m.ScaleFactor = v
	}
	if v, ok := d.Str("mealType"); ok && v != "" {
		m.MealType = models.MealType(v)
	}

	applyBase(&m.Syncable, d)

	if d.Has("todoItemId") {
		id, _ := d.Str("todoItemId")
		if m.TodoItem == nil || m.TodoItem.UID != id {
			t, err := p.svc.Todos.GetByUID(ctx, id)
			switch {
			case err == nil:
				m.TodoItem = t
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}
	} else {
		m.TodoItem = nil
	}

	if d.Has("recipeId") {
		id, _ := d.Str("recipeId")
		if m.Recipe == nil || m.Recipe.UID != id {
			r, err := p.svc.Recipes.GetByUID(ctx, id)
			switch {
			case err == nil:
				m.Recipe = r
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}
	} else {
		m.Recipe = nil
	}

	if !d.Has("shoppingListItemIds") {
		m.ShoppingListItems = nil
	} else {
		ids, _ := d.StrSlice("shoppingListItemIds")
		m.ShoppingListItems = p.reconcileShoppingItemLinks(ctx, m.ShoppingListItems, ids)
	}

	m.MarkSynced()
	return p.svc.Meals.CreateOrUpdate(ctx, m)
}

func (p *Pipeline) reconcileShoppingItemLinks(ctx context.Context, current []*models.ShoppingListItem, ids []string) []*models.ShoppingListItem {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			want[id] = true
		}
	}

	next := make([]*models.ShoppingListItem, 0, len(ids))
	have := make(map[string]bool, len(current))
	for _, si := range current {
		if want[si.UID] {
			next = append(next, si)
			have[si.UID] = true
		}
	}

	for _, id := range ids {
		if !want[id] || have[id] {
			continue
		}
		have[id] = true

		si, err := p.svc.ShoppingItems.GetByUID(ctx, id)
		if err != nil {
			p.svc.Log.Debug(ctx, "shopping list item link not resolvable yet", "uid", id)
			continue
		}
		next = append(next, si)
	}

	return next
}
