package processors

import (
	"context"
	"errors"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/models"
)

// applyTodoItem upserts one incoming todo item. Creation requires title and
// details; later updates may carry any subset of fields. The category link
// resolves by name through fetch-or-create, so it never misses.
func (p *Pipeline) applyTodoItem(ctx context.Context, uid string, d dto.DTO) error {
	t, err := p.svc.Todos.GetByUID(ctx, uid)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		title, _ := d.Str("title")
		details, _ := d.Str("details")
		if title == "" || details == "" {
			return errSkip{reason: "todo item without title or details"}
		}
		t = &models.TodoItem{}
		t.UID = uid
	case err != nil:
		return err
	}

	if v, ok := d.Str("title"); ok {
		t.Title = v
	}
	if v, ok := d.Str("details"); ok {
		t.Details = v
	}
	if v, ok := d.Bool("completed"); ok {
		t.Completed = v
	}
	if v, ok := d.Str("recurrenceRule"); ok {
		if _, _, err := models.ParseRecurrenceRule(v); err != nil {
			p.svc.Log.Warn(ctx, "ignoring invalid recurrence rule", "uid", uid, "rule", v)
		} else {
			t.RecurrenceRule = v
		}
	}
	if v, ok := d.Time("dueAt"); ok {
		t.DueAt = &v
	}

	applyBase(&t.Syncable, d)

	if d.Has("mealId") {
		id, _ := d.Str("mealId")
		if t.Meal == nil || t.Meal.UID != id {
			m, err := p.svc.Meals.GetByUID(ctx, id)
			switch {
			case err == nil:
				t.Meal = m
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
			// lookup miss: keep the existing link
		}
	} else {
		t.Meal = nil
	}

	if d.Has("shoppingListItemId") {
		id, _ := d.Str("shoppingListItemId")
		if t.ShoppingListItem == nil || t.ShoppingListItem.UID != id {
			si, err := p.svc.ShoppingItems.GetByUID(ctx, id)
			switch {
			case err == nil:
				t.ShoppingListItem = si
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}
	} else {
		t.ShoppingListItem = nil
	}

	if d.Has("categoryName") {
		name, _ := d.Str("categoryName")
		if name == "" {
			t.Category = nil
		} else if t.Category == nil || t.Category.Name != name {
			c, err := p.svc.Categories.GetOrCreateByName(ctx, name, t.OwnerID)
			if err != nil {
				return err
			}
			t.Category = c
		}
	} else {
		t.Category = nil
	}

	t.MarkSynced()
	return p.svc.Todos.CreateOrUpdate(ctx, t)
}
