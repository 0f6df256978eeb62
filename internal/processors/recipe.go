package processors

import (
	"context"
	"errors"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/models"
)

// applyRecipe upserts one incoming recipe. Ingredients and steps are value
// collections carried inline, replaced wholesale when present. Meal links
// reconcile by set difference, tolerating lookup misses silently.
func (p *Pipeline) applyRecipe(ctx context.Context, uid string, d dto.DTO) error {
	r, err := p.svc.Recipes.GetByUID(ctx, uid)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		if name, _ := d.Str("name"); name == "" {
			return errSkip{reason: "recipe without name"}
		}
		r = &models.Recipe{}
		r.UID = uid
	case err != nil:
		return err
	}

	if v, ok := d.Str("name"); ok {
		r.Name = v
	}
	if v, ok := d.Str("photoKey"); ok {
		r.PhotoKey = v
	}

	if rows, ok := d.MapSlice("ingredients"); ok {
		r.Ingredients = decodeIngredients(rows)
	}
	if rows, ok := d.MapSlice("steps"); ok {
		r.Steps = decodeSteps(rows)
	}

	if !d.Has("mealIds") {
		r.Meals = nil
	} else {
		ids, _ := d.StrSlice("mealIds")
		r.Meals = p.reconcileMealLinks(ctx, r.Meals, ids)
	}

	applyBase(&r.Syncable, d)
	r.MarkSynced()

	return p.svc.Recipes.CreateOrUpdate(ctx, r)
}

// reconcileMealLinks keeps currently linked meals still named by ids, fetches
// newly named ones, and drops the rest. Misses are skipped without error.
func (p *Pipeline) reconcileMealLinks(ctx context.Context, current []*models.Meal, ids []string) []*models.Meal {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			want[id] = true
		}
	}

	next := make([]*models.Meal, 0, len(ids))
	have := make(map[string]bool, len(current))
	for _, m := range current {
		if want[m.UID] {
			next = append(next, m)
			have[m.UID] = true
		}
	}

	for _, id := range ids {
		if !want[id] || have[id] {
			continue
		}
		have[id] = true

		m, err := p.svc.Meals.GetByUID(ctx, id)
		if err != nil {
			p.svc.Log.Debug(ctx, "meal link not resolvable yet", "uid", id)
			continue
		}
		next = append(next, m)
	}

	return next
}

func decodeIngredients(rows []map[string]any) []models.Ingredient {
	out := make([]models.Ingredient, 0, len(rows))
	for i, row := range rows {
		m := dto.DTO(row)
		ing := models.Ingredient{Position: i}
		if v, ok := m.Int("position"); ok {
			ing.Position = v
		}
		ing.Name, _ = m.Str("name")
		ing.Quantity, _ = m.Float("quantity")
		ing.Unit, _ = m.Str("unit")
		out = append(out, ing)
	}
	return out
}

func decodeSteps(rows []map[string]any) []models.RecipeStep {
	out := make([]models.RecipeStep, 0, len(rows))
	for i, row := range rows {
		m := dto.DTO(row)
		st := models.RecipeStep{Position: i}
		if v, ok := m.Int("position"); ok {
			st.Position = v
		}
		st.Text, _ = m.Str("text")
		out = append(out, st)
	}
	return out
}
