package models

import "github.com/google/uuid"

// Ingredient is one ordered line of a recipe.
type Ingredient struct {
	Position int
	Name     string
	Quantity float64
	Unit     string
}

// RecipeStep is one ordered instruction of a recipe.
type RecipeStep struct {
	Position int
	Text     string
}

// Recipe holds ordered ingredients and steps, and the meals it is planned for.
type Recipe struct {
	Syncable

	Name        string
	PhotoKey    string // object-storage key of the recipe photo, empty if none
	Ingredients []Ingredient
	Steps       []RecipeStep
	Meals       []*Meal
}

func NewRecipe(name, ownerID string) *Recipe {
	r := &Recipe{Name: name}
	r.UID = uuid.NewString()
	r.OwnerID = ownerID
	r.Touch(ownerID)
	return r
}

func (r *Recipe) Type() EntityType { return EntityTypeRecipe }

func (r *Recipe) SetName(name, by string) {
	r.Name = name
	r.Touch(by)
}

func (r *Recipe) SetPhotoKey(key, by string) {
	r.PhotoKey = key
	r.Touch(by)
}

func (r *Recipe) SetIngredients(ingredients []Ingredient, by string) {
	r.Ingredients = ingredients
	r.Touch(by)
}

func (r *Recipe) SetSteps(steps []RecipeStep, by string) {
	r.Steps = steps
	r.Touch(by)
}

func (r *Recipe) AddMeal(m *Meal, by string) {
	for _, existing := range r.Meals {
		if existing.UID == m.UID {
			return
		}
	}
	r.Meals = append(r.Meals, m)
	r.Touch(by)
}

func (r *Recipe) RemoveMeal(uid, by string) {
	for i, m := range r.Meals {
		if m.UID == uid {
			r.Meals = append(r.Meals[:i], r.Meals[i+1:]...)
			r.Touch(by)
			return
		}
	}
}

func (r *Recipe) MealIDs() []string {
	ids := make([]string, 0, len(r.Meals))
	for _, m := range r.Meals {
		ids = append(ids, m.UID)
	}
	return ids
}
