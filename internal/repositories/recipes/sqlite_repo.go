package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/models"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, rec *models.Recipe) error {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recipes (uid, name, photo_key, owner_id, last_modified_by, last_modified, dirty, is_shared)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			photo_key = excluded.photo_key,
			owner_id = excluded.owner_id,
			last_modified_by = excluded.last_modified_by,
			last_modified = excluded.last_modified,
			dirty = excluded.dirty,
			is_shared = excluded.is_shared
	`, rec.UID, rec.Name, rec.PhotoKey, rec.OwnerID, rec.LastModifiedBy, rec.LastModified, rec.Dirty, rec.IsShared)
	if err != nil {
		return fmt.Errorf("failed to upsert recipe: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_uid = ?`, rec.UID); err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}
	for _, ing := range rec.Ingredients {
		_, err := tx.ExecContext(ctx, `INSERT INTO recipe_ingredients (recipe_uid, position, name, quantity, unit) VALUES (?, ?, ?, ?, ?)`,
			rec.UID, ing.Position, ing.Name, ing.Quantity, ing.Unit)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_steps WHERE recipe_uid = ?`, rec.UID); err != nil {
		return fmt.Errorf("failed to clear steps: %w", err)
	}
	for _, st := range rec.Steps {
		_, err := tx.ExecContext(ctx, `INSERT INTO recipe_steps (recipe_uid, position, text) VALUES (?, ?, ?)`,
			rec.UID, st.Position, st.Text)
		if err != nil {
			return fmt.Errorf("failed to insert step: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_meals WHERE recipe_uid = ?`, rec.UID); err != nil {
		return fmt.Errorf("failed to clear meal links: %w", err)
	}
	for _, m := range rec.Meals {
		if _, err := tx.ExecContext(ctx, `INSERT INTO recipe_meals (recipe_uid, meal_uid) VALUES (?, ?)`, rec.UID, m.UID); err != nil {
			return fmt.Errorf("failed to insert meal link: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetByUID(ctx context.Context, uid string) (*models.Recipe, error) {

	row := r.db.QueryRowContext(ctx, `
		SELECT uid, name, photo_key, owner_id, last_modified_by, last_modified, dirty, is_shared
		FROM recipes WHERE uid = ?`, uid)

	rec, err := scanRecipe(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadLinks(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *SQLiteRepository) GetDirty(ctx context.Context) ([]*models.Recipe, error) {

	rows, err := r.db.QueryContext(ctx, `
		SELECT uid, name, photo_key, owner_id, last_modified_by, last_modified, dirty, is_shared
		FROM recipes WHERE dirty = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to select dirty recipes: %w", err)
	}
	defer rows.Close()

	var result []*models.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rec := range result {
		if err := r.loadLinks(ctx, rec); err != nil {
			return nil, err
		}
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	rec := &models.Recipe{}
	var lastModified sql.NullTime
	err := row.Scan(&rec.UID, &rec.Name, &rec.PhotoKey, &rec.OwnerID, &rec.LastModifiedBy, &lastModified, &rec.Dirty, &rec.IsShared)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan recipe: %w", err)
	}
	if lastModified.Valid {
		rec.LastModified = lastModified.Time
	}
	return rec, nil
}

func (r *SQLiteRepository) loadLinks(ctx context.Context, rec *models.Recipe) error {

	ingRows, err := r.db.QueryContext(ctx, `
		SELECT position, name, quantity, unit FROM recipe_ingredients
		WHERE recipe_uid = ? ORDER BY position`, rec.UID)
	if err != nil {
		return fmt.Errorf("failed to select ingredients: %w", err)
	}
	defer ingRows.Close()

	for ingRows.Next() {
		var ing models.Ingredient
		if err := ingRows.Scan(&ing.Position, &ing.Name, &ing.Quantity, &ing.Unit); err != nil {
			return err
		}
		rec.Ingredients = append(rec.Ingredients, ing)
	}
	if err := ingRows.Err(); err != nil {
		return err
	}

	stepRows, err := r.db.QueryContext(ctx, `
		SELECT position, text FROM recipe_steps
		WHERE recipe_uid = ? ORDER BY position`, rec.UID)
	if err != nil {
		return fmt.Errorf("failed to select steps: %w", err)
	}
	defer stepRows.Close()

	for stepRows.Next() {
		var st models.RecipeStep
		if err := stepRows.Scan(&st.Position, &st.Text); err != nil {
			return err
		}
		rec.Steps = append(rec.Steps, st)
	}
	if err := stepRows.Err(); err != nil {
		return err
	}

	mealRows, err := r.db.QueryContext(ctx, `SELECT meal_uid FROM recipe_meals WHERE recipe_uid = ?`, rec.UID)
	if err != nil {
		return fmt.Errorf("failed to select meal links: %w", err)
	}
	defer mealRows.Close()

	for mealRows.Next() {
		var uid string
		if err := mealRows.Scan(&uid); err != nil {
			return err
		}
		m := &models.Meal{}
		m.UID = uid
		rec.Meals = append(rec.Meals, m)
	}
	return mealRows.Err()
}
