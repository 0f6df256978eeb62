package meals

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

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, m *models.Meal) error {

	var todoUID, recipeUID sql.NullString
	if m.TodoItem != nil {
		todoUID = sql.NullString{String: m.TodoItem.UID, Valid: true}
	}
	if m.Recipe != nil {
		recipeUID = sql.NullString{String: m.Recipe.UID, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meals (uid, scale_factor, meal_type, todo_item_uid, recipe_uid,
			owner_id, last_modified_by, last_modified, dirty, is_shared)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			scale_factor = excluded.scale_factor,
			meal_type = excluded.meal_type,
			todo_item_uid = excluded.todo_item_uid,
			recipe_uid = excluded.recipe_uid,
			owner_id = excluded.owner_id,
			last_modified_by = excluded.last_modified_by,
			last_modified = excluded.last_modified,
			dirty = excluded.dirty,
			is_shared = excluded.is_shared
	`, m.UID, m.ScaleFactor, string(m.MealType), todoUID, recipeUID,
		m.OwnerID, m.LastModifiedBy, m.LastModified, m.Dirty, m.IsShared)
	if err != nil {
		return fmt.Errorf("failed to upsert meal: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_shopping_items WHERE meal_uid = ?`, m.UID); err != nil {
		return fmt.Errorf("failed to clear shopping item links: %w", err)
	}
	for _, s := range m.ShoppingListItems {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meal_shopping_items (meal_uid, item_uid) VALUES (?, ?)`, m.UID, s.UID); err != nil {
			return fmt.Errorf("failed to insert shopping item link: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetByUID(ctx context.Context, uid string) (*models.Meal, error) {

	row := r.db.QueryRowContext(ctx, `
		SELECT uid, scale_factor, meal_type, todo_item_uid, recipe_uid,
			owner_id, last_modified_by, last_modified, dirty, is_shared
		FROM meals WHERE uid = ?`, uid)

	m, err := scanMeal(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadLinks(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (r *SQLiteRepository) GetDirty(ctx context.Context) ([]*models.Meal, error) {

	rows, err := r.db.QueryContext(ctx, `
		SELECT uid, scale_factor, meal_type, todo_item_uid, recipe_uid,
			owner_id, last_modified_by, last_modified, dirty, is_shared
		FROM meals WHERE dirty = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to select dirty meals: %w", err)
	}
	defer rows.Close()

	var result []*models.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range result {
		if err := r.loadLinks(ctx, m); err != nil {
			return nil, err
		}
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(row rowScanner) (*models.Meal, error) {
	m := &models.Meal{}
	var mealType string
	var todoUID, recipeUID sql.NullString
	var lastModified sql.NullTime

	err := row.Scan(&m.UID, &m.ScaleFactor, &mealType, &todoUID, &recipeUID,
		&m.OwnerID, &m.LastModifiedBy, &lastModified, &m.Dirty, &m.IsShared)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan meal: %w", err)
	}

	m.MealType = models.MealType(mealType)
	if lastModified.Valid {
		m.LastModified = lastModified.Time
	}
	if todoUID.Valid {
		t := &models.TodoItem{}
		t.UID = todoUID.String
		m.TodoItem = t
	}
	if recipeUID.Valid {
		rec := &models.Recipe{}
		rec.UID = recipeUID.String
		m.Recipe = rec
	}

	return m, nil
}

func (r *SQLiteRepository) loadLinks(ctx context.Context, m *models.Meal) error {

	rows, err := r.db.QueryContext(ctx, `SELECT item_uid FROM meal_shopping_items WHERE meal_uid = ?`, m.UID)
	if err != nil {
		return fmt.Errorf("failed to select shopping item links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return err
		}
		s := &models.ShoppingListItem{}
		s.UID = uid
		m.ShoppingListItems = append(m.ShoppingListItems, s)
	}
	return rows.Err()
}
