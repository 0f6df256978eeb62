package todos

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

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, t *models.TodoItem) error {

	var mealUID, itemUID, categoryUID sql.NullString
	if t.Meal != nil {
		mealUID = sql.NullString{String: t.Meal.UID, Valid: true}
	}
	if t.ShoppingListItem != nil {
		itemUID = sql.NullString{String: t.ShoppingListItem.UID, Valid: true}
	}
	if t.Category != nil {
		categoryUID = sql.NullString{String: t.Category.UID, Valid: true}
	}

	var dueAt sql.NullTime
	if t.DueAt != nil {
		dueAt = sql.NullTime{Time: *t.DueAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todo_items (uid, title, details, completed, recurrence_rule, due_at,
			meal_uid, shopping_list_item_uid, category_uid,
			owner_id, last_modified_by, last_modified, dirty, is_shared)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			title = excluded.title,
			details = excluded.details,
			completed = excluded.completed,
			recurrence_rule = excluded.recurrence_rule,
			due_at = excluded.due_at,
			meal_uid = excluded.meal_uid,
			shopping_list_item_uid = excluded.shopping_list_item_uid,
			category_uid = excluded.category_uid,
			owner_id = excluded.owner_id,
			last_modified_by = excluded.last_modified_by,
			last_modified = excluded.last_modified,
			dirty = excluded.dirty,
			is_shared = excluded.is_shared
	`, t.UID, t.Title, t.Details, t.Completed, t.RecurrenceRule, dueAt,
		mealUID, itemUID, categoryUID,
		t.OwnerID, t.LastModifiedBy, t.LastModified, t.Dirty, t.IsShared)
	if err != nil {
		return fmt.Errorf("failed to upsert todo item: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) GetByUID(ctx context.Context, uid string) (*models.TodoItem, error) {
	row := r.db.QueryRowContext(ctx, selectQuery+` WHERE t.uid = ?`, uid)
	return scanTodoItem(row)
}

func (r *SQLiteRepository) GetDirty(ctx context.Context) ([]*models.TodoItem, error) {

	rows, err := r.db.QueryContext(ctx, selectQuery+` WHERE t.dirty = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to select dirty todo items: %w", err)
	}
	defer rows.Close()

	var result []*models.TodoItem
	for rows.Next() {
		t, err := scanTodoItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	return result, rows.Err()
}

const selectQuery = `
	SELECT t.uid, t.title, t.details, t.completed, t.recurrence_rule, t.due_at,
		t.meal_uid, t.shopping_list_item_uid, t.category_uid, c.name,
		t.owner_id, t.last_modified_by, t.last_modified, t.dirty, t.is_shared
	FROM todo_items t
	LEFT JOIN todo_item_categories c ON c.uid = t.category_uid`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodoItem(row rowScanner) (*models.TodoItem, error) {
	t := &models.TodoItem{}
	var dueAt, lastModified sql.NullTime
	var mealUID, itemUID, categoryUID, categoryName sql.NullString

	err := row.Scan(&t.UID, &t.Title, &t.Details, &t.Completed, &t.RecurrenceRule, &dueAt,
		&mealUID, &itemUID, &categoryUID, &categoryName,
		&t.OwnerID, &t.LastModifiedBy, &lastModified, &t.Dirty, &t.IsShared)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan todo item: %w", err)
	}

	if dueAt.Valid {
		due := dueAt.Time
		t.DueAt = &due
	}
	if lastModified.Valid {
		t.LastModified = lastModified.Time
	}
	if mealUID.Valid {
		m := &models.Meal{}
		m.UID = mealUID.String
		t.Meal = m
	}
	if itemUID.Valid {
		s := &models.ShoppingListItem{}
		s.UID = itemUID.String
		t.ShoppingListItem = s
	}
	if categoryUID.Valid {
		c := &models.TodoItemCategory{Name: categoryName.String}
		c.UID = categoryUID.String
		t.Category = c
	}

	return t, nil
}
