package shoppingitems

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

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, s *models.ShoppingListItem) error {

	var todoUID sql.NullString
	if s.TodoItem != nil {
		todoUID = sql.NullString{String: s.TodoItem.UID, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shopping_list_items (uid, name, quantity, unit, todo_item_uid,
			owner_id, last_modified_by, last_modified, dirty, is_shared)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			quantity = excluded.quantity,
			unit = excluded.unit,
			todo_item_uid = excluded.todo_item_uid,
			owner_id = excluded.owner_id,
			last_modified_by = excluded.last_modified_by,
			last_modified = excluded.last_modified,
			dirty = excluded.dirty,
			is_shared = excluded.is_shared
	`, s.UID, s.Name, s.Quantity, s.Unit, todoUID,
		s.OwnerID, s.LastModifiedBy, s.LastModified, s.Dirty, s.IsShared)
	if err != nil {
		return fmt.Errorf("failed to upsert shopping list item: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_shopping_items WHERE item_uid = ?`, s.UID); err != nil {
		return fmt.Errorf("failed to clear meal links: %w", err)
	}
	for _, m := range s.Meals {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meal_shopping_items (meal_uid, item_uid) VALUES (?, ?)`, m.UID, s.UID); err != nil {
			return fmt.Errorf("failed to insert meal link: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetByUID(ctx context.Context, uid string) (*models.ShoppingListItem, error) {

	row := r.db.QueryRowContext(ctx, `
		SELECT uid, name, quantity, unit, todo_item_uid,
			owner_id, last_modified_by, last_modified, dirty, is_shared
		FROM shopping_list_items WHERE uid = ?`, uid)

	s, err := scanItem(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadLinks(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

func (r *SQLiteRepository) GetDirty(ctx context.Context) ([]*models.ShoppingListItem, error) {

	rows, err := r.db.QueryContext(ctx, `
		SELECT uid, name, quantity, unit, todo_item_uid,
			owner_id, last_modified_by, last_modified, dirty, is_shared
		FROM shopping_list_items WHERE dirty = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to select dirty shopping list items: %w", err)
	}
	defer rows.Close()

	var result []*models.ShoppingListItem
	for rows.Next() {
		s, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, s := range result {
		if err := r.loadLinks(ctx, s); err != nil {
			return nil, err
		}
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.ShoppingListItem, error) {
	s := &models.ShoppingListItem{}
	var todoUID sql.NullString
	var lastModified sql.NullTime

	err := row.Scan(&s.UID, &s.Name, &s.Quantity, &s.Unit, &todoUID,
		&s.OwnerID, &s.LastModifiedBy, &lastModified, &s.Dirty, &s.IsShared)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan shopping list item: %w", err)
	}

	if lastModified.Valid {
		s.LastModified = lastModified.Time
	}
	if todoUID.Valid {
		t := &models.TodoItem{}
		t.UID = todoUID.String
		s.TodoItem = t
	}

	return s, nil
}

func (r *SQLiteRepository) loadLinks(ctx context.Context, s *models.ShoppingListItem) error {

	rows, err := r.db.QueryContext(ctx, `SELECT meal_uid FROM meal_shopping_items WHERE item_uid = ?`, s.UID)
	if err != nil {
		return fmt.Errorf("failed to select meal links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return err
		}
		m := &models.Meal{}
		m.UID = uid
		s.Meals = append(s.Meals, m)
	}
	return rows.Err()
}
