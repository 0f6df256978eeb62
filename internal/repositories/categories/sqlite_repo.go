package categories

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

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, c *models.TodoItemCategory) error {

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todo_item_categories (uid, name, owner_id, last_modified_by, last_modified, dirty, is_shared)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			owner_id = excluded.owner_id,
			last_modified_by = excluded.last_modified_by,
			last_modified = excluded.last_modified,
			dirty = excluded.dirty,
			is_shared = excluded.is_shared
	`, c.UID, c.Name, c.OwnerID, c.LastModifiedBy, c.LastModified, c.Dirty, c.IsShared)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) GetByUID(ctx context.Context, uid string) (*models.TodoItemCategory, error) {
	row := r.db.QueryRowContext(ctx, selectQuery+` WHERE uid = ?`, uid)
	return scanCategory(row)
}

func (r *SQLiteRepository) GetOrCreateByName(ctx context.Context, name, ownerID string) (*models.TodoItemCategory, error) {

	row := r.db.QueryRowContext(ctx, selectQuery+` WHERE name = ?`, name)

	c, err := scanCategory(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	c = models.NewTodoItemCategory(name, ownerID)
	if err := r.CreateOrUpdate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *SQLiteRepository) GetDirty(ctx context.Context) ([]*models.TodoItemCategory, error) {

	rows, err := r.db.QueryContext(ctx, selectQuery+` WHERE dirty = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to select dirty categories: %w", err)
	}
	defer rows.Close()

	var result []*models.TodoItemCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	return result, rows.Err()
}

const selectQuery = `
	SELECT uid, name, owner_id, last_modified_by, last_modified, dirty, is_shared
	FROM todo_item_categories`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*models.TodoItemCategory, error) {
	c := &models.TodoItemCategory{}
	var lastModified sql.NullTime
	err := row.Scan(&c.UID, &c.Name, &c.OwnerID, &c.LastModifiedBy, &lastModified, &c.Dirty, &c.IsShared)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	if lastModified.Valid {
		c.LastModified = lastModified.Time
	}
	return c, nil
}
