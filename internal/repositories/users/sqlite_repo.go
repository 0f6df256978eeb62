package users

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

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, u *models.User) error {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (uid, name, email, owner_id, last_modified_by, last_modified, dirty, is_shared)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			owner_id = excluded.owner_id,
			last_modified_by = excluded.last_modified_by,
			last_modified = excluded.last_modified,
			dirty = excluded.dirty,
			is_shared = excluded.is_shared
	`, u.UID, u.Name, u.Email, u.OwnerID, u.LastModifiedBy, u.LastModified, u.Dirty, u.IsShared)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_friends WHERE user_uid = ?`, u.UID); err != nil {
		return fmt.Errorf("failed to clear friends: %w", err)
	}
	for n, f := range u.Friends {
		_, err := tx.ExecContext(ctx, `INSERT INTO user_friends (user_uid, friend_uid, position) VALUES (?, ?, ?)`,
			u.UID, f.UID, n)
		if err != nil {
			return fmt.Errorf("failed to insert friend link: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_invites WHERE user_uid = ?`, u.UID); err != nil {
		return fmt.Errorf("failed to clear invites: %w", err)
	}
	for _, inv := range u.SentInvites {
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_invites (id, user_uid, direction) VALUES (?, ?, 'sent')`, inv.ID(), u.UID); err != nil {
			return fmt.Errorf("failed to insert sent invite: %w", err)
		}
	}
	for _, inv := range u.ReceivedInvites {
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_invites (id, user_uid, direction) VALUES (?, ?, 'received')`, inv.ID(), u.UID); err != nil {
			return fmt.Errorf("failed to insert received invite: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {

	row := r.db.QueryRowContext(ctx, `
		SELECT uid, name, email, owner_id, last_modified_by, last_modified, dirty, is_shared
		FROM users WHERE uid = ?`, uid)

	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadLinks(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (r *SQLiteRepository) GetDirty(ctx context.Context) ([]*models.User, error) {

	rows, err := r.db.QueryContext(ctx, `
		SELECT uid, name, email, owner_id, last_modified_by, last_modified, dirty, is_shared
		FROM users WHERE dirty = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to select dirty users: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, u := range result {
		if err := r.loadLinks(ctx, u); err != nil {
			return nil, err
		}
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var lastModified sql.NullTime
	err := row.Scan(&u.UID, &u.Name, &u.Email, &u.OwnerID, &u.LastModifiedBy, &lastModified, &u.Dirty, &u.IsShared)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if lastModified.Valid {
		u.LastModified = lastModified.Time
	}
	return u, nil
}

func (r *SQLiteRepository) loadLinks(ctx context.Context, u *models.User) error {

	rows, err := r.db.QueryContext(ctx, `SELECT friend_uid FROM user_friends WHERE user_uid = ? ORDER BY position`, u.UID)
	if err != nil {
		return fmt.Errorf("failed to select friends: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fid string
		if err := rows.Scan(&fid); err != nil {
			return err
		}
		stub := &models.User{}
		stub.UID = fid
		stub.OwnerID = fid
		u.Friends = append(u.Friends, stub)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	invRows, err := r.db.QueryContext(ctx, `SELECT id, direction FROM user_invites WHERE user_uid = ?`, u.UID)
	if err != nil {
		return fmt.Errorf("failed to select invites: %w", err)
	}
	defer invRows.Close()

	for invRows.Next() {
		var id, direction string
		if err := invRows.Scan(&id, &direction); err != nil {
			return err
		}
		inv, err := models.ParseInviteID(id)
		if err != nil {
			return err
		}
		if direction == "sent" {
			u.SentInvites = append(u.SentInvites, inv)
		} else {
			u.ReceivedInvites = append(u.ReceivedInvites, inv)
		}
	}
	return invRows.Err()
}
