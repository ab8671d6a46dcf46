package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of the Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL         = `INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`
	selectUserByEmailSQL  = `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`
	selectUserByIDSQL     = `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`
	updateUserPasswordSQL = `UPDATE users SET password_hash = ? WHERE id = ?`
	deleteUserSQL         = `DELETE FROM users WHERE id = ?`
	// INSERT OR IGNORE makes the owned-set add idempotent.
	addOwnedItemSQL    = `INSERT OR IGNORE INTO user_items (user_id, item_id) VALUES (?, ?)`
	removeOwnedItemSQL = `DELETE FROM user_items WHERE user_id = ? AND item_id = ?`
)

// Create inserts a new user and returns its ID.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, email, passwordHash, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", email, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", email, err)
	}
	return int(lastID), nil
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
// The email column is COLLATE NOCASE, so lookup is case-insensitive.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUserByEmailSQL, email), "email "+email)
}

// GetByID fetches a user by id. Returns (nil, nil) if not found.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUserByIDSQL, id), fmt.Sprintf("id %d", id))
}

func (r *UserRepository) scanOne(row *sql.Row, desc string) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by %s: %w", desc, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// UpdatePasswordHash replaces the stored credential for a user.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx, updateUserPasswordSQL, passwordHash, id); err != nil {
		return fmt.Errorf("update password for user %d: %w", id, err)
	}
	return nil
}

// Delete removes a user row. It does not cascade to owned items.
func (r *UserRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteUserSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected deleting user %d: %w", id, err)
	}
	return n > 0, nil
}

// AddOwnedItem adds an item id to the user's owned-set. Re-adding the same
// id is a no-op.
func (r *UserRepository) AddOwnedItem(ctx context.Context, userID int, itemID string) error {
	if _, err := r.db.ExecContext(ctx, addOwnedItemSQL, userID, itemID); err != nil {
		return fmt.Errorf("add item %s to user %d: %w", itemID, userID, err)
	}
	return nil
}

// RemoveOwnedItem drops an item id from the user's owned-set.
func (r *UserRepository) RemoveOwnedItem(ctx context.Context, userID int, itemID string) error {
	if _, err := r.db.ExecContext(ctx, removeOwnedItemSQL, userID, itemID); err != nil {
		return fmt.Errorf("remove item %s from user %d: %w", itemID, userID, err)
	}
	return nil
}
