package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/models"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

var _ Items = (*ItemRepository)(nil)

const itemColumns = `id, owner_id, title, description, price, category, tags, available, views, created_at`

const (
	insertItemSQL = `INSERT INTO items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectItemByIDSQL = `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	selectItemsByOwnerSQL = `
		SELECT i.id, i.owner_id, i.title, i.description, i.price, i.category, i.tags, i.available, i.views, i.created_at
		FROM items i
		JOIN user_items ui ON ui.item_id = i.id
		WHERE ui.user_id = ?
		ORDER BY i.created_at DESC, i.id`

	deleteItemSQL = `DELETE FROM items WHERE id = ?`

	// Single-statement increment so concurrent reads cannot lose an update.
	incrementViewsSQL = `UPDATE items SET views = views + 1 WHERE id = ?`
)

// marshalTags converts the slice to a JSON string; nil maps to empty.
func marshalTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalTags(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Insert persists a new item.
func (r *ItemRepository) Insert(ctx context.Context, item models.Item) error {
	tagsJSON, err := marshalTags(item.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags for item %s: %w", item.ID, err)
	}

	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	} else {
		createdAt = createdAt.UTC()
	}

	_, err = r.db.ExecContext(ctx, insertItemSQL,
		item.ID,
		item.OwnerID,
		item.Title,
		item.Description,
		item.Price,
		item.Category,
		tagsJSON,
		item.Available,
		item.Views,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert item %s: %w", item.ID, err)
	}
	return nil
}

// GetByID fetches a single item. Returns (nil, nil) if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx, selectItemByIDSQL, id)

	var it models.Item
	var tagsJSON sql.NullString
	err := row.Scan(
		&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Price,
		&it.Category, &tagsJSON, &it.Available, &it.Views, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select item %s: %w", id, err)
	}

	if tagsJSON.Valid {
		tags, err := unmarshalTags(tagsJSON.String)
		if err != nil {
			return nil, fmt.Errorf("decode tags for item %s: %w", id, err)
		}
		it.Tags = tags
	}
	it.CreatedAt = it.CreatedAt.UTC()
	return &it, nil
}

// ListByOwner returns the items reachable from the user's owned-set,
// most-recently-created first.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, selectItemsByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items for owner %d: %w", ownerID, err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Browse returns the global item view, filtered and most-recently-created first.
func (r *ItemRepository) Browse(ctx context.Context, f BrowseFilter) ([]models.Item, error) {
	var (
		conds []string
		args  []any
	)

	if f.AvailableOnly {
		conds = append(conds, "available = 1")
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("browse items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]models.Item, error) {
	out := make([]models.Item, 0, 16)
	for rows.Next() {
		var it models.Item
		var tagsJSON sql.NullString
		if err := rows.Scan(
			&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Price,
			&it.Category, &tagsJSON, &it.Available, &it.Views, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		if tagsJSON.Valid {
			tags, err := unmarshalTags(tagsJSON.String)
			if err != nil {
				return nil, fmt.Errorf("decode tags for item %s: %w", it.ID, err)
			}
			it.Tags = tags
		}
		it.CreatedAt = it.CreatedAt.UTC()
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyUpdates mutates only the fields set in upd. Returns false if the item
// does not exist. An empty update is a no-op that still reports existence.
func (r *ItemRepository) ApplyUpdates(ctx context.Context, id string, upd ItemUpdates) (bool, error) {
	if upd.Empty() {
		it, err := r.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		return it != nil, nil
	}

	var (
		sets []string
		args []any
	)
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *upd.Price)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Tags != nil {
		tagsJSON, err := marshalTags(*upd.Tags)
		if err != nil {
			return false, fmt.Errorf("marshal tags for item %s: %w", id, err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, tagsJSON)
	}
	if upd.Available != nil {
		sets = append(sets, "available = ?")
		args = append(args, *upd.Available)
	}

	query := "UPDATE items SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update item %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected updating item %s: %w", id, err)
	}
	return n > 0, nil
}

// Delete removes an item by id; returns false if nothing was deleted.
func (r *ItemRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteItemSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete item %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected deleting item %s: %w", id, err)
	}
	return n > 0, nil
}

// IncrementViews bumps the read counter by one.
func (r *ItemRepository) IncrementViews(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, incrementViewsSQL, id); err != nil {
		return fmt.Errorf("increment views for item %s: %w", id, err)
	}
	return nil
}
