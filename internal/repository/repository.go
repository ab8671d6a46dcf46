package repository

import (
	"context"
	"database/sql"
	"time"

	"marketplace/internal/models"
)

// Users is the user directory plus owned-set membership.
type Users interface {
	Create(ctx context.Context, email, passwordHash string) (int, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int, passwordHash string) error
	Delete(ctx context.Context, id int) (bool, error)
	AddOwnedItem(ctx context.Context, userID int, itemID string) error
	RemoveOwnedItem(ctx context.Context, userID int, itemID string) error
}

// BrowseFilter narrows the global item view. Zero values mean "no filter".
type BrowseFilter struct {
	Category      string
	Query         string // case-insensitive substring over title and description
	AvailableOnly bool
}

// ItemUpdates is the allow-list of mutable item fields; nil means untouched.
type ItemUpdates struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Tags        *[]string
	Available   *bool
}

// Empty reports whether no field is set.
func (u ItemUpdates) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.Tags == nil && u.Available == nil
}

// Items is item persistence.
type Items interface {
	Insert(ctx context.Context, item models.Item) error
	GetByID(ctx context.Context, id string) (*models.Item, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Item, error)
	Browse(ctx context.Context, f BrowseFilter) ([]models.Item, error)
	ApplyUpdates(ctx context.Context, id string, upd ItemUpdates) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
}

// Events is the append-only audit log.
type Events interface {
	Append(ctx context.Context, e models.Event) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error)
}

type Repository struct {
	Users  Users
	Items  Items
	Events Events
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:  NewUserRepository(db),
		Items:  NewItemRepository(db),
		Events: NewEventRepository(db),
	}
}
