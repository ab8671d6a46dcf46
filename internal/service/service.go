package service

import (
	"context"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repository"
)

// Authorization covers registration, login, token verification and the
// account lifecycle.
type Authorization interface {
	SignUp(ctx context.Context, email, password string) (*models.User, string, error)
	SignIn(ctx context.Context, email, password string) (*models.User, string, error)
	ParseToken(accessToken string) (int, error)
	// Authenticate verifies the token AND resolves the encoded user; a token
	// for a deleted user is invalid.
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	ChangePassword(ctx context.Context, userID int, current, next string) error
	DeleteAccount(ctx context.Context, userID int) error
}

// BrowseFilter narrows the public item view.
type BrowseFilter struct {
	Category string
	Query    string
}

// Items is the owned-resource CRUD surface.
type Items interface {
	Create(ctx context.Context, ownerID int, fields map[string]any) (models.Item, error)
	List(ctx context.Context, ownerID int) ([]models.Item, error)
	Browse(ctx context.Context, f BrowseFilter) ([]models.Item, error)
	// Get increments the view counter as an observable side effect.
	Get(ctx context.Context, id string) (models.Item, error)
	Update(ctx context.Context, id string, fields map[string]any) (models.Item, error)
	Delete(ctx context.Context, id string) error
}

// LogFilter supports audit history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", REGISTER, LOGIN, ITEM_CREATED, ITEM_UPDATED, ITEM_DELETED
}

// EventLog exposes append-only audit logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Event, error)
}

// Feed is the in-process fan-out of item mutation events.
type Feed interface {
	Publish(e models.Event)
	// Subscribe returns a receive channel and a cancel func that must be
	// called to release the subscription.
	Subscribe() (<-chan models.Event, func())
}

// AuthConfig carries token settings into the auth service. The signing key is
// injected here rather than read from any ambient global.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration // 0 disables the expiry claim
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Items
	EventLog
	Feed
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, authCfg AuthConfig) *Service {
	feed := NewFeedService()
	return &Service{
		Authorization: NewAuthService(repos.Users, repos.Events, authCfg),
		Items:         NewItemService(repos.Items, repos.Users, repos.Events, feed),
		EventLog:      NewEventLogService(repos.Events),
		Feed:          feed,
	}
}
