package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	errTitleRequired = errors.New("title is required")
	errPriceRequired = errors.New("price is required and must be >= 0")
)

// ItemService implements owned-item CRUD. Every mutation appends an audit
// event and publishes to the live feed.
type ItemService struct {
	items  repository.Items
	users  repository.Users
	events repository.Events
	feed   Feed
}

func NewItemService(items repository.Items, users repository.Users, events repository.Events, feed Feed) *ItemService {
	return &ItemService{items: items, users: users, events: events, feed: feed}
}

// coerceBool applies the checkbox rule: the string "on" means true, a real
// boolean passes through, everything else is false.
func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "on"
	default:
		return false
	}
}

// coerceFloat accepts JSON numbers and numeric form strings. NaN and the
// infinities are rejected: they pass a `< 0` check and are not serializable
// as JSON.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// coerceTags accepts a []string, a JSON []any of strings, or a
// comma-separated form string.
func coerceTags(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, true
	}
	return nil, false
}

func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Create builds an item from the submitted field map. The owner is always the
// authenticated caller; any owner/id/views keys in the input are discarded by
// the allow-list. The new id is added to the caller's owned-set (idempotent).
func (s *ItemService) Create(ctx context.Context, ownerID int, fields map[string]any) (models.Item, error) {
	item := models.Item{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	title, ok := coerceString(fields["title"])
	if !ok || strings.TrimSpace(title) == "" {
		return models.Item{}, errTitleRequired
	}
	item.Title = strings.TrimSpace(title)

	price, ok := coerceFloat(fields["price"])
	if !ok || price < 0 {
		return models.Item{}, errPriceRequired
	}
	item.Price = price

	if v, present := fields["description"]; present {
		if d, ok := coerceString(v); ok {
			item.Description = d
		}
	}
	if v, present := fields["category"]; present {
		if c, ok := coerceString(v); ok {
			item.Category = strings.TrimSpace(c)
		}
	}
	if v, present := fields["tags"]; present {
		if tags, ok := coerceTags(v); ok {
			item.Tags = tags
		}
	}
	if v, present := fields["available"]; present {
		item.Available = coerceBool(v)
	}

	if err := s.items.Insert(ctx, item); err != nil {
		return models.Item{}, err
	}
	if err := s.users.AddOwnedItem(ctx, ownerID, item.ID); err != nil {
		return models.Item{}, err
	}

	s.recordItemEvent(ctx, models.EventItemCreated, "item created", item)
	return item, nil
}

// List returns the caller's owned items, newest first.
func (s *ItemService) List(ctx context.Context, ownerID int) ([]models.Item, error) {
	return s.items.ListByOwner(ctx, ownerID)
}

// Browse returns available items from the global view, optionally narrowed by
// category equality and a case-insensitive text search.
func (s *ItemService) Browse(ctx context.Context, f BrowseFilter) ([]models.Item, error) {
	return s.items.Browse(ctx, repository.BrowseFilter{
		Category:      strings.TrimSpace(f.Category),
		Query:         f.Query,
		AvailableOnly: true,
	})
}

// Get fetches an item by id and bumps its view counter. The counter is a
// denormalized read count: repeated reads increase it monotonically.
func (s *ItemService) Get(ctx context.Context, id string) (models.Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if it == nil {
		return models.Item{}, ErrItemNotFound
	}
	if err := s.items.IncrementViews(ctx, id); err != nil {
		return models.Item{}, err
	}
	it.Views++
	return *it, nil
}

// Update applies a partial field map over an existing item. Only allow-listed
// keys mutate anything; owner and id can never be overwritten. Applying the
// same update twice yields the same final state.
func (s *ItemService) Update(ctx context.Context, id string, fields map[string]any) (models.Item, error) {
	upd, err := buildItemUpdates(fields)
	if err != nil {
		return models.Item{}, err
	}

	found, err := s.items.ApplyUpdates(ctx, id, upd)
	if err != nil {
		return models.Item{}, err
	}
	if !found {
		return models.Item{}, ErrItemNotFound
	}

	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if it == nil {
		return models.Item{}, ErrItemNotFound
	}

	s.recordItemEvent(ctx, models.EventItemUpdated, "item updated", *it)
	return *it, nil
}

// buildItemUpdates maps the submitted fields through the allow-list,
// validating and type-coercing field by field. Unknown keys are ignored.
func buildItemUpdates(fields map[string]any) (repository.ItemUpdates, error) {
	var upd repository.ItemUpdates

	if v, present := fields["title"]; present {
		t, ok := coerceString(v)
		if !ok || strings.TrimSpace(t) == "" {
			return repository.ItemUpdates{}, errTitleRequired
		}
		t = strings.TrimSpace(t)
		upd.Title = &t
	}
	if v, present := fields["description"]; present {
		d, ok := coerceString(v)
		if !ok {
			return repository.ItemUpdates{}, fmt.Errorf("description must be a string")
		}
		upd.Description = &d
	}
	if v, present := fields["price"]; present {
		p, ok := coerceFloat(v)
		if !ok || p < 0 {
			return repository.ItemUpdates{}, errPriceRequired
		}
		upd.Price = &p
	}
	if v, present := fields["category"]; present {
		c, ok := coerceString(v)
		if !ok {
			return repository.ItemUpdates{}, fmt.Errorf("category must be a string")
		}
		c = strings.TrimSpace(c)
		upd.Category = &c
	}
	if v, present := fields["tags"]; present {
		tags, ok := coerceTags(v)
		if !ok {
			return repository.ItemUpdates{}, fmt.Errorf("tags must be a list of strings")
		}
		upd.Tags = &tags
	}
	if v, present := fields["available"]; present {
		b := coerceBool(v)
		upd.Available = &b
	}

	return upd, nil
}

// Delete removes an item by id. Any authenticated caller may delete any item
// it can name; list scoping is the only ownership boundary here.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return ErrItemNotFound
	}

	deleted, err := s.items.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	if err := s.users.RemoveOwnedItem(ctx, it.OwnerID, id); err != nil {
		return err
	}

	s.recordItemEvent(ctx, models.EventItemDeleted, "item deleted", *it)
	return nil
}

// recordItemEvent appends an audit entry and publishes to the feed.
// Audit failures do not fail the mutation itself.
func (s *ItemService) recordItemEvent(ctx context.Context, typ, msg string, item models.Item) {
	ev := models.Event{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Type:       typ,
		Message:    msg,
		Metadata: map[string]any{
			"item_id":  item.ID,
			"owner_id": item.OwnerID,
			"title":    item.Title,
		},
	}
	_ = s.events.Append(ctx, ev)
	if s.feed != nil {
		s.feed.Publish(ev)
	}
}
