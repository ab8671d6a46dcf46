package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repository"
)

// Map-backed fakes for the repository interfaces. They keep the real
// store semantics (set-union ownership, partial updates, counters) so the
// service laws can be exercised without a database.

type fakeUsers struct {
	nextID int
	byID   map[int]*models.User
	owned  map[int]map[string]bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:  make(map[int]*models.User),
		owned: make(map[int]map[string]bool),
	}
}

var _ repository.Users = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, email, passwordHash string) (int, error) {
	f.nextID++
	f.byID[f.nextID] = &models.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	return f.nextID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id int, passwordHash string) error {
	if u, ok := f.byID[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	delete(f.owned, id)
	return true, nil
}

func (f *fakeUsers) AddOwnedItem(_ context.Context, userID int, itemID string) error {
	set, ok := f.owned[userID]
	if !ok {
		set = make(map[string]bool)
		f.owned[userID] = set
	}
	set[itemID] = true
	return nil
}

func (f *fakeUsers) RemoveOwnedItem(_ context.Context, userID int, itemID string) error {
	delete(f.owned[userID], itemID)
	return nil
}

func (f *fakeUsers) ownedCount(userID int) int { return len(f.owned[userID]) }

type fakeItems struct {
	byID map[string]*models.Item
}

func newFakeItems() *fakeItems {
	return &fakeItems{byID: make(map[string]*models.Item)}
}

var _ repository.Items = (*fakeItems)(nil)

func (f *fakeItems) Insert(_ context.Context, item models.Item) error {
	cp := item
	f.byID[item.ID] = &cp
	return nil
}

func (f *fakeItems) GetByID(_ context.Context, id string) (*models.Item, error) {
	it, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItems) ListByOwner(_ context.Context, ownerID int) ([]models.Item, error) {
	var out []models.Item
	for _, it := range f.byID {
		if it.OwnerID == ownerID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeItems) Browse(_ context.Context, filter repository.BrowseFilter) ([]models.Item, error) {
	var out []models.Item
	for _, it := range f.byID {
		if filter.AvailableOnly && !it.Available {
			continue
		}
		if filter.Category != "" && it.Category != filter.Category {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
			title := strings.ToLower(it.Title)
			desc := strings.ToLower(it.Description)
			if !strings.Contains(title, q) && !strings.Contains(desc, q) {
				continue
			}
		}
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeItems) ApplyUpdates(_ context.Context, id string, upd repository.ItemUpdates) (bool, error) {
	it, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	if upd.Title != nil {
		it.Title = *upd.Title
	}
	if upd.Description != nil {
		it.Description = *upd.Description
	}
	if upd.Price != nil {
		it.Price = *upd.Price
	}
	if upd.Category != nil {
		it.Category = *upd.Category
	}
	if upd.Tags != nil {
		it.Tags = *upd.Tags
	}
	if upd.Available != nil {
		it.Available = *upd.Available
	}
	return true, nil
}

func (f *fakeItems) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeItems) IncrementViews(_ context.Context, id string) error {
	if it, ok := f.byID[id]; ok {
		it.Views++
	}
	return nil
}

type fakeEvents struct {
	appended []models.Event

	lastFrom time.Time
	lastTo   time.Time
	lastType string
	resp     []models.Event
}

var _ repository.Events = (*fakeEvents)(nil)

func (f *fakeEvents) Append(_ context.Context, e models.Event) error {
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeEvents) List(_ context.Context, from, to time.Time, typ string) ([]models.Event, error) {
	f.lastFrom = from
	f.lastTo = to
	f.lastType = typ
	return f.resp, nil
}
