package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"marketplace/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockItemRepo(t *testing.T) (*ItemRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewItemRepository(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestItemRepository_InsertEncodesTags(t *testing.T) {
	repo, mock, cleanup := newMockItemRepo(t)
	defer cleanup()

	created := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)
	item := models.Item{
		ID:          "i1",
		OwnerID:     5,
		Title:       "Widget",
		Description: "a widget",
		Price:       9.99,
		Category:    "home",
		Tags:        []string{"new", "sale"},
		Available:   true,
		CreatedAt:   created,
	}

	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).
		WithArgs("i1", 5, "Widget", "a widget", 9.99, "home", `["new","sale"]`, true, 0, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Insert(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestItemRepository_InsertEmptyTagsStoredAsEmptyString(t *testing.T) {
	repo, mock, cleanup := newMockItemRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).
		WithArgs("i2", 5, "Plain", "", 1.0, "", "", false, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := models.Item{ID: "i2", OwnerID: 5, Title: "Plain", Price: 1.0}
	if err := repo.Insert(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestItemRepository_GetByID(t *testing.T) {
	created := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "owner_id", "title", "description", "price", "category", "tags", "available", "views", "created_at"}

	tests := []struct {
		name       string
		id         string
		mockExpect func(sqlmock.Sqlmock)
		wantNil    bool
		wantErr    bool
		wantTags   []string
	}{
		{
			name: "found with tags",
			id:   "i1",
			mockExpect: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(cols).
					AddRow("i1", 5, "Widget", "a widget", 9.99, "home", `["new","sale"]`, true, 3, created)
				m.ExpectQuery(regexp.QuoteMeta(selectItemByIDSQL)).
					WithArgs("i1").
					WillReturnRows(rows)
			},
			wantTags: []string{"new", "sale"},
		},
		{
			name: "not found yields nil without error",
			id:   "gone",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectItemByIDSQL)).
					WithArgs("gone").
					WillReturnRows(sqlmock.NewRows(cols))
			},
			wantNil: true,
		},
		{
			name: "query error",
			id:   "i1",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectItemByIDSQL)).
					WithArgs("i1").
					WillReturnError(errors.New("db query failed"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockItemRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			it, err := repo.GetByID(context.Background(), tt.id)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if it != nil {
					t.Fatalf("expected nil item, got %+v", it)
				}
				return
			}
			if it == nil {
				t.Fatalf("expected item, got nil")
			}
			if len(it.Tags) != len(tt.wantTags) {
				t.Fatalf("tags=%v, want %v", it.Tags, tt.wantTags)
			}
			for i := range tt.wantTags {
				if it.Tags[i] != tt.wantTags[i] {
					t.Fatalf("tags=%v, want %v", it.Tags, tt.wantTags)
				}
			}
		})
	}
}

func TestItemRepository_ListByOwner(t *testing.T) {
	repo, mock, cleanup := newMockItemRepo(t)
	defer cleanup()

	created := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "price", "category", "tags", "available", "views", "created_at"}).
		AddRow("i2", 5, "Newer", "", 2.0, "", "", true, 0, created.Add(time.Hour)).
		AddRow("i1", 5, "Older", "", 1.0, "", "", true, 0, created)

	mock.ExpectQuery(regexp.QuoteMeta(selectItemsByOwnerSQL)).
		WithArgs(5).
		WillReturnRows(rows)

	items, err := repo.ListByOwner(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "i2" || items[1].ID != "i1" {
		t.Fatalf("unexpected order: %s, %s", items[0].ID, items[1].ID)
	}
}

func TestItemRepository_BrowseBuildsFilteredQuery(t *testing.T) {
	repo, mock, cleanup := newMockItemRepo(t)
	defer cleanup()

	wantQuery := `SELECT ` + itemColumns + ` FROM items` +
		` WHERE available = 1 AND category = ? AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)` +
		` ORDER BY created_at DESC, id`

	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "price", "category", "tags", "available", "views", "created_at"}).
		AddRow("i1", 5, "Lamp", "desk lamp", 20.0, "home", "", true, 0, time.Now().UTC())

	mock.ExpectQuery(regexp.QuoteMeta(wantQuery)).
		WithArgs("home", "%lam%", "%lam%").
		WillReturnRows(rows)

	items, err := repo.Browse(context.Background(), BrowseFilter{
		AvailableOnly: true,
		Category:      "home",
		Query:         " Lam ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Lamp" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestItemRepository_BrowseNoFilters(t *testing.T) {
	repo, mock, cleanup := newMockItemRepo(t)
	defer cleanup()

	wantQuery := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC, id`
	mock.ExpectQuery(regexp.QuoteMeta(wantQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "price", "category", "tags", "available", "views", "created_at"}))

	items, err := repo.Browse(context.Background(), BrowseFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result, got %+v", items)
	}
}

func TestItemRepository_ApplyUpdates(t *testing.T) {
	title := "Renamed"
	avail := false
	price := 15.5

	tests := []struct {
		name       string
		upd        ItemUpdates
		mockExpect func(sqlmock.Sqlmock)
		wantFound  bool
	}{
		{
			name: "partial update touches only the set fields",
			upd:  ItemUpdates{Title: &title, Available: &avail},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(`UPDATE items SET title = ?, available = ? WHERE id = ?`)).
					WithArgs("Renamed", false, "i1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantFound: true,
		},
		{
			name: "single field",
			upd:  ItemUpdates{Price: &price},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(`UPDATE items SET price = ? WHERE id = ?`)).
					WithArgs(15.5, "i1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantFound: true,
		},
		{
			name: "missing item reports not found",
			upd:  ItemUpdates{Title: &title},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(`UPDATE items SET title = ? WHERE id = ?`)).
					WithArgs("Renamed", "i1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantFound: false,
		},
		{
			name: "empty update only checks existence",
			upd:  ItemUpdates{},
			mockExpect: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "price", "category", "tags", "available", "views", "created_at"}).
					AddRow("i1", 5, "Widget", "", 1.0, "", "", true, 0, time.Now().UTC())
				m.ExpectQuery(regexp.QuoteMeta(selectItemByIDSQL)).
					WithArgs("i1").
					WillReturnRows(rows)
			},
			wantFound: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockItemRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			found, err := repo.ApplyUpdates(context.Background(), "i1", tt.upd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("found=%v, want %v", found, tt.wantFound)
			}
		})
	}
}

func TestItemRepository_Delete(t *testing.T) {
	repo, mock, cleanup := newMockItemRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(deleteItemSQL)).
		WithArgs("i1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteItemSQL)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "i1")
	if err != nil || !deleted {
		t.Fatalf("delete existing: deleted=%v err=%v", deleted, err)
	}

	deleted, err = repo.Delete(context.Background(), "gone")
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if deleted {
		t.Fatalf("expected deleted=false for a missing item")
	}
}

func TestItemRepository_IncrementViews(t *testing.T) {
	repo, mock, cleanup := newMockItemRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(incrementViewsSQL)).
		WithArgs("i1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementViews(context.Background(), "i1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
