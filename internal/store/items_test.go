package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/whereismy/whereismy/internal/db"
	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/vector"
)

// seedBasics creates a user and a category and returns their IDs.
func seedBasics(t *testing.T, database *sql.DB) (userID, categoryID int64) {
	t.Helper()
	ctx := context.Background()

	user, err := UpsertTelegramUser(ctx, database, 100200300, "finder")
	if err != nil {
		t.Fatalf("UpsertTelegramUser: %v", err)
	}
	category, err := CreateCategory(ctx, database, "Electronics")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return user.ID, category.ID
}

// unitVec returns a 384-dim vector pointing along the given axis.
func unitVec(axis int) []float32 {
	v := make([]float32, vector.Dim)
	v[axis] = 1
	return v
}

// blendVec returns a 384-dim vector mostly along axis a with a small
// component along axis b.
func blendVec(a, b int, lean float32) []float32 {
	v := make([]float32, vector.Dim)
	v[a] = 1
	v[b] = lean
	return v
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	item, err := CreateItem(ctx, database, NewItem{
		AuthorID:      userID,
		CategoryID:    categoryID,
		Type:          model.ItemTypeFound,
		Description:   "black leather wallet",
		ContactMethod: model.ContactLeftAt,
		Vector:        unitVec(0),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if item.Status != model.ItemStatusActive {
		t.Errorf("expected status active, got %q", item.Status)
	}
	if item.CreatedAt.IsZero() {
		t.Error("expected server-assigned creation timestamp")
	}
	if item.CategoryName != "Electronics" {
		t.Errorf("expected joined category name, got %q", item.CategoryName)
	}

	// Vector round-trips bit-exact through the BLOB column.
	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(got.Vector) != vector.Dim {
		t.Fatalf("expected %d-dim vector, got %d", vector.Dim, len(got.Vector))
	}
	for i, f := range unitVec(0) {
		if got.Vector[i] != f {
			t.Fatalf("vector component %d: got %v, want %v", i, got.Vector[i], f)
		}
	}
}

func TestCreateItemRejectsBadVector(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	_, err := CreateItem(ctx, database, NewItem{
		AuthorID:      userID,
		CategoryID:    categoryID,
		Type:          model.ItemTypeFound,
		ContactMethod: model.ContactLeftAt,
		Vector:        make([]float32, 100),
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetMissingItem(t *testing.T) {
	database := db.NewTestDB(t)

	item, err := GetItem(context.Background(), database, 12345)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Error("expected nil for missing item")
	}
}

func TestFindSimilarOrdering(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	create := func(desc string, v []float32) *model.Item {
		t.Helper()
		item, err := CreateItem(ctx, database, NewItem{
			AuthorID:      userID,
			CategoryID:    categoryID,
			Type:          model.ItemTypeFound,
			Description:   desc,
			ContactMethod: model.ContactLeftAt,
			Vector:        v,
		})
		if err != nil {
			t.Fatalf("CreateItem(%s): %v", desc, err)
		}
		return item
	}

	nearest := create("red leather wallet", blendVec(0, 1, 0.05))
	second := create("black leather wallet", blendVec(0, 1, 0.4))
	create("bicycle helmet", unitVec(1))

	matches, err := FindSimilar(ctx, database, unitVec(0), 2, SimilarFilter{})
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Item.ID != nearest.ID || matches[1].Item.ID != second.ID {
		t.Errorf("unexpected ranking: got [%d %d], want [%d %d]",
			matches[0].Item.ID, matches[1].Item.ID, nearest.ID, second.ID)
	}
	if matches[0].Distance > matches[1].Distance {
		t.Errorf("distances not non-decreasing: %v then %v", matches[0].Distance, matches[1].Distance)
	}
}

func TestFindSimilarLimitCoversStore(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	for i := 0; i < 3; i++ {
		_, err := CreateItem(ctx, database, NewItem{
			AuthorID:      userID,
			CategoryID:    categoryID,
			Type:          model.ItemTypeFound,
			ContactMethod: model.ContactLeftAt,
			Vector:        unitVec(i),
		})
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	// Limit greater than the store size returns all vectorized items.
	matches, err := FindSimilar(ctx, database, unitVec(0), 50, SimilarFilter{})
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("expected 3 matches, got %d", len(matches))
	}
}

func TestFindSimilarExcludesUnvectorized(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	_, err := CreateItem(ctx, database, NewItem{
		AuthorID:      userID,
		CategoryID:    categoryID,
		Type:          model.ItemTypeFound,
		ContactMethod: model.ContactLeftAt,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	matches, err := FindSimilar(ctx, database, unitVec(0), 5, SimilarFilter{})
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches for unvectorized store, got %d", len(matches))
	}
}

func TestFindSimilarEmptyStore(t *testing.T) {
	database := db.NewTestDB(t)

	matches, err := FindSimilar(context.Background(), database, unitVec(0), 5, SimilarFilter{})
	if err != nil {
		t.Fatalf("FindSimilar on empty store: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected empty result, got %d", len(matches))
	}
}

func TestFindSimilarRejectsBadLimit(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := FindSimilar(context.Background(), database, unitVec(0), 0, SimilarFilter{})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for limit 0, got %v", err)
	}
}

func TestFindSimilarTypeFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	for _, typ := range []string{model.ItemTypeFound, model.ItemTypeLost} {
		_, err := CreateItem(ctx, database, NewItem{
			AuthorID:      userID,
			CategoryID:    categoryID,
			Type:          typ,
			ContactMethod: model.ContactLeftAt,
			Vector:        unitVec(0),
		})
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	matches, err := FindSimilar(ctx, database, unitVec(0), 10, SimilarFilter{Type: model.ItemTypeFound})
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 found-type match, got %d", len(matches))
	}
	if matches[0].Item.Type != model.ItemTypeFound {
		t.Errorf("expected found item, got %q", matches[0].Item.Type)
	}
}

func TestArchiveItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	item, _ := CreateItem(ctx, database, NewItem{
		AuthorID:      userID,
		CategoryID:    categoryID,
		Type:          model.ItemTypeLost,
		ContactMethod: model.ContactContactMe,
	})

	ok, err := ArchiveItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ArchiveItem: %v", err)
	}
	if !ok {
		t.Fatal("expected first archive to report a transition")
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusArchived {
		t.Errorf("expected archived status, got %q", got.Status)
	}
	if got.ArchivedAt == nil {
		t.Error("expected archived_at to be set")
	}

	// Second archive is a no-op: ARCHIVED is terminal.
	ok, err = ArchiveItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ArchiveItem (second): %v", err)
	}
	if ok {
		t.Error("expected second archive to report no transition")
	}

	again, _ := GetItem(ctx, database, item.ID)
	if !again.ArchivedAt.Equal(*got.ArchivedAt) {
		t.Error("archived_at must not change on repeated archive")
	}

	// Missing item is also a no-op, not an error.
	ok, err = ArchiveItem(ctx, database, 99999)
	if err != nil {
		t.Fatalf("ArchiveItem (missing): %v", err)
	}
	if ok {
		t.Error("expected archive of missing item to report false")
	}
}

func TestListItemsByAuthorExcludingArchived(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	active, _ := CreateItem(ctx, database, NewItem{
		AuthorID: userID, CategoryID: categoryID,
		Type: model.ItemTypeFound, ContactMethod: model.ContactLeftAt,
	})
	archived, _ := CreateItem(ctx, database, NewItem{
		AuthorID: userID, CategoryID: categoryID,
		Type: model.ItemTypeFound, ContactMethod: model.ContactLeftAt,
	})
	ArchiveItem(ctx, database, archived.ID)

	items, err := ListItems(ctx, database, ItemFilter{
		AuthorID: userID,
		Status:   model.ItemStatusActive,
	})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != active.ID {
		t.Errorf("expected only the active item, got %d items", len(items))
	}
}

func TestUpdateItemPartial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	item, _ := CreateItem(ctx, database, NewItem{
		AuthorID:      userID,
		CategoryID:    categoryID,
		Type:          model.ItemTypeFound,
		Description:   "umbrella",
		ContactInfo:   "front desk",
		ContactMethod: model.ContactLeftAt,
	})

	desc := "blue umbrella"
	if err := UpdateItem(ctx, database, item.ID, model.ItemUpdate{Description: &desc}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Description != "blue umbrella" {
		t.Errorf("expected updated description, got %q", got.Description)
	}
	// Untouched fields must survive a partial update.
	if got.ContactInfo != "front desk" {
		t.Errorf("expected contact info untouched, got %q", got.ContactInfo)
	}

	if err := UpdateItem(ctx, database, 99999, model.ItemUpdate{Description: &desc}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestItemPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	item, _ := CreateItem(ctx, database, NewItem{
		AuthorID: userID, CategoryID: categoryID,
		Type: model.ItemTypeFound, ContactMethod: model.ContactLeftAt,
	})

	if err := SetItemPhoto(ctx, database, item.ID, []byte("fake jpeg"), "image/jpeg"); err != nil {
		t.Fatalf("SetItemPhoto: %v", err)
	}

	data, mime, err := GetItemPhoto(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemPhoto: %v", err)
	}
	if string(data) != "fake jpeg" || mime != "image/jpeg" {
		t.Errorf("unexpected photo round-trip: %q %q", data, mime)
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID, categoryID := seedBasics(t, database)

	item, _ := CreateItem(ctx, database, NewItem{
		AuthorID: userID, CategoryID: categoryID,
		Type: model.ItemTypeFound, ContactMethod: model.ContactLeftAt,
	})

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got != nil {
		t.Error("expected item to be gone after hard delete")
	}
}
