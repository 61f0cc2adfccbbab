package database

import (
	"context"
	"testing"
)

func TestWishlistStore_Toggle(t *testing.T) {
	db, _ := newStoreTestDB(t)
	ctx := context.Background()

	store := NewWishlistStore(db)
	userID := createTestUser(t, db, "wish@test.local")
	itemID := createTestItem(t, db, "Mario")

	wished, err := store.Toggle(ctx, userID, itemID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !wished {
		t.Error("first toggle should wishlist the item")
	}

	contains, err := store.Contains(ctx, userID, itemID)
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if !contains {
		t.Error("Contains() = false after wishlisting")
	}

	wished, err = store.Toggle(ctx, userID, itemID)
	if err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if wished {
		t.Error("second toggle should remove the item")
	}

	contains, err = store.Contains(ctx, userID, itemID)
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if contains {
		t.Error("Contains() = true after removing")
	}
}

func TestWishlistStore_ListByUser(t *testing.T) {
	db, _ := newStoreTestDB(t)
	ctx := context.Background()

	store := NewWishlistStore(db)
	userID := createTestUser(t, db, "wishlist@test.local")
	otherID := createTestUser(t, db, "other@test.local")

	for _, name := range []string{"Mario", "Link"} {
		itemID := createTestItem(t, db, name)
		if _, err := store.Toggle(ctx, userID, itemID); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
	}

	records, err := store.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("user has %d wishlist records, want 2", len(records))
	}

	records, err = store.ListByUser(ctx, otherID)
	if err != nil {
		t.Fatalf("ListByUser(other) error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("other user has %d wishlist records, want 0", len(records))
	}
}

func TestWishlistStore_UniqueConstraint(t *testing.T) {
	db, _ := newStoreTestDB(t)
	ctx := context.Background()

	userID := createTestUser(t, db, "wishunique@test.local")
	itemID := createTestItem(t, db, "Pikachu")

	if _, err := db.ExecContext(ctx,
		"INSERT INTO wishlist_records (user_id, item_id) VALUES ($1, $2)",
		userID, itemID,
	); err != nil {
		t.Fatalf("first insert error = %v", err)
	}

	if _, err := db.ExecContext(ctx,
		"INSERT INTO wishlist_records (user_id, item_id) VALUES ($1, $2)",
		userID, itemID,
	); err == nil {
		t.Error("second insert for the same (user, item) should violate the unique constraint")
	}
}
