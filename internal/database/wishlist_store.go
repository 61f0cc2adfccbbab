package database

import (
	"context"
	"fmt"

	"figurevault/internal/models"
)

// WishlistStore handles wishlist record database operations
type WishlistStore struct {
	db *DB
}

// NewWishlistStore creates a new wishlist store
func NewWishlistStore(db *DB) *WishlistStore {
	return &WishlistStore{db: db}
}

// ListByUser returns every wishlist record for a user
func (s *WishlistStore) ListByUser(ctx context.Context, userID string) ([]models.WishlistRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, item_id, created_at
		FROM wishlist_records
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist records: %w", err)
	}
	defer rows.Close()

	records := make([]models.WishlistRecord, 0)
	for rows.Next() {
		var rec models.WishlistRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ItemID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Toggle inserts a wishlist record if absent and deletes it if present.
// Returns true when the item is on the wishlist after the call.
func (s *WishlistStore) Toggle(ctx context.Context, userID, itemID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM wishlist_records WHERE user_id = $1 AND item_id = $2",
		userID, itemID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to toggle wishlist entry: %w", err)
	}

	deleted, _ := result.RowsAffected()
	wished := false

	if deleted == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO wishlist_records (user_id, item_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, item_id) DO NOTHING
		`, userID, itemID); err != nil {
			return false, fmt.Errorf("failed to insert wishlist entry: %w", err)
		}
		wished = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit wishlist toggle: %w", err)
	}

	return wished, nil
}

// Contains reports whether an item is on a user's wishlist
func (s *WishlistStore) Contains(ctx context.Context, userID, itemID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM wishlist_records WHERE user_id = $1 AND item_id = $2
		)
	`, userID, itemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist entry: %w", err)
	}
	return exists, nil
}
