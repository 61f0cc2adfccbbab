package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"figurevault/internal/models"
)

// CollectionStore handles ownership record database operations
type CollectionStore struct {
	db *DB
}

// NewCollectionStore creates a new collection store
func NewCollectionStore(db *DB) *CollectionStore {
	return &CollectionStore{db: db}
}

const ownershipColumns = `id, user_id, item_id, boxed, condition, value_paid, created_at, updated_at`

// Get retrieves the ownership record for a (user, item) pair
func (s *CollectionStore) Get(ctx context.Context, userID, itemID string) (*models.OwnershipRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM ownership_records WHERE user_id = $1 AND item_id = $2",
		ownershipColumns,
	)

	rec, err := scanOwnership(s.db.QueryRowContext(ctx, query, userID, itemID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ownership record: %w", err)
	}

	return rec, nil
}

// ListByUser returns every ownership record for a user
func (s *CollectionStore) ListByUser(ctx context.Context, userID string) ([]models.OwnershipRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM ownership_records WHERE user_id = $1 ORDER BY created_at DESC",
		ownershipColumns,
	)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownership records: %w", err)
	}
	defer rows.Close()

	records := make([]models.OwnershipRecord, 0)
	for rows.Next() {
		rec, err := scanOwnership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ownership record: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// AddAndUnwish creates an ownership record (condition=new, boxed=false) and
// removes any wishlist entry for the same item, both in one transaction so
// an item can never end up owned and wishlisted at once. Duplicate adds are
// idempotent: the existing record is returned unchanged.
func (s *CollectionStore) AddAndUnwish(ctx context.Context, userID, itemID string) (*models.OwnershipRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := fmt.Sprintf(`
		INSERT INTO ownership_records (user_id, item_id, boxed, condition)
		VALUES ($1, $2, false, 'new')
		ON CONFLICT (user_id, item_id) DO NOTHING
		RETURNING %s
	`, ownershipColumns)

	rec, err := scanOwnership(tx.QueryRowContext(ctx, insert, userID, itemID))
	if err == sql.ErrNoRows {
		// Already owned; fetch the existing record inside the transaction
		get := fmt.Sprintf(
			"SELECT %s FROM ownership_records WHERE user_id = $1 AND item_id = $2",
			ownershipColumns,
		)
		rec, err = scanOwnership(tx.QueryRowContext(ctx, get, userID, itemID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add ownership record: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM wishlist_records WHERE user_id = $1 AND item_id = $2",
		userID, itemID,
	); err != nil {
		return nil, fmt.Errorf("failed to remove wishlist entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit add: %w", err)
	}

	return rec, nil
}

// Delete removes the ownership record for a (user, item) pair. Returns
// false when no record existed (a no-op, not an error).
func (s *CollectionStore) Delete(ctx context.Context, userID, itemID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM ownership_records WHERE user_id = $1 AND item_id = $2",
		userID, itemID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete ownership record: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// OwnershipPatch carries the mutable ownership fields; nil means unchanged.
// ClearValuePaid distinguishes "clear the value" from "leave it alone".
type OwnershipPatch struct {
	Boxed          *bool
	Condition      *models.ItemCondition
	ValuePaid      *float64
	ClearValuePaid bool
}

// Update patches the ownership record for a (user, item) pair
func (s *CollectionStore) Update(ctx context.Context, userID, itemID string, patch OwnershipPatch) (*models.OwnershipRecord, error) {
	var sets []string
	var args []interface{}
	argIndex := 1

	if patch.Boxed != nil {
		sets = append(sets, fmt.Sprintf("boxed = $%d", argIndex))
		args = append(args, *patch.Boxed)
		argIndex++
	}
	if patch.Condition != nil {
		sets = append(sets, fmt.Sprintf("condition = $%d", argIndex))
		args = append(args, *patch.Condition)
		argIndex++
	}
	if patch.ClearValuePaid {
		sets = append(sets, "value_paid = NULL")
	} else if patch.ValuePaid != nil {
		sets = append(sets, fmt.Sprintf("value_paid = $%d", argIndex))
		args = append(args, *patch.ValuePaid)
		argIndex++
	}

	if len(sets) == 0 {
		return s.Get(ctx, userID, itemID)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE ownership_records
		SET %s
		WHERE user_id = $%d AND item_id = $%d
	`, strings.Join(sets, ", "), argIndex, argIndex+1)
	args = append(args, userID, itemID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update ownership record: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, nil
	}

	return s.Get(ctx, userID, itemID)
}

// Stats computes collection statistics for a user
func (s *CollectionStore) Stats(ctx context.Context, userID string) (*models.CollectionStats, error) {
	stats := &models.CollectionStats{
		ByCondition: make(map[models.ItemCondition]int),
	}

	var totalValue sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE boxed),
		       COALESCE(SUM(value_paid), 0)
		FROM ownership_records WHERE user_id = $1
	`, userID).Scan(&stats.TotalOwned, &stats.BoxedCount, &totalValue)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection totals: %w", err)
	}
	stats.TotalValuePaid = totalValue.Float64

	rows, err := s.db.QueryContext(ctx, `
		SELECT condition, COUNT(*) FROM ownership_records
		WHERE user_id = $1 GROUP BY condition
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get condition counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var condition models.ItemCondition
		var count int
		if err := rows.Scan(&condition, &count); err != nil {
			continue
		}
		stats.ByCondition[condition] = count
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM wishlist_records WHERE user_id = $1", userID,
	).Scan(&stats.WishlistCount); err != nil {
		return nil, fmt.Errorf("failed to get wishlist count: %w", err)
	}

	seriesRows, err := s.db.QueryContext(ctx, `
		SELECT c.series,
		       COUNT(*) FILTER (WHERE o.id IS NOT NULL),
		       COUNT(*)
		FROM catalog_items c
		LEFT JOIN ownership_records o ON o.item_id = c.id AND o.user_id = $1
		WHERE c.series IS NOT NULL
		GROUP BY c.series
		ORDER BY c.series
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get series completion: %w", err)
	}
	defer seriesRows.Close()

	for seriesRows.Next() {
		var sc models.SeriesCompletion
		if err := seriesRows.Scan(&sc.Series, &sc.Owned, &sc.Total); err != nil {
			continue
		}
		stats.Series = append(stats.Series, sc)
	}

	return stats, nil
}

func scanOwnership(row rowScanner) (*models.OwnershipRecord, error) {
	rec := &models.OwnershipRecord{}
	var valuePaid sql.NullFloat64

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.ItemID, &rec.Boxed, &rec.Condition,
		&valuePaid, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if valuePaid.Valid {
		rec.ValuePaid = &valuePaid.Float64
	}

	return rec, nil
}
