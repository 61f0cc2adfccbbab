package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"figurevault/internal/models"
)

// CatalogStore handles catalog item database operations
type CatalogStore struct {
	db *DB
}

// NewCatalogStore creates a new catalog store
func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{db: db}
}

const catalogColumns = `id, name, series, type, character, image_url,
	   release_na, release_eu, release_jp, release_au, created_at, updated_at`

// ListAll returns every catalog item. The catalog is small enough to hold
// in memory; filtering, sorting and pagination happen in the view pipeline.
func (s *CatalogStore) ListAll(ctx context.Context) ([]models.CatalogItem, error) {
	query := fmt.Sprintf("SELECT %s FROM catalog_items", catalogColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	defer rows.Close()

	items := make([]models.CatalogItem, 0)
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// Get retrieves a catalog item by ID
func (s *CatalogStore) Get(ctx context.Context, id string) (*models.CatalogItem, error) {
	query := fmt.Sprintf("SELECT %s FROM catalog_items WHERE id = $1", catalogColumns)

	item, err := scanCatalogItem(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}

	return item, nil
}

// Create inserts a new catalog item (admin only)
func (s *CatalogStore) Create(ctx context.Context, params models.CreateCatalogItemParams) (*models.CatalogItem, error) {
	item := &models.CatalogItem{
		Name:      strings.TrimSpace(params.Name),
		Series:    strings.TrimSpace(params.Series),
		Type:      strings.TrimSpace(params.Type),
		Character: strings.TrimSpace(params.Character),
		ImageURL:  strings.TrimSpace(params.ImageURL),
		ReleaseNA: models.ParseDatePtr(params.ReleaseNA),
		ReleaseEU: models.ParseDatePtr(params.ReleaseEU),
		ReleaseJP: models.ParseDatePtr(params.ReleaseJP),
		ReleaseAU: models.ParseDatePtr(params.ReleaseAU),
	}

	query := `
		INSERT INTO catalog_items (name, series, type, character, image_url,
			release_na, release_eu, release_jp, release_au)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		item.Name, nullString(item.Series), nullString(item.Type), nullString(item.Character),
		nullString(item.ImageURL), item.ReleaseNA, item.ReleaseEU, item.ReleaseJP, item.ReleaseAU,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert catalog item: %w", err)
	}

	return item, nil
}

// Update patches a catalog item (admin only)
func (s *CatalogStore) Update(ctx context.Context, id string, params models.UpdateCatalogItemParams) (*models.CatalogItem, error) {
	var sets []string
	var args []interface{}
	argIndex := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if params.Name != nil {
		addSet("name", strings.TrimSpace(*params.Name))
	}
	if params.Series != nil {
		addSet("series", nullString(strings.TrimSpace(*params.Series)))
	}
	if params.Type != nil {
		addSet("type", nullString(strings.TrimSpace(*params.Type)))
	}
	if params.Character != nil {
		addSet("character", nullString(strings.TrimSpace(*params.Character)))
	}
	if params.ImageURL != nil {
		addSet("image_url", nullString(strings.TrimSpace(*params.ImageURL)))
	}
	if params.ReleaseNA != nil {
		addSet("release_na", models.ParseDatePtr(*params.ReleaseNA))
	}
	if params.ReleaseEU != nil {
		addSet("release_eu", models.ParseDatePtr(*params.ReleaseEU))
	}
	if params.ReleaseJP != nil {
		addSet("release_jp", models.ParseDatePtr(*params.ReleaseJP))
	}
	if params.ReleaseAU != nil {
		addSet("release_au", models.ParseDatePtr(*params.ReleaseAU))
	}

	if len(sets) == 0 {
		return s.Get(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE catalog_items SET %s WHERE id = $%d",
		strings.Join(sets, ", "), argIndex)
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update catalog item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, fmt.Errorf("catalog item not found: %s", id)
	}

	return s.Get(ctx, id)
}

// Delete removes a catalog item (admin only)
func (s *CatalogStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM catalog_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("catalog item not found: %s", id)
	}

	return nil
}

// Facets returns the distinct series/type/character values for filter dropdowns
func (s *CatalogStore) Facets(ctx context.Context) (*models.CatalogFacets, error) {
	facets := &models.CatalogFacets{
		Series:     []string{},
		Types:      []string{},
		Characters: []string{},
	}

	collect := func(column string, dest *[]string) error {
		query := fmt.Sprintf(
			"SELECT DISTINCT %s FROM catalog_items WHERE %s IS NOT NULL ORDER BY %s",
			column, column, column,
		)
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to load %s facet: %w", column, err)
		}
		defer rows.Close()

		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return fmt.Errorf("failed to scan %s facet: %w", column, err)
			}
			*dest = append(*dest, v)
		}
		return rows.Err()
	}

	if err := collect("series", &facets.Series); err != nil {
		return nil, err
	}
	if err := collect("type", &facets.Types); err != nil {
		return nil, err
	}
	if err := collect("character", &facets.Characters); err != nil {
		return nil, err
	}

	return facets, nil
}

// ReplaceAll atomically replaces the whole catalog with the given items,
// inserting in batches. Used by the import job (full-replace semantics).
func (s *CatalogStore) ReplaceAll(ctx context.Context, items []models.CatalogItem, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 200
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_items"); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		if err := insertCatalogBatch(ctx, tx, items[start:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	return nil
}

func insertCatalogBatch(ctx context.Context, tx *sql.Tx, batch []models.CatalogItem) error {
	if len(batch) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO catalog_items
		(name, series, type, character, image_url, release_na, release_eu, release_jp, release_au) VALUES `)

	args := make([]interface{}, 0, len(batch)*9)
	for i, item := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 9
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args,
			item.Name, nullString(item.Series), nullString(item.Type), nullString(item.Character),
			nullString(item.ImageURL), item.ReleaseNA, item.ReleaseEU, item.ReleaseJP, item.ReleaseAU,
		)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert catalog batch: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCatalogItem(row rowScanner) (*models.CatalogItem, error) {
	item := &models.CatalogItem{}
	var series, itemType, character, imageURL sql.NullString
	var releaseNA, releaseEU, releaseJP, releaseAU sql.NullTime

	err := row.Scan(
		&item.ID, &item.Name, &series, &itemType, &character, &imageURL,
		&releaseNA, &releaseEU, &releaseJP, &releaseAU,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Series = series.String
	item.Type = itemType.String
	item.Character = character.String
	item.ImageURL = imageURL.String

	if releaseNA.Valid {
		item.ReleaseNA = &releaseNA.Time
	}
	if releaseEU.Valid {
		item.ReleaseEU = &releaseEU.Time
	}
	if releaseJP.Valid {
		item.ReleaseJP = &releaseJP.Time
	}
	if releaseAU.Valid {
		item.ReleaseAU = &releaseAU.Time
	}

	return item, nil
}

// Helper function for nullable strings
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
