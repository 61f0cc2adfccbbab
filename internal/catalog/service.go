package catalog

import (
	"context"
	"encoding/json"
	"time"

	"figurevault/internal/cache"
	"figurevault/internal/logging"
	"figurevault/internal/models"
)

const (
	cacheKeyItems  = "catalog:items"
	cacheKeyFacets = "catalog:facets"
	cacheTTL       = 5 * time.Minute
)

// Store defines the catalog persistence operations the service needs
type Store interface {
	ListAll(ctx context.Context) ([]models.CatalogItem, error)
	Get(ctx context.Context, id string) (*models.CatalogItem, error)
	Create(ctx context.Context, params models.CreateCatalogItemParams) (*models.CatalogItem, error)
	Update(ctx context.Context, id string, params models.UpdateCatalogItemParams) (*models.CatalogItem, error)
	Delete(ctx context.Context, id string) error
	Facets(ctx context.Context) (*models.CatalogFacets, error)
}

// OwnershipLookup loads the viewing collector's per-item state
type OwnershipLookup interface {
	ListByUser(ctx context.Context, userID string) ([]models.OwnershipRecord, error)
}

// WishlistLookup loads the viewing collector's wishlist
type WishlistLookup interface {
	ListByUser(ctx context.Context, userID string) ([]models.WishlistRecord, error)
}

// Service serves catalog pages and facets, caching the full item list
type Service struct {
	store     Store
	ownership OwnershipLookup
	wishlist  WishlistLookup
	cache     cache.Cache
	logger    *logging.Logger
}

// NewService creates a new catalog service
func NewService(store Store, ownership OwnershipLookup, wishlist WishlistLookup, c cache.Cache, logger *logging.Logger) *Service {
	return &Service{
		store:     store,
		ownership: ownership,
		wishlist:  wishlist,
		cache:     c,
		logger:    logger,
	}
}

// GetPage computes the catalog view for a collector. userID may be empty for
// anonymous browsing, in which case every item shows as missing and unwished.
func (s *Service) GetPage(ctx context.Context, userID string, f models.FilterState) (*models.DisplayPage, error) {
	items, err := s.listItems(ctx)
	if err != nil {
		return nil, err
	}

	var owned map[string]*models.OwnershipRecord
	var wished map[string]bool

	if userID != "" {
		records, err := s.ownership.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		owned = make(map[string]*models.OwnershipRecord, len(records))
		for i := range records {
			owned[records[i].ItemID] = &records[i]
		}

		wishes, err := s.wishlist.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		wished = make(map[string]bool, len(wishes))
		for _, w := range wishes {
			wished[w.ItemID] = true
		}
	}

	page := BuildPage(items, owned, wished, f)
	return &page, nil
}

// GetItem returns a single catalog item, or nil if not found
func (s *Service) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	return s.store.Get(ctx, id)
}

// GetFacets returns the distinct filter values, cached
func (s *Service) GetFacets(ctx context.Context) (*models.CatalogFacets, error) {
	if data, found := s.cache.Get(cacheKeyFacets); found {
		if raw, ok := data.([]byte); ok {
			var facets models.CatalogFacets
			if err := json.Unmarshal(raw, &facets); err == nil {
				return &facets, nil
			}
		}
	}

	facets, err := s.store.Facets(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(facets); err == nil {
		s.cache.SetWithTTL(cacheKeyFacets, raw, cacheTTL)
	}

	return facets, nil
}

// CreateItem adds a catalog item and invalidates the cached list
func (s *Service) CreateItem(ctx context.Context, params models.CreateCatalogItemParams) (*models.CatalogItem, error) {
	if params.Name == "" {
		return nil, &ServiceError{Message: "name is required"}
	}

	item, err := s.store.Create(ctx, params)
	if err != nil {
		s.logger.Error("Failed to create catalog item", logging.WithField("error", err.Error()))
		return nil, err
	}

	s.invalidate()
	s.logger.Info("Created catalog item", logging.WithField("id", item.ID))
	return item, nil
}

// UpdateItem patches a catalog item and invalidates the cached list
func (s *Service) UpdateItem(ctx context.Context, id string, params models.UpdateCatalogItemParams) (*models.CatalogItem, error) {
	if id == "" {
		return nil, &ServiceError{Message: "item ID is required"}
	}

	item, err := s.store.Update(ctx, id, params)
	if err != nil {
		s.logger.Error("Failed to update catalog item", logging.WithFields(map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		}))
		return nil, err
	}

	s.invalidate()
	s.logger.Info("Updated catalog item", logging.WithField("id", id))
	return item, nil
}

// DeleteItem removes a catalog item and invalidates the cached list
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return &ServiceError{Message: "item ID is required"}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete catalog item", logging.WithFields(map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		}))
		return err
	}

	s.invalidate()
	s.logger.Info("Deleted catalog item", logging.WithField("id", id))
	return nil
}

// Invalidate drops the cached item list. The import job calls this after a
// full catalog replace.
func (s *Service) Invalidate() {
	s.invalidate()
}

func (s *Service) listItems(ctx context.Context) ([]models.CatalogItem, error) {
	if data, found := s.cache.Get(cacheKeyItems); found {
		if raw, ok := data.([]byte); ok {
			var items []models.CatalogItem
			if err := json.Unmarshal(raw, &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(items); err == nil {
		s.cache.SetWithTTL(cacheKeyItems, raw, cacheTTL)
	}

	return items, nil
}

func (s *Service) invalidate() {
	s.cache.Delete(cacheKeyItems)
	s.cache.Delete(cacheKeyFacets)
}

// ServiceError represents a validation error from the catalog service
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
