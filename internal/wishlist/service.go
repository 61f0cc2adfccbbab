package wishlist

import (
	"context"

	"figurevault/internal/logging"
	"figurevault/internal/models"
)

// Store defines the wishlist persistence operations the service needs
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]models.WishlistRecord, error)
	Toggle(ctx context.Context, userID, itemID string) (bool, error)
	Contains(ctx context.Context, userID, itemID string) (bool, error)
}

// OwnershipCheck reports whether the user already owns an item
type OwnershipCheck interface {
	Get(ctx context.Context, userID, itemID string) (*models.OwnershipRecord, error)
}

// Service handles a collector's wishlist
type Service struct {
	store     Store
	ownership OwnershipCheck
	logger    *logging.Logger
}

// NewService creates a new wishlist service
func NewService(store Store, ownership OwnershipCheck, logger *logging.Logger) *Service {
	return &Service{
		store:     store,
		ownership: ownership,
		logger:    logger,
	}
}

// Toggle adds the item to the wishlist if absent, removes it if present, and
// returns whether the item is wishlisted afterwards. Owned items cannot be
// wishlisted.
func (s *Service) Toggle(ctx context.Context, userID, itemID string) (bool, error) {
	if itemID == "" {
		return false, &ServiceError{Message: "item ID is required"}
	}

	rec, err := s.ownership.Get(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	if rec != nil {
		return false, &ServiceError{Message: "owned items cannot be wishlisted"}
	}

	wished, err := s.store.Toggle(ctx, userID, itemID)
	if err != nil {
		s.logger.Error("Failed to toggle wishlist entry", logging.WithFields(map[string]interface{}{
			"item_id": itemID,
			"error":   err.Error(),
		}))
		return false, err
	}

	return wished, nil
}

// List returns every wishlist record for a user
func (s *Service) List(ctx context.Context, userID string) (*models.WishlistResponse, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.WishlistResponse{
		Records:    records,
		TotalCount: len(records),
	}, nil
}

// ServiceError represents a validation error from the wishlist service
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
