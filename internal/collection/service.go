package collection

import (
	"context"

	"figurevault/internal/database"
	"figurevault/internal/logging"
	"figurevault/internal/models"
)

// Store defines the ownership persistence operations the service needs
type Store interface {
	Get(ctx context.Context, userID, itemID string) (*models.OwnershipRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.OwnershipRecord, error)
	AddAndUnwish(ctx context.Context, userID, itemID string) (*models.OwnershipRecord, error)
	Delete(ctx context.Context, userID, itemID string) (bool, error)
	Update(ctx context.Context, userID, itemID string, patch database.OwnershipPatch) (*models.OwnershipRecord, error)
	Stats(ctx context.Context, userID string) (*models.CollectionStats, error)
}

// Service handles a collector's ownership records
type Service struct {
	store  Store
	logger *logging.Logger
}

// NewService creates a new collection service
func NewService(store Store, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Add marks an item as owned. New records start boxed=false, condition=new.
// Any wishlist entry for the item is removed in the same transaction, so the
// item cannot be owned and wishlisted at once. Adding an already owned item
// is a no-op returning the existing record.
func (s *Service) Add(ctx context.Context, userID, itemID string) (*models.OwnershipRecord, error) {
	if itemID == "" {
		return nil, &ServiceError{Message: "item ID is required"}
	}

	rec, err := s.store.AddAndUnwish(ctx, userID, itemID)
	if err != nil {
		s.logger.Error("Failed to add item to collection", logging.WithFields(map[string]interface{}{
			"item_id": itemID,
			"error":   err.Error(),
		}))
		return nil, err
	}

	s.logger.Info("Added item to collection", logging.WithField("item_id", itemID))
	return rec, nil
}

// Remove deletes the ownership record along with its boxed, condition and
// value-paid metadata. Removing an item that is not owned is a no-op.
func (s *Service) Remove(ctx context.Context, userID, itemID string) error {
	if itemID == "" {
		return &ServiceError{Message: "item ID is required"}
	}

	removed, err := s.store.Delete(ctx, userID, itemID)
	if err != nil {
		s.logger.Error("Failed to remove item from collection", logging.WithFields(map[string]interface{}{
			"item_id": itemID,
			"error":   err.Error(),
		}))
		return err
	}

	if removed {
		s.logger.Info("Removed item from collection", logging.WithField("item_id", itemID))
	}
	return nil
}

// ToggleBoxed flips the boxed flag. Switching to boxed forces the condition
// to new; switching to unboxed leaves the condition alone.
func (s *Service) ToggleBoxed(ctx context.Context, userID, itemID string) (*models.OwnershipRecord, error) {
	rec, err := s.store.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &ServiceError{Message: "item is not in the collection"}
	}

	boxed := !rec.Boxed
	patch := database.OwnershipPatch{Boxed: &boxed}
	if boxed {
		condition := models.ConditionNew
		patch.Condition = &condition
	}

	updated, err := s.store.Update(ctx, userID, itemID, patch)
	if err != nil {
		s.logger.Error("Failed to toggle boxed state", logging.WithFields(map[string]interface{}{
			"item_id": itemID,
			"error":   err.Error(),
		}))
		return nil, err
	}
	if updated == nil {
		return nil, &ServiceError{Message: "item is not in the collection"}
	}

	return updated, nil
}

// SetCondition updates the condition of an owned item
func (s *Service) SetCondition(ctx context.Context, userID, itemID string, condition models.ItemCondition) (*models.OwnershipRecord, error) {
	if !models.IsValidCondition(condition) {
		return nil, &ServiceError{Message: "invalid condition: " + string(condition)}
	}

	rec, err := s.store.Update(ctx, userID, itemID, database.OwnershipPatch{Condition: &condition})
	if err != nil {
		s.logger.Error("Failed to set condition", logging.WithFields(map[string]interface{}{
			"item_id": itemID,
			"error":   err.Error(),
		}))
		return nil, err
	}
	if rec == nil {
		return nil, &ServiceError{Message: "item is not in the collection"}
	}

	return rec, nil
}

// SetValuePaid updates the value paid for an owned item from user-entered
// text. Empty text clears the value; comma works as a decimal separator.
func (s *Service) SetValuePaid(ctx context.Context, userID, itemID, text string) (*models.OwnershipRecord, error) {
	value, err := models.ParseValuePaid(text)
	if err != nil {
		return nil, &ServiceError{Message: err.Error()}
	}

	patch := database.OwnershipPatch{ValuePaid: value, ClearValuePaid: value == nil}

	rec, err := s.store.Update(ctx, userID, itemID, patch)
	if err != nil {
		s.logger.Error("Failed to set value paid", logging.WithFields(map[string]interface{}{
			"item_id": itemID,
			"error":   err.Error(),
		}))
		return nil, err
	}
	if rec == nil {
		return nil, &ServiceError{Message: "item is not in the collection"}
	}

	return rec, nil
}

// List returns every ownership record for a user
func (s *Service) List(ctx context.Context, userID string) (*models.CollectionResponse, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.CollectionResponse{
		Records:    records,
		TotalCount: len(records),
	}, nil
}

// Stats returns collection statistics for a user
func (s *Service) Stats(ctx context.Context, userID string) (*models.CollectionStats, error) {
	return s.store.Stats(ctx, userID)
}

// ServiceError represents a validation error from the collection service
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
