package images

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"figurevault/internal/logging"
	"figurevault/internal/models"
	"figurevault/internal/storage"
)

// ErrImageRejected is returned when moderation rejects the upload
var ErrImageRejected = errors.New("image rejected by moderation")

// ErrImageUnverified is returned when the moderation provider cannot be
// reached. Unscreened images are refused rather than stored.
var ErrImageUnverified = errors.New("image could not be verified")

// maxImageBytes caps uploads at 5 MiB
const maxImageBytes = 5 << 20

// Moderator defines the moderation abstraction used by image flows
type Moderator interface {
	ModerateImageBytes(ctx context.Context, imageBytes []byte) (*models.ModerationDecision, error)
}

// Service runs uploads through moderation and into object storage
type Service struct {
	moderator Moderator
	store     storage.ObjectStore
	enabled   bool
	timeout   time.Duration
	logger    *logging.Logger
}

// NewService creates a new image service. moderator may be nil when
// moderation is disabled.
func NewService(moderator Moderator, store storage.ObjectStore, enabled bool, timeout time.Duration, logger *logging.Logger) *Service {
	return &Service{
		moderator: moderator,
		store:     store,
		enabled:   enabled,
		timeout:   timeout,
		logger:    logger,
	}
}

// UploadResult describes a stored image
type UploadResult struct {
	URL      string                     `json:"url"`
	Decision *models.ModerationDecision `json:"decision,omitempty"`
}

// Upload moderates image bytes and, if approved, stores them under a fresh
// object key. Rejected and unverifiable images are never stored.
func (s *Service) Upload(ctx context.Context, userID string, entityType models.ImageEntityType, data []byte, contentType string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, errors.New("image data is required")
	}
	if len(data) > maxImageBytes {
		return nil, errors.New("image exceeds the 5 MiB limit")
	}

	decision := s.moderate(ctx, data)
	switch decision.Status {
	case models.ModerationRejected:
		s.logger.Warn("Rejected image upload", logging.WithFields(map[string]interface{}{
			"user_id":        userID,
			"entity_type":    string(entityType),
			"max_confidence": decision.MaxConfidence,
		}))
		return nil, ErrImageRejected
	case models.ModerationUnverified:
		s.logger.Warn("Could not verify image upload", logging.WithField("user_id", userID))
		return nil, ErrImageUnverified
	}

	objectName := fmt.Sprintf("%s/%s/%s%s", entityType, userID, uuid.NewString(), extensionFor(contentType))

	url, err := s.store.Upload(ctx, objectName, data, contentType)
	if err != nil {
		s.logger.Error("Failed to store image", logging.WithField("error", err.Error()))
		return nil, err
	}

	s.logger.Info("Stored image", logging.WithFields(map[string]interface{}{
		"object": objectName,
		"bytes":  len(data),
	}))

	return &UploadResult{URL: url, Decision: decision}, nil
}

func (s *Service) moderate(ctx context.Context, data []byte) *models.ModerationDecision {
	if !s.enabled {
		return &models.ModerationDecision{
			Status: models.ModerationApproved,
			Reason: "Moderation disabled",
		}
	}
	// Moderation is on but the provider never came up; refuse rather than
	// store unscreened images
	if s.moderator == nil {
		return &models.ModerationDecision{
			Status: models.ModerationUnverified,
			Reason: "Unable to verify right now",
		}
	}

	timeout := s.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	moderationCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	decision, err := s.moderator.ModerateImageBytes(moderationCtx, data)
	if err != nil || decision == nil {
		return &models.ModerationDecision{
			Status: models.ModerationUnverified,
			Reason: "Unable to verify right now",
		}
	}

	return decision
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
