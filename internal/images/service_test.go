package images

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"figurevault/internal/models"
	"figurevault/internal/moderation"
	"figurevault/internal/storage"
	"figurevault/internal/testutil"
)

func newTestService(moderator Moderator, store *storage.MemoryStore, enabled bool) *Service {
	return NewService(moderator, store, enabled, time.Second, testutil.NullLogger())
}

func TestUpload_Approved(t *testing.T) {
	store := storage.NewMemoryStore()
	moderator := &moderation.MockModerator{
		Decision: &models.ModerationDecision{Status: models.ModerationApproved, Reason: "Approved"},
	}
	svc := newTestService(moderator, store, true)

	result, err := svc.Upload(context.Background(), "user-1", models.ImageEntityAvatar, []byte("image-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !strings.HasPrefix(result.URL, "memory://avatar/user-1/") {
		t.Errorf("URL = %q, want avatar/user-1/ key prefix", result.URL)
	}
	if !strings.HasSuffix(result.URL, ".png") {
		t.Errorf("URL = %q, want .png extension for image/png", result.URL)
	}
	if result.Decision == nil || result.Decision.Status != models.ModerationApproved {
		t.Error("result should carry the approval decision")
	}

	objectName := strings.TrimPrefix(result.URL, "memory://")
	data, ok := store.Get(objectName)
	if !ok || string(data) != "image-bytes" {
		t.Error("approved image bytes should be in the store")
	}
}

func TestUpload_RejectedNeverStored(t *testing.T) {
	store := storage.NewMemoryStore()
	moderator := &moderation.MockModerator{
		Decision: &models.ModerationDecision{
			Status:        models.ModerationRejected,
			Reason:        "Not allowed",
			MaxConfidence: 98.5,
		},
	}
	svc := newTestService(moderator, store, true)

	_, err := svc.Upload(context.Background(), "user-1", models.ImageEntityFigure, []byte("image-bytes"), "image/jpeg")
	if !errors.Is(err, ErrImageRejected) {
		t.Fatalf("Upload() error = %v, want ErrImageRejected", err)
	}
	assertStoreEmpty(t, store)
}

func TestUpload_ProviderErrorRefused(t *testing.T) {
	store := storage.NewMemoryStore()
	moderator := &moderation.MockModerator{Err: errors.New("rekognition unavailable")}
	svc := newTestService(moderator, store, true)

	_, err := svc.Upload(context.Background(), "user-1", models.ImageEntityAvatar, []byte("image-bytes"), "image/jpeg")
	if !errors.Is(err, ErrImageUnverified) {
		t.Fatalf("Upload() error = %v, want ErrImageUnverified", err)
	}
	assertStoreEmpty(t, store)
}

func TestUpload_EnabledWithoutModeratorRefused(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(nil, store, true)

	_, err := svc.Upload(context.Background(), "user-1", models.ImageEntityAvatar, []byte("image-bytes"), "image/jpeg")
	if !errors.Is(err, ErrImageUnverified) {
		t.Fatalf("Upload() error = %v, want ErrImageUnverified", err)
	}
	assertStoreEmpty(t, store)
}

func TestUpload_ModerationDisabledStores(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(nil, store, false)

	result, err := svc.Upload(context.Background(), "user-1", models.ImageEntityFigure, []byte("image-bytes"), "image/webp")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.Decision.Status != models.ModerationApproved {
		t.Errorf("decision = %q, want approved when moderation is disabled", result.Decision.Status)
	}
	if !strings.HasSuffix(result.URL, ".webp") {
		t.Errorf("URL = %q, want .webp extension", result.URL)
	}
}

func TestUpload_SizeLimits(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(nil, store, false)

	if _, err := svc.Upload(context.Background(), "user-1", models.ImageEntityAvatar, nil, "image/jpeg"); err == nil {
		t.Error("empty data should be refused")
	}

	huge := make([]byte, maxImageBytes+1)
	if _, err := svc.Upload(context.Background(), "user-1", models.ImageEntityAvatar, huge, "image/jpeg"); err == nil {
		t.Error("oversized data should be refused")
	}
	assertStoreEmpty(t, store)
}

func TestUpload_FreshKeyPerUpload(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(nil, store, false)

	first, err := svc.Upload(context.Background(), "user-1", models.ImageEntityAvatar, []byte("a"), "image/jpeg")
	if err != nil {
		t.Fatalf("first Upload() error = %v", err)
	}
	second, err := svc.Upload(context.Background(), "user-1", models.ImageEntityAvatar, []byte("b"), "image/jpeg")
	if err != nil {
		t.Fatalf("second Upload() error = %v", err)
	}
	if first.URL == second.URL {
		t.Error("repeated uploads must get distinct object keys")
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/jpeg", ".jpg"},
		{"application/octet-stream", ".jpg"},
		{"", ".jpg"},
	}

	for _, tt := range tests {
		if got := extensionFor(tt.contentType); got != tt.want {
			t.Errorf("extensionFor(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}

func assertStoreEmpty(t *testing.T, store *storage.MemoryStore) {
	t.Helper()
	if n := store.Len(); n != 0 {
		t.Errorf("store holds %d objects, want none", n)
	}
}
