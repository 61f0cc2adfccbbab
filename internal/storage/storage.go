package storage

import (
	"context"
	"fmt"
	"sync"
)

// ObjectStore persists uploaded image bytes and returns a public URL
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// MemoryStore keeps objects in process memory. Development and test only.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an in-memory object store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload stores the bytes under objectName
func (s *MemoryStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[objectName] = buf

	return fmt.Sprintf("memory://%s", objectName), nil
}

// Delete removes the object if present
func (s *MemoryStore) Delete(ctx context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	return nil
}

// Get returns the stored bytes, for tests
func (s *MemoryStore) Get(objectName string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[objectName]
	return data, ok
}

// Len returns the number of stored objects, for tests
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
