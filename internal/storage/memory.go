package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// MemoryObject is an object held by MemoryStorage.
type MemoryObject struct {
	ContentType string
	Body        []byte
}

// MemoryStorage keeps objects in process. Download URLs use the memory:// scheme
// and are only meaningful to the process that produced them.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
}

var _ FileStorage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]MemoryObject)}
}

func (m *MemoryStorage) PutObject(_ context.Context, objectKey, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = MemoryObject{ContentType: contentType, Body: append([]byte(nil), body...)}
	return nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	m.mu.RLock()
	_, ok := m.objects[objectKey]
	m.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("memory:///%s?expires=%d", url.PathEscape(objectKey), int(expires.Seconds())), nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectKey]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, objectKey)
	return nil
}

// Object returns a stored object, for inspection.
func (m *MemoryStorage) Object(objectKey string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[objectKey]
	return o, ok
}
