package objectstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory ObjectStore for tests.
// It is thread-safe and respects context cancellation.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	// Test helper fields for simulating failures.
	listErr error
	getErr  error
}

type memoryObject struct {
	data     []byte
	modified time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

// Put stores an object, overwriting any existing content.
func (m *MemoryStore) Put(key string, data []byte) {
	m.PutAt(key, data, time.Now().UTC())
}

// PutAt stores an object with an explicit modification time.
func (m *MemoryStore) PutAt(key string, data []byte, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: append([]byte(nil), data...), modified: modified}
}

// Remove deletes an object if present.
func (m *MemoryStore) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}

// Clear removes all objects.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = make(map[string]memoryObject)
}

// FailList makes subsequent List calls return err. Pass nil to reset.
func (m *MemoryStore) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// FailGet makes subsequent Get calls return err. Pass nil to reset.
func (m *MemoryStore) FailGet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// List returns up to maxKeys objects under prefix in key order.
func (m *MemoryStore) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStoreError(KindTransport, prefix, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.listErr != nil {
		return nil, classifyMemory(prefix, m.listErr)
	}
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var infos []ObjectInfo
	for _, key := range keys {
		obj := m.objects[key]
		infos = append(infos, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.modified,
		})
		if len(infos) >= maxKeys {
			break
		}
	}
	return infos, nil
}

// Get returns the content of the object at key.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStoreError(KindTransport, key, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, classifyMemory(key, m.getErr)
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, NewStoreError(KindNotFound, key, nil)
	}
	return append([]byte(nil), obj.data...), nil
}

// Head returns object metadata without content.
func (m *MemoryStore) Head(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, NewStoreError(KindTransport, key, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return ObjectInfo{}, NewStoreError(KindNotFound, key, nil)
	}
	return ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified}, nil
}

// classifyMemory preserves an injected StoreError kind, wrapping anything else.
func classifyMemory(key string, err error) error {
	if se, ok := err.(*StoreError); ok {
		return se
	}
	return NewStoreError(KindTransport, key, err)
}

// Ensure MemoryStore implements ObjectStore.
var _ ObjectStore = (*MemoryStore)(nil)
