package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakescan-io/lakescan/internal/catalog"
	"github.com/lakescan-io/lakescan/internal/errors"
)

// MockStore is an in-memory implementation of MetadataStore for testing.
// It is thread-safe, respects context cancellation, and enforces the
// same format-immutability and copy-on-read semantics as SQLStore.
type MockStore struct {
	mu     sync.RWMutex
	tables map[string]*catalog.TableMetadata

	// Test helper fields for simulating failures.
	connectivityFailure bool
	persistenceFailure  bool
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{tables: make(map[string]*catalog.TableMetadata)}
}

// SetConnectivityFailure makes CheckConnectivity fail.
func (m *MockStore) SetConnectivityFailure(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivityFailure = fail
}

// SetPersistenceFailure makes Save fail.
func (m *MockStore) SetPersistenceFailure(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistenceFailure = fail
}

// checkContext verifies the context is not cancelled or timed out.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Save upserts by table_name.
func (m *MockStore) Save(ctx context.Context, meta *catalog.TableMetadata) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}
	if err := meta.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.persistenceFailure {
		return "", errors.NewStorageBackend("save", errSimulated)
	}

	now := time.Now().UTC()
	stored := meta.Clone()
	stored.Diagnostics = nil
	stored.UpdatedAt = now

	if existing, ok := m.tables[meta.TableName]; ok {
		if existing.Format != meta.Format {
			return "", errors.NewFormatMismatch(meta.TableName, string(existing.Format), string(meta.Format))
		}
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.ID = uuid.NewString()
		stored.CreatedAt = now
	}

	m.tables[meta.TableName] = stored
	meta.ID = stored.ID
	meta.CreatedAt = stored.CreatedAt
	meta.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

// Get retrieves a table by name.
func (m *MockStore) Get(ctx context.Context, name string) (*catalog.TableMetadata, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	meta, ok := m.tables[name]
	if !ok {
		return nil, errors.NewTableNotFound(name)
	}
	return meta.Clone(), nil
}

// List returns table names sorted by name, optionally filtered by format.
func (m *MockStore) List(ctx context.Context, format catalog.TableFormat) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	names := []string{}
	for name, meta := range m.tables {
		if format != "" && format != catalog.FormatUnknown && meta.Format != format {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a table by name.
func (m *MockStore) Delete(ctx context.Context, name string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[name]; !ok {
		return errors.NewTableNotFound(name)
	}
	delete(m.tables, name)
	return nil
}

// Count returns the number of stored tables.
func (m *MockStore) Count(ctx context.Context) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.tables)), nil
}

// CheckConnectivity verifies the (simulated) backend is reachable.
func (m *MockStore) CheckConnectivity(ctx context.Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.connectivityFailure {
		return errors.NewStorageBackend("ping", errSimulated)
	}
	return nil
}

type simulatedError struct{}

func (simulatedError) Error() string { return "simulated failure" }

var errSimulated = simulatedError{}

// Ensure MockStore implements MetadataStore.
var _ MetadataStore = (*MockStore)(nil)
