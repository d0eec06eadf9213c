// Package storage provides persistence for the metadata catalog.
// This includes the MetadataStore for discovered-table CRUD operations.
package storage

import (
	"context"

	"github.com/lakescan-io/lakescan/internal/catalog"
)

// MetadataStore defines the interface for metadata catalog persistence.
// All implementations must be:
// - Thread-safe
// - Context-aware (respecting cancellation/timeout)
// - Explicit about errors (never swallow)
//
// The store exclusively owns persisted TableMetadata; values returned
// from Get are caller-owned copies.
type MetadataStore interface {
	// Save upserts by table_name and returns the row id.
	// The whole save is one transaction; readers never observe a torn
	// row. An existing table keeps its created_at and its format: a
	// save with a different format fails with ErrFormatMismatch and
	// leaves the row unchanged.
	Save(ctx context.Context, meta *catalog.TableMetadata) (string, error)

	// Get retrieves a table by name, columns ordered by column_order.
	// Returns ErrTableNotFound if the table does not exist.
	Get(ctx context.Context, name string) (*catalog.TableMetadata, error)

	// List returns table names sorted by name, optionally filtered by
	// format (FormatUnknown or "" means all).
	List(ctx context.Context, format catalog.TableFormat) ([]string, error)

	// Delete removes a table and cascades to its columns.
	// Returns ErrTableNotFound if the table does not exist.
	Delete(ctx context.Context, name string) error

	// Count returns the number of discovered tables.
	Count(ctx context.Context) (int64, error)

	// CheckConnectivity verifies the catalog backend is reachable.
	CheckConnectivity(ctx context.Context) error
}
