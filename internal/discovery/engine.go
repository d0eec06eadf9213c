// Package discovery orchestrates the metadata discovery pipeline:
// detect the table format, read its native metadata, normalize it into
// the canonical model, and persist it in the catalog.
//
// The engine performs no retries; retry policy belongs to the host. A
// failed stage aborts the pipeline at that stage and persists nothing.
package discovery

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lakescan-io/lakescan/internal/catalog"
	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/normalize"
	"github.com/lakescan-io/lakescan/internal/objectstore"
	"github.com/lakescan-io/lakescan/internal/observability"
	"github.com/lakescan-io/lakescan/internal/reader"
	"github.com/lakescan-io/lakescan/internal/reader/delta"
	"github.com/lakescan-io/lakescan/internal/reader/hudi"
	"github.com/lakescan-io/lakescan/internal/reader/iceberg"
	"github.com/lakescan-io/lakescan/internal/reader/parquet"
	"github.com/lakescan-io/lakescan/internal/storage"
)

// Engine wires detector, readers, normalizer and store.
// It holds no mutable state beyond the catalog handle; each Discover
// call takes an already-resolved object-store handle from the host.
type Engine struct {
	detector   *catalog.Detector
	readers    map[catalog.TableFormat]reader.Reader
	normalizer *normalize.Normalizer
	store      storage.MetadataStore
	logger     observability.DiscoveryLogger
}

// NewEngine creates an Engine over the given catalog store.
// A nil logger disables discovery logging.
func NewEngine(store storage.MetadataStore, logger observability.DiscoveryLogger) *Engine {
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	return &Engine{
		detector: catalog.NewDetector(),
		readers: map[catalog.TableFormat]reader.Reader{
			catalog.FormatIceberg: iceberg.NewReader(),
			catalog.FormatDelta:   delta.NewReader(),
			catalog.FormatHudi:    hudi.NewReader(),
			catalog.FormatParquet: parquet.NewReader(),
		},
		normalizer: normalize.NewNormalizer(),
		store:      store,
		logger:     logger,
	}
}

// Discover runs the full pipeline for one table URI and returns the
// persisted metadata. Recoverable warnings ride along on the result's
// Diagnostics; every other failure aborts with no partial state.
func (e *Engine) Discover(ctx context.Context, objStore objectstore.ObjectStore, rawURI string) (*catalog.TableMetadata, error) {
	start := time.Now()
	entry := observability.DiscoveryLogEntry{
		DiscoveryID: uuid.NewString(),
		URI:         rawURI,
	}

	meta, err := e.discover(ctx, objStore, rawURI, &entry)

	entry.ExecutionTime = time.Since(start)
	if err != nil {
		entry.Outcome = "error"
		entry.Error = err.Error()
	} else {
		entry.Outcome = "success"
	}
	// Logging failures must not mask the discovery result.
	_ = e.logger.LogDiscovery(ctx, entry)

	return meta, err
}

func (e *Engine) discover(ctx context.Context, objStore objectstore.ObjectStore, rawURI string, entry *observability.DiscoveryLogEntry) (*catalog.TableMetadata, error) {
	uri, err := objectstore.ParseURI(rawURI)
	if err != nil {
		return nil, errors.NewInvalidMetadata("location", err.Error())
	}

	format, err := e.detector.Detect(ctx, objStore, uri)
	if err != nil {
		return nil, err
	}
	entry.Format = format.String()

	formatReader, ok := e.readers[format]
	if !ok {
		return nil, errors.NewUnrecognizedFormat(uri.String())
	}
	raw, err := formatReader.Read(ctx, objStore, uri)
	if err != nil {
		return nil, err
	}

	meta, err := e.normalizer.Normalize(raw, format)
	if err != nil {
		return nil, err
	}
	entry.Table = meta.TableName
	entry.Columns = len(meta.Columns)
	entry.Partitions = len(meta.Partitions)
	entry.Diagnostics = len(meta.Diagnostics)

	if _, err := e.store.Save(ctx, meta); err != nil {
		return nil, err
	}

	return meta, nil
}

// Get retrieves a discovered table from the catalog.
func (e *Engine) Get(ctx context.Context, name string) (*catalog.TableMetadata, error) {
	return e.store.Get(ctx, name)
}

// List returns discovered table names, optionally filtered by format.
func (e *Engine) List(ctx context.Context, format catalog.TableFormat) ([]string, error) {
	return e.store.List(ctx, format)
}

// Delete removes a discovered table from the catalog.
func (e *Engine) Delete(ctx context.Context, name string) error {
	return e.store.Delete(ctx, name)
}

// Count returns the number of discovered tables.
func (e *Engine) Count(ctx context.Context) (int64, error) {
	return e.store.Count(ctx)
}
