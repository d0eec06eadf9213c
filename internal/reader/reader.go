// Package reader defines the format reader contract and the raw metadata
// records that flow from the per-format readers into the normalizer.
//
// Raw records are transient: they exist only between a reader and the
// normalizer, are never persisted, and need no cross-format compatibility.
package reader

import (
	"context"

	"github.com/lakescan-io/lakescan/internal/objectstore"
)

// Reader parses one format's native on-disk metadata.
// Readers only read; they never write to the object store.
type Reader interface {
	// Read parses the table metadata under uri into a raw record.
	Read(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) (*Raw, error)
}

// Raw is the tagged union of per-format raw metadata records.
// Exactly one of the fields is non-nil.
type Raw struct {
	Iceberg *IcebergRaw
	Delta   *DeltaRaw
	Hudi    *HudiRaw
	Parquet *ParquetRaw
}
