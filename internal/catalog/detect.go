package catalog

import (
	"context"
	"strings"

	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
)

// Detector classifies a table directory as one of the known formats by
// probing its layout. Sentinel directories outrank raw Parquet detection:
// Iceberg tables can sit under warehouses that also contain .parquet
// files, and the Delta and Hudi sentinels are unambiguous.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect runs the format probes in fixed priority order and returns the
// first match. A directory with no recognizable sentinel fails with
// ErrUnrecognizedFormat; object-store failures fail with ErrDetectionFailed.
func (d *Detector) Detect(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) (TableFormat, error) {
	location := uri.String()

	iceberg, err := d.probeIceberg(ctx, store, uri)
	if err != nil {
		return FormatUnknown, errors.NewDetectionFailed(location, err)
	}
	if iceberg {
		return FormatIceberg, nil
	}

	delta, err := d.probeExists(ctx, store, uri.Join("_delta_log/"))
	if err != nil {
		return FormatUnknown, errors.NewDetectionFailed(location, err)
	}
	if delta {
		return FormatDelta, nil
	}

	hudi, err := d.probeExists(ctx, store, uri.Join(".hoodie/"))
	if err != nil {
		return FormatUnknown, errors.NewDetectionFailed(location, err)
	}
	if hudi {
		return FormatHudi, nil
	}

	parquet, err := d.probeParquet(ctx, store, uri)
	if err != nil {
		return FormatUnknown, errors.NewDetectionFailed(location, err)
	}
	if parquet {
		return FormatParquet, nil
	}

	return FormatUnknown, errors.NewUnrecognizedFormat(location)
}

// probeIceberg checks for metadata/ holding a *.metadata.json file or a
// version-hint.text pointer.
func (d *Detector) probeIceberg(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) (bool, error) {
	prefix := uri.Join("metadata/")
	infos, err := store.List(ctx, prefix, 1000)
	if err != nil {
		return false, err
	}
	for _, info := range infos {
		if strings.HasSuffix(info.Key, ".metadata.json") || info.Key == prefix+"version-hint.text" {
			return true, nil
		}
	}
	return false, nil
}

// probeExists checks for at least one object under prefix.
func (d *Detector) probeExists(ctx context.Context, store objectstore.ObjectStore, prefix string) (bool, error) {
	infos, err := store.List(ctx, prefix, 1)
	if err != nil {
		return false, err
	}
	return len(infos) > 0, nil
}

// probeParquet checks for a .parquet object directly under the table
// prefix. Files in partition subdirectories do not count: a Hive layout
// with no top-level files is indistinguishable from an arbitrary
// directory tree without reading the files themselves.
func (d *Detector) probeParquet(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) (bool, error) {
	infos, err := store.List(ctx, uri.Prefix, 1000)
	if err != nil {
		return false, err
	}
	for _, info := range infos {
		rel := strings.TrimPrefix(info.Key, uri.Prefix)
		if strings.HasSuffix(rel, ".parquet") && !strings.Contains(rel, "/") {
			return true, nil
		}
	}
	return false, nil
}
