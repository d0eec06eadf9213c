// Package parquet reads plain Parquet directory metadata from object
// storage.
//
// Only one file is opened: the first .parquet object directly under the
// prefix (or, when there is none, the first in key order) supplies the
// schema and footer statistics. Heterogeneous Parquet
// layouts under the same prefix are not reconciled. Partition columns
// are derived from Hive-style k=v directory segments in the listing.
package parquet

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	pq "github.com/parquet-go/parquet-go"

	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
	"github.com/lakescan-io/lakescan/internal/reader"
)

const formatName = "parquet"

// Reader parses a Parquet file footer.
type Reader struct{}

// NewReader creates a Parquet reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read probes the first .parquet object directly under the prefix, or the
// first one in key order when every file sits in a partition directory.
func (r *Reader) Read(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) (*reader.Raw, error) {
	infos, err := store.List(ctx, uri.Prefix, 1000)
	if err != nil {
		return nil, errors.NewTransport(uri.Prefix, err)
	}

	var files []objectstore.ObjectInfo
	var totalSize int64
	for _, info := range infos {
		if strings.HasSuffix(info.Key, ".parquet") {
			files = append(files, info)
			totalSize += info.Size
		}
	}
	if len(files) == 0 {
		return nil, errors.NewMissingArtifact(formatName, uri.Prefix+"*.parquet")
	}

	// Prefer a file directly under the prefix over one buried in a
	// partition directory; the listing is key-ordered either way.
	probe := files[0]
	for _, f := range files {
		if !strings.Contains(strings.TrimPrefix(f.Key, uri.Prefix), "/") {
			probe = f
			break
		}
	}

	data, err := store.Get(ctx, probe.Key)
	if err != nil {
		return nil, errors.NewTransport(probe.Key, err)
	}

	file, err := pq.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewCorruptMetadata(formatName, fmt.Sprintf("unreadable footer in %s", probe.Key), err)
	}

	raw := &reader.ParquetRaw{
		Location:        uri.String(),
		NumRows:         file.NumRows(),
		NumRowGroups:    len(file.RowGroups()),
		PartitionFields: hivePartitions(uri.Prefix, infos),
		FileCount:       len(files),
		TotalSizeBytes:  totalSize,
	}

	for _, field := range file.Schema().Fields() {
		raw.Fields = append(raw.Fields, reader.ParquetField{
			Name:     field.Name(),
			Type:     typeName(field),
			Nullable: field.Optional(),
		})
	}
	raw.NumColumns = len(raw.Fields)

	return &reader.Raw{Parquet: raw}, nil
}

// typeName renders a footer-level type name: the logical type when one
// is annotated, the physical kind otherwise. Nested groups collapse to
// GROUP and degrade during normalization.
func typeName(node pq.Node) string {
	if !node.Leaf() {
		return "GROUP"
	}
	t := node.Type()
	if lt := t.LogicalType(); lt != nil {
		switch {
		case lt.UTF8 != nil:
			return "STRING"
		case lt.Date != nil:
			return "DATE"
		case lt.Time != nil:
			return "TIME"
		case lt.Timestamp != nil:
			return "TIMESTAMP"
		case lt.Decimal != nil:
			return fmt.Sprintf("DECIMAL(%d,%d)", lt.Decimal.Precision, lt.Decimal.Scale)
		case lt.UUID != nil:
			return "UUID"
		case lt.Integer != nil:
			if lt.Integer.IsSigned {
				return fmt.Sprintf("INT(%d)", lt.Integer.BitWidth)
			}
			return fmt.Sprintf("UINT(%d)", lt.Integer.BitWidth)
		case lt.Json != nil:
			return "JSON"
		}
	}
	return t.Kind().String()
}

// hivePartitions extracts k=v directory segments from the listed keys,
// preserving first-seen order.
func hivePartitions(prefix string, infos []objectstore.ObjectInfo) []string {
	var partitions []string
	seen := make(map[string]struct{})
	for _, info := range infos {
		rel := strings.TrimPrefix(info.Key, prefix)
		segments := strings.Split(rel, "/")
		for _, segment := range segments[:max(len(segments)-1, 0)] {
			eq := strings.Index(segment, "=")
			if eq <= 0 {
				continue
			}
			name := segment[:eq]
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			partitions = append(partitions, name)
		}
	}
	return partitions
}

// Ensure Reader implements the reader contract.
var _ reader.Reader = (*Reader)(nil)
