// Package normalize collapses the per-format raw metadata records into
// the canonical TableMetadata.
//
// Normalization is a pure transformation: deterministic for a given raw
// record, no object-store or catalog access. Recoverable issues (type
// degradation, unrecoverable Hudi schemas) become diagnostics on the
// result, never failures.
package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lakescan-io/lakescan/internal/catalog"
	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
	"github.com/lakescan-io/lakescan/internal/reader"
)

// reservedPrefixes namespace the format-specific state the normalizer
// writes into properties. Source properties must not use them.
var reservedPrefixes = []string{"iceberg.", "delta.", "hudi."}

// Normalizer maps raw metadata records to the canonical model.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize dispatches on the raw record's format tag.
func (n *Normalizer) Normalize(raw *reader.Raw, format catalog.TableFormat) (*catalog.TableMetadata, error) {
	switch {
	case format == catalog.FormatIceberg && raw.Iceberg != nil:
		return n.normalizeIceberg(raw.Iceberg)
	case format == catalog.FormatDelta && raw.Delta != nil:
		return n.normalizeDelta(raw.Delta)
	case format == catalog.FormatHudi && raw.Hudi != nil:
		return n.normalizeHudi(raw.Hudi)
	case format == catalog.FormatParquet && raw.Parquet != nil:
		return n.normalizeParquet(raw.Parquet)
	default:
		return nil, errors.NewInvalidMetadata("format", fmt.Sprintf("raw record does not carry %s metadata", format))
	}
}

func (n *Normalizer) normalizeIceberg(raw *reader.IcebergRaw) (*catalog.TableMetadata, error) {
	meta := &catalog.TableMetadata{
		TableName:          locationBaseName(raw.Location),
		Format:             catalog.FormatIceberg,
		Location:           raw.Location,
		SupportsTimeTravel: len(raw.Snapshots) >= 1,
	}

	var diags []catalog.Diagnostic
	for _, f := range raw.SchemaFields {
		target, ok := mapType(icebergTypes, f.Type)
		if !ok {
			diags = append(diags, degraded(f.Name, f.Type))
		}
		meta.Columns = append(meta.Columns, catalog.ColumnMetadata{
			Name:     f.Name,
			DataType: target,
			Nullable: !f.Required,
			Comment:  f.Doc,
		})
	}

	// Partition specs reference source columns by field id. An id
	// sorted slice with binary search is all the lookup needs.
	type idName struct {
		id   int
		name string
	}
	index := make([]idName, 0, len(raw.SchemaFields))
	for _, f := range raw.SchemaFields {
		index = append(index, idName{id: f.ID, name: f.Name})
	}
	sort.Slice(index, func(i, j int) bool { return index[i].id < index[j].id })

	for _, pf := range raw.PartitionFields {
		pos := sort.Search(len(index), func(i int) bool { return index[i].id >= pf.SourceID })
		if pos >= len(index) || index[pos].id != pf.SourceID {
			return nil, errors.NewDanglingPartitionSource(pf.SourceID)
		}
		meta.Partitions = append(meta.Partitions, index[pos].name)
	}

	props, err := mergeProperties(raw.Properties, map[string]string{
		"iceberg.format_version":      strconv.Itoa(raw.FormatVersion),
		"iceberg.current_snapshot_id": strconv.FormatInt(raw.CurrentSnapshotID, 10),
	})
	if err != nil {
		return nil, err
	}
	meta.Properties = props
	meta.Diagnostics = diags

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

func (n *Normalizer) normalizeDelta(raw *reader.DeltaRaw) (*catalog.TableMetadata, error) {
	meta := &catalog.TableMetadata{
		Format:             catalog.FormatDelta,
		Location:           raw.Location,
		SupportsTimeTravel: true,
		Partitions:         append([]string(nil), raw.PartitionColumns...),
	}

	if name := raw.Properties["table.name"]; name != "" {
		meta.TableName = name
	} else {
		meta.TableName = locationBaseName(raw.Location)
	}

	var diags []catalog.Diagnostic
	for _, f := range raw.SchemaFields {
		target, ok := mapType(deltaTypes, f.Type)
		if !ok {
			diags = append(diags, degraded(f.Name, f.Type))
		}
		meta.Columns = append(meta.Columns, catalog.ColumnMetadata{
			Name:     f.Name,
			DataType: target,
			Nullable: f.Nullable,
		})
	}

	reserved := map[string]string{
		"delta.version": strconv.FormatInt(raw.Version, 10),
	}
	if raw.HasProtocol {
		reserved["delta.minReaderVersion"] = strconv.Itoa(raw.MinReaderVersion)
		reserved["delta.minWriterVersion"] = strconv.Itoa(raw.MinWriterVersion)
	}
	props, err := mergeProperties(raw.Properties, reserved)
	if err != nil {
		return nil, err
	}
	meta.Properties = props
	meta.Diagnostics = diags

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

func (n *Normalizer) normalizeHudi(raw *reader.HudiRaw) (*catalog.TableMetadata, error) {
	meta := &catalog.TableMetadata{
		TableName:          raw.TableName,
		Format:             catalog.FormatHudi,
		Location:           raw.Location,
		SupportsTimeTravel: len(raw.Timeline) >= 2,
		Partitions:         append([]string(nil), raw.PartitionFields...),
	}
	if meta.TableName == "" {
		meta.TableName = locationBaseName(raw.Location)
	}

	var diags []catalog.Diagnostic
	for _, f := range raw.SchemaFields {
		sourceType, nullable := resolveAvroType(f.Type)
		target, ok := mapType(avroTypes, sourceType)
		if !ok {
			diags = append(diags, degraded(f.Name, sourceType))
		}
		meta.Columns = append(meta.Columns, catalog.ColumnMetadata{
			Name:     f.Name,
			DataType: target,
			Nullable: nullable,
		})
	}

	if len(meta.Columns) == 0 {
		// No commit embedded a parseable schema. Surface the table
		// with empty columns rather than failing; partition names
		// cannot resolve against an empty schema, so they are
		// dropped alongside the diagnostic.
		diags = append(diags, catalog.Diagnostic{
			Kind:    catalog.DiagSchemaUnavailable,
			Message: "no commit in the timeline embeds a parseable schema",
		})
		meta.Partitions = nil
	}

	props, err := mergeProperties(raw.Properties, map[string]string{
		"hudi.table.type":    raw.TableType,
		"hudi.commits.count": strconv.Itoa(len(raw.Timeline)),
	})
	if err != nil {
		return nil, err
	}
	meta.Properties = props
	meta.Diagnostics = diags

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

func (n *Normalizer) normalizeParquet(raw *reader.ParquetRaw) (*catalog.TableMetadata, error) {
	meta := &catalog.TableMetadata{
		TableName:          locationBaseName(raw.Location),
		Format:             catalog.FormatParquet,
		Location:           raw.Location,
		SupportsTimeTravel: false,
		Properties:         map[string]string{},
	}

	var diags []catalog.Diagnostic
	for _, f := range raw.Fields {
		target, ok := mapParquetType(f.Type)
		if !ok {
			diags = append(diags, degraded(f.Name, f.Type))
		}
		meta.Columns = append(meta.Columns, catalog.ColumnMetadata{
			Name:     f.Name,
			DataType: target,
			Nullable: f.Nullable,
		})
	}

	// Hive-style partition keys only survive when the probed file also
	// stores the column; a layout that keeps partition values solely in
	// the path cannot satisfy the partition-to-column invariant.
	names := make(map[string]struct{}, len(meta.Columns))
	for _, col := range meta.Columns {
		names[col.Name] = struct{}{}
	}
	for _, part := range raw.PartitionFields {
		if _, ok := names[part]; ok {
			meta.Partitions = append(meta.Partitions, part)
		} else {
			diags = append(diags, catalog.Diagnostic{
				Kind:    catalog.DiagTypeDegraded,
				Message: fmt.Sprintf("partition directory %q has no matching schema column; dropped", part),
			})
		}
	}

	numFiles := int64(raw.FileCount)
	sizeBytes := raw.TotalSizeBytes
	rowCount := raw.NumRows
	meta.NumFiles = &numFiles
	meta.SizeBytes = &sizeBytes
	meta.RowCount = &rowCount
	meta.Diagnostics = diags

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

// mergeProperties passes source properties through unchanged after
// checking they stay out of the reserved namespaces, then layers the
// normalizer's reserved keys on top.
func mergeProperties(source, reserved map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(source)+len(reserved))
	for k, v := range source {
		for _, prefix := range reservedPrefixes {
			if strings.HasPrefix(k, prefix) {
				return nil, errors.NewPropertyNamespaceConflict(k)
			}
		}
		out[k] = v
	}
	for k, v := range reserved {
		out[k] = v
	}
	return out, nil
}

// resolveAvroType unwraps a decoded Avro type value to a primitive name
// and nullability. Unions unwrap to the non-null member and are nullable
// iff they contain "null"; non-union types default to nullable.
func resolveAvroType(t any) (string, bool) {
	switch v := t.(type) {
	case string:
		return v, true
	case []any:
		nullable := false
		name := ""
		for _, member := range v {
			if s, ok := member.(string); ok && s == "null" {
				nullable = true
				continue
			}
			if name == "" {
				memberName, _ := resolveAvroType(member)
				name = memberName
			}
		}
		return name, nullable
	case map[string]any:
		if logical, ok := v["logicalType"].(string); ok {
			switch logical {
			case "date":
				return "date", true
			case "time-millis", "time-micros":
				return "time", true
			case "timestamp-millis", "timestamp-micros":
				return "timestamp", true
			case "decimal":
				precision, _ := v["precision"].(float64)
				scale, _ := v["scale"].(float64)
				return fmt.Sprintf("decimal(%d,%d)", int(precision), int(scale)), true
			}
		}
		if name, ok := v["type"].(string); ok {
			return name, true
		}
	}
	return "", true
}

// degraded builds the TypeDegraded diagnostic for one column occurrence.
func degraded(column, sourceType string) catalog.Diagnostic {
	return catalog.Diagnostic{
		Kind:    catalog.DiagTypeDegraded,
		Message: fmt.Sprintf("column %q: unknown source type %q mapped to VARCHAR", column, sourceType),
	}
}

// locationBaseName derives a table name from the final non-empty path
// segment of the location URI.
func locationBaseName(location string) string {
	if u, err := objectstore.ParseURI(location); err == nil {
		return u.BaseName()
	}
	trimmed := strings.TrimSuffix(location, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
