// Package catalog defines the canonical, format-neutral table model.
//
// Downstream consumers (a query planner, a data-modification service, a UI)
// read this model without knowing which lakehouse format the underlying
// table uses. This package reads metadata, it does NOT read or write
// data files.
package catalog

import (
	"strings"
	"time"

	"github.com/lakescan-io/lakescan/internal/errors"
)

// TableFormat identifies the table format.
type TableFormat string

const (
	FormatIceberg TableFormat = "iceberg"
	FormatDelta   TableFormat = "delta"
	FormatHudi    TableFormat = "hudi"
	FormatParquet TableFormat = "parquet"
	FormatUnknown TableFormat = "unknown"
)

// String returns the format name.
func (f TableFormat) String() string {
	return string(f)
}

// IsLakehouse returns true if the format carries transactional metadata.
func (f TableFormat) IsLakehouse() bool {
	switch f {
	case FormatIceberg, FormatDelta, FormatHudi:
		return true
	default:
		return false
	}
}

// AllFormats returns the formats the discovery engine can produce.
func AllFormats() []TableFormat {
	return []TableFormat{FormatIceberg, FormatDelta, FormatHudi, FormatParquet}
}

// ParseFormat parses a string into a TableFormat.
// The empty string is returned as FormatUnknown without error.
func ParseFormat(s string) (TableFormat, error) {
	switch TableFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatIceberg:
		return FormatIceberg, nil
	case FormatDelta:
		return FormatDelta, nil
	case FormatHudi:
		return FormatHudi, nil
	case FormatParquet:
		return FormatParquet, nil
	case FormatUnknown, "":
		return FormatUnknown, nil
	default:
		return FormatUnknown, errors.NewInvalidMetadata("format", "unknown format "+s)
	}
}

// ColumnMetadata describes a table column.
type ColumnMetadata struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	Comment  string `json:"comment,omitempty"`
}

// TableMetadata is the canonical representation of a discovered table.
// It is the aggregate root persisted in the metadata catalog; the store
// exclusively owns persisted instances, and values returned from reads
// are caller-owned copies.
type TableMetadata struct {
	// ID is the catalog row id, assigned on first save.
	ID string `json:"id,omitempty"`

	// TableName is unique within a store.
	TableName string `json:"table_name"`

	// Format is immutable once the table is stored.
	Format TableFormat `json:"format"`

	// Location is the original object-store URI.
	Location string `json:"location"`

	// Columns in source schema order; position is significant.
	Columns []ColumnMetadata `json:"columns"`

	// Partitions lists partition column names, each resolving to a column.
	Partitions []string `json:"partitions"`

	// Properties holds source properties plus reserved-prefix
	// (iceberg., delta., hudi.) format state.
	Properties map[string]string `json:"properties"`

	// SupportsTimeTravel is derived from the format's version chain.
	SupportsTimeTravel bool `json:"supports_time_travel"`

	// Optional statistics; nil when the format does not expose them.
	NumFiles  *int64 `json:"num_files,omitempty"`
	SizeBytes *int64 `json:"size_bytes,omitempty"`
	RowCount  *int64 `json:"row_count,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Diagnostics carries recoverable warnings from the discovery
	// pipeline. Side-band only; never persisted.
	Diagnostics []Diagnostic `json:"-"`
}

// Validate checks the invariants every stored TableMetadata must satisfy.
func (t *TableMetadata) Validate() error {
	if t.TableName == "" {
		return errors.NewInvalidMetadata("table_name", "cannot be empty")
	}
	if t.Location == "" {
		return errors.NewInvalidMetadata("location", "cannot be empty")
	}
	switch t.Format {
	case FormatIceberg, FormatDelta, FormatHudi, FormatParquet:
	default:
		return errors.NewInvalidMetadata("format", "must be one of iceberg, delta, hudi, parquet")
	}

	seen := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		if col.Name == "" {
			return errors.NewInvalidMetadata("columns", "column name cannot be empty")
		}
		if _, dup := seen[col.Name]; dup {
			return errors.NewInvalidMetadata("columns", "duplicate column "+col.Name)
		}
		seen[col.Name] = struct{}{}
	}

	for _, part := range t.Partitions {
		if _, ok := seen[part]; !ok {
			return errors.NewUnknownPartitionColumn(part)
		}
	}

	return nil
}

// ColumnNames returns the column names in schema order.
func (t *TableMetadata) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Clone returns a deep copy so callers can mutate freely.
func (t *TableMetadata) Clone() *TableMetadata {
	out := *t
	out.Columns = append([]ColumnMetadata(nil), t.Columns...)
	out.Partitions = append([]string(nil), t.Partitions...)
	out.Diagnostics = append([]Diagnostic(nil), t.Diagnostics...)
	if t.Properties != nil {
		out.Properties = make(map[string]string, len(t.Properties))
		for k, v := range t.Properties {
			out.Properties[k] = v
		}
	}
	if t.NumFiles != nil {
		v := *t.NumFiles
		out.NumFiles = &v
	}
	if t.SizeBytes != nil {
		v := *t.SizeBytes
		out.SizeBytes = &v
	}
	if t.RowCount != nil {
		v := *t.RowCount
		out.RowCount = &v
	}
	return &out
}

// DiagnosticKind classifies recoverable discovery warnings.
type DiagnosticKind string

const (
	// DiagTypeDegraded marks a source type that fell back to VARCHAR.
	DiagTypeDegraded DiagnosticKind = "TYPE_DEGRADED"

	// DiagSchemaUnavailable marks a table whose schema could not be
	// recovered from any commit (Hudi).
	DiagSchemaUnavailable DiagnosticKind = "SCHEMA_UNAVAILABLE"
)

// Diagnostic is a recoverable warning surfaced alongside a discovery
// result. Diagnostics are never converted into failures.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}
