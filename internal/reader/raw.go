package reader

import "time"

// IcebergField is one field of the resolved Iceberg schema.
// Type is the Iceberg type string for primitives ("long", "decimal(10,2)")
// or the container discriminator ("struct", "list", "map") for nested types.
type IcebergField struct {
	ID       int
	Name     string
	Type     string
	Required bool
	Doc      string
}

// IcebergPartitionField is one field of the active partition spec.
type IcebergPartitionField struct {
	SourceID  int
	FieldID   int
	Name      string
	Transform string
}

// IcebergSnapshot is one entry of the snapshot chain.
type IcebergSnapshot struct {
	SnapshotID       int64
	ParentSnapshotID int64
	TimestampMS      int64
	Summary          map[string]string
}

// IcebergRaw is the raw record produced by the Iceberg reader.
type IcebergRaw struct {
	Location          string
	FormatVersion     int
	LastUpdatedMS     int64
	CurrentSnapshotID int64
	SchemaFields      []IcebergField
	PartitionFields   []IcebergPartitionField
	Snapshots         []IcebergSnapshot
	Properties        map[string]string
}

// DeltaField is one field of the Delta schemaString document.
// Type is the Delta primitive name ("long", "decimal(10,2)") or the
// container discriminator ("struct", "array", "map") for nested types.
type DeltaField struct {
	Name     string
	Type     string
	Nullable bool
}

// DeltaRaw is the raw record produced by the Delta reader.
type DeltaRaw struct {
	Location         string
	Version          int64
	SchemaFields     []DeltaField
	PartitionColumns []string
	Properties       map[string]string
	CreatedTime      int64
	HasProtocol      bool
	MinReaderVersion int
	MinWriterVersion int
}

// HudiField is one field of a recovered Avro schema. Type holds the
// decoded Avro type value: a string for primitives, a []any for unions,
// or a map[string]any for complex types.
type HudiField struct {
	Name string
	Type any
}

// HudiCommit is one entry of the Hudi timeline.
type HudiCommit struct {
	CommitTime   string
	CommitType   string
	Key          string
	LastModified time.Time
}

// HudiRaw is the raw record produced by the Hudi reader.
type HudiRaw struct {
	Location        string
	TableName       string
	TableType       string
	SchemaFields    []HudiField
	SchemaRecovered bool
	PartitionFields []string
	Properties      map[string]string
	Timeline        []HudiCommit
}

// ParquetField is one field of the probed file's schema. Type is the
// footer-level type name ("BOOLEAN", "INT64", "STRING", "DECIMAL(10,2)").
type ParquetField struct {
	Name     string
	Type     string
	Nullable bool
}

// ParquetRaw is the raw record produced by the Parquet reader.
type ParquetRaw struct {
	Location        string
	Fields          []ParquetField
	NumRows         int64
	NumRowGroups    int
	NumColumns      int
	PartitionFields []string
	FileCount       int
	TotalSizeBytes  int64
}
