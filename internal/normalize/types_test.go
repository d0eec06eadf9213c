package normalize

import (
	"testing"

	"github.com/lakescan-io/lakescan/internal/catalog"
	"github.com/lakescan-io/lakescan/internal/reader"
)

// Every type the source vocabularies define must map to its specified
// target; unknown types must fall back to VARCHAR without failing.

func TestMapType_IcebergVocabulary(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"boolean", "BOOLEAN"},
		{"int", "INTEGER"},
		{"long", "BIGINT"},
		{"float", "FLOAT"},
		{"double", "DOUBLE"},
		{"decimal(10,2)", "DECIMAL(10,2)"},
		{"decimal(10, 2)", "DECIMAL(10,2)"},
		{"date", "DATE"},
		{"time", "TIME"},
		{"timestamp", "TIMESTAMP"},
		{"timestamptz", "TIMESTAMP WITH TIME ZONE"},
		{"string", "VARCHAR"},
		{"uuid", "UUID"},
		{"fixed[16]", "BINARY"},
		{"binary", "BINARY"},
	}
	for _, tt := range tests {
		got, ok := mapType(icebergTypes, tt.source)
		if !ok {
			t.Errorf("mapType(iceberg, %q) reported unknown", tt.source)
		}
		if got != tt.want {
			t.Errorf("mapType(iceberg, %q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestMapType_DeltaVocabulary(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"boolean", "BOOLEAN"},
		{"byte", "TINYINT"},
		{"short", "SMALLINT"},
		{"integer", "INTEGER"},
		{"long", "BIGINT"},
		{"float", "FLOAT"},
		{"double", "DOUBLE"},
		{"decimal", "DECIMAL"},
		{"decimal(18,4)", "DECIMAL(18,4)"},
		{"string", "VARCHAR"},
		{"binary", "BINARY"},
		{"date", "DATE"},
		{"timestamp", "TIMESTAMP"},
	}
	for _, tt := range tests {
		got, ok := mapType(deltaTypes, tt.source)
		if !ok {
			t.Errorf("mapType(delta, %q) reported unknown", tt.source)
		}
		if got != tt.want {
			t.Errorf("mapType(delta, %q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestMapType_AvroVocabulary(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"boolean", "BOOLEAN"},
		{"int", "INTEGER"},
		{"long", "BIGINT"},
		{"float", "FLOAT"},
		{"double", "DOUBLE"},
		{"string", "VARCHAR"},
		{"bytes", "BINARY"},
		{"date", "DATE"},
		{"timestamp", "TIMESTAMP"},
		{"decimal(12,3)", "DECIMAL(12,3)"},
	}
	for _, tt := range tests {
		got, ok := mapType(avroTypes, tt.source)
		if !ok {
			t.Errorf("mapType(avro, %q) reported unknown", tt.source)
		}
		if got != tt.want {
			t.Errorf("mapType(avro, %q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestMapParquetType(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"BOOLEAN", "BOOLEAN"},
		{"INT32", "INTEGER"},
		{"INT64", "BIGINT"},
		{"INT96", "TIMESTAMP"},
		{"FLOAT", "FLOAT"},
		{"DOUBLE", "DOUBLE"},
		{"BYTE_ARRAY", "BINARY"},
		{"FIXED_LEN_BYTE_ARRAY", "BINARY"},
		{"STRING", "VARCHAR"},
		{"DATE", "DATE"},
		{"TIME", "TIME"},
		{"TIMESTAMP", "TIMESTAMP"},
		{"DECIMAL(10,2)", "DECIMAL(10,2)"},
		{"UUID", "UUID"},
		{"INT(8)", "TINYINT"},
		{"INT(16)", "SMALLINT"},
		{"INT(32)", "INTEGER"},
		{"INT(64)", "BIGINT"},
		{"UINT(32)", "INTEGER"},
	}
	for _, tt := range tests {
		got, ok := mapParquetType(tt.source)
		if !ok {
			t.Errorf("mapParquetType(%q) reported unknown", tt.source)
		}
		if got != tt.want {
			t.Errorf("mapParquetType(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestMapType_UnknownDegradesToVarchar(t *testing.T) {
	for _, source := range []string{"struct", "list", "map", "geometry", ""} {
		got, ok := mapType(icebergTypes, source)
		if ok {
			t.Errorf("mapType(%q) should report unknown", source)
		}
		if got != "VARCHAR" {
			t.Errorf("mapType(%q) = %q, want VARCHAR", source, got)
		}
	}
}

// Each degraded occurrence emits exactly one diagnostic.
func TestNormalize_TypeDegradedDiagnosticPerOccurrence(t *testing.T) {
	raw := &reader.IcebergRaw{
		Location: "s3://warehouse/t/",
		SchemaFields: []reader.IcebergField{
			{ID: 1, Name: "a", Type: "struct"},
			{ID: 2, Name: "b", Type: "geometry"},
			{ID: 3, Name: "c", Type: "long"},
		},
		Properties: map[string]string{},
	}

	meta, err := NewNormalizer().Normalize(&reader.Raw{Iceberg: raw}, catalog.FormatIceberg)
	if err != nil {
		t.Fatalf("degraded types must not fail: %v", err)
	}

	degradedCount := 0
	for _, diag := range meta.Diagnostics {
		if diag.Kind == catalog.DiagTypeDegraded {
			degradedCount++
		}
	}
	if degradedCount != 2 {
		t.Errorf("degraded diagnostics = %d, want 2", degradedCount)
	}
	if meta.Columns[0].DataType != "VARCHAR" || meta.Columns[1].DataType != "VARCHAR" {
		t.Errorf("degraded columns = %+v", meta.Columns)
	}
	if meta.Columns[2].DataType != "BIGINT" {
		t.Errorf("known type mismapped: %+v", meta.Columns[2])
	}
}

func TestResolveAvroType(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		wantType string
		wantNull bool
	}{
		{"primitive", "long", "long", true},
		{"union with null", []any{"null", "string"}, "string", true},
		{"union without null", []any{"long"}, "long", false},
		{"logical date", map[string]any{"type": "int", "logicalType": "date"}, "date", true},
		{"logical timestamp", map[string]any{"type": "long", "logicalType": "timestamp-micros"}, "timestamp", true},
		{"logical decimal", map[string]any{"type": "bytes", "logicalType": "decimal", "precision": float64(12), "scale": float64(3)}, "decimal(12,3)", true},
		{"record", map[string]any{"type": "record", "fields": []any{}}, "record", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotNull := resolveAvroType(tt.input)
			if gotType != tt.wantType || gotNull != tt.wantNull {
				t.Errorf("resolveAvroType(%v) = (%q, %v), want (%q, %v)",
					tt.input, gotType, gotNull, tt.wantType, tt.wantNull)
			}
		})
	}
}
