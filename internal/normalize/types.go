package normalize

import (
	"fmt"
	"strings"
)

// Type mapping collapses each source vocabulary into one SQL-style
// target vocabulary. Parameterized types keep their argument list;
// unknown source types degrade to VARCHAR with a diagnostic instead of
// failing the pipeline.

// icebergTypes maps Iceberg primitive names to target types.
var icebergTypes = map[string]string{
	"boolean":     "BOOLEAN",
	"int":         "INTEGER",
	"long":        "BIGINT",
	"float":       "FLOAT",
	"double":      "DOUBLE",
	"decimal":     "DECIMAL",
	"date":        "DATE",
	"time":        "TIME",
	"timestamp":   "TIMESTAMP",
	"timestamptz": "TIMESTAMP WITH TIME ZONE",
	"string":      "VARCHAR",
	"uuid":        "UUID",
	"fixed":       "BINARY",
	"binary":      "BINARY",
}

// deltaTypes maps Delta primitive names to target types.
var deltaTypes = map[string]string{
	"boolean":   "BOOLEAN",
	"byte":      "TINYINT",
	"short":     "SMALLINT",
	"integer":   "INTEGER",
	"long":      "BIGINT",
	"float":     "FLOAT",
	"double":    "DOUBLE",
	"decimal":   "DECIMAL",
	"string":    "VARCHAR",
	"binary":    "BINARY",
	"date":      "DATE",
	"timestamp": "TIMESTAMP",
}

// avroTypes maps Avro primitive names to target types (Hudi schemas).
var avroTypes = map[string]string{
	"boolean":   "BOOLEAN",
	"int":       "INTEGER",
	"long":      "BIGINT",
	"float":     "FLOAT",
	"double":    "DOUBLE",
	"string":    "VARCHAR",
	"bytes":     "BINARY",
	"date":      "DATE",
	"time":      "TIME",
	"timestamp": "TIMESTAMP",
	"decimal":   "DECIMAL",
}

// parquetTypes maps footer-level type names to target types.
var parquetTypes = map[string]string{
	"BOOLEAN":              "BOOLEAN",
	"INT32":                "INTEGER",
	"INT64":                "BIGINT",
	"INT96":                "TIMESTAMP",
	"FLOAT":                "FLOAT",
	"DOUBLE":               "DOUBLE",
	"BYTE_ARRAY":           "BINARY",
	"FIXED_LEN_BYTE_ARRAY": "BINARY",
	"STRING":               "VARCHAR",
	"JSON":                 "VARCHAR",
	"DATE":                 "DATE",
	"TIME":                 "TIME",
	"TIMESTAMP":            "TIMESTAMP",
	"DECIMAL":              "DECIMAL",
	"UUID":                 "UUID",
	"INT(8)":               "TINYINT",
	"INT(16)":              "SMALLINT",
	"INT(32)":              "INTEGER",
	"INT(64)":              "BIGINT",
	"UINT(8)":              "INTEGER",
	"UINT(16)":             "INTEGER",
	"UINT(32)":             "INTEGER",
	"UINT(64)":             "BIGINT",
}

// mapType resolves a source type against a vocabulary table.
// "decimal(10,2)" splits into base "decimal" and args "(10,2)"; the args
// are re-attached to the mapped base. The second return is false when
// the source type is unknown and the VARCHAR fallback was used.
func mapType(vocabulary map[string]string, source string) (string, bool) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "VARCHAR", false
	}

	base := source
	args := ""
	if idx := strings.IndexAny(base, "(["); idx > 0 {
		base, args = base[:idx], base[idx:]
	}

	target, ok := vocabulary[base]
	if !ok {
		// Retry case-folded: footer names are upper-case, source
		// schemas lower-case.
		target, ok = vocabulary[strings.ToLower(base)]
	}
	if !ok {
		return "VARCHAR", false
	}

	if args != "" && target == "DECIMAL" {
		return target + normalizeArgs(args), true
	}
	return target, true
}

// mapParquetType resolves a footer-level type name, which is already
// upper-case and may carry DECIMAL/INT parameters.
func mapParquetType(source string) (string, bool) {
	source = strings.TrimSpace(source)
	if target, ok := parquetTypes[source]; ok {
		return target, true
	}

	base := source
	args := ""
	if idx := strings.Index(base, "("); idx > 0 {
		base, args = base[:idx], base[idx:]
	}
	target, ok := parquetTypes[base]
	if !ok {
		return "VARCHAR", false
	}
	if args != "" && target == "DECIMAL" {
		return target + normalizeArgs(args), true
	}
	return target, true
}

// normalizeArgs rewrites "(10, 2)" or "[16]" as "(10,2)" / "(16)".
func normalizeArgs(args string) string {
	args = strings.Trim(args, "([])")
	parts := strings.Split(args, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ","))
}
