// Package errors provides explicit, human-readable error types for lakescan.
// All errors must include a Reason and Suggestion for actionable feedback.
package errors

import (
	"errors"
	"fmt"
)

// DiscoveryError is the base error type for all lakescan errors.
// Every error must provide a human-readable reason and suggestion.
type DiscoveryError struct {
	Code       ErrorCode
	Message    string
	Reason     string
	Suggestion string
	Cause      error
}

// ErrorCode represents the category of error for exit code mapping.
type ErrorCode int

const (
	CodeValidation ErrorCode = 1
	CodeDetection  ErrorCode = 2
	CodeRead       ErrorCode = 3
	CodeInternal   ErrorCode = 4
)

func (e *DiscoveryError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s\nReason: %s", msg, e.Reason)
	}
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s\nSuggestion: %s", msg, e.Suggestion)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s\nCaused by: %v", msg, e.Cause)
	}
	return msg
}

func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

// ErrUnrecognizedFormat is returned when no known format sentinel is found
// under the table prefix.
type ErrUnrecognizedFormat struct {
	DiscoveryError
	Location string
}

// NewUnrecognizedFormat creates a new ErrUnrecognizedFormat.
func NewUnrecognizedFormat(location string) *ErrUnrecognizedFormat {
	return &ErrUnrecognizedFormat{
		DiscoveryError: DiscoveryError{
			Code:       CodeDetection,
			Message:    fmt.Sprintf("unrecognized table format at %s", location),
			Reason:     "no Iceberg metadata, Delta log, Hudi timeline, or Parquet files found",
			Suggestion: "verify the URI points at a table root, not a file or a parent directory",
		},
		Location: location,
	}
}

// ErrDetectionFailed is returned when a detector probe fails against
// the object store.
type ErrDetectionFailed struct {
	DiscoveryError
	Location string
}

// NewDetectionFailed creates a new ErrDetectionFailed.
func NewDetectionFailed(location string, cause error) *ErrDetectionFailed {
	return &ErrDetectionFailed{
		DiscoveryError: DiscoveryError{
			Code:       CodeDetection,
			Message:    fmt.Sprintf("format detection failed for %s", location),
			Reason:     "the object store rejected a detection probe",
			Suggestion: "check credentials and that the bucket and prefix exist",
			Cause:      cause,
		},
		Location: location,
	}
}

// ErrCorruptMetadata is returned when on-disk metadata is syntactically
// invalid or structurally inconsistent.
type ErrCorruptMetadata struct {
	DiscoveryError
	Format string
	Detail string
}

// NewCorruptMetadata creates a new ErrCorruptMetadata.
func NewCorruptMetadata(format, detail string, cause error) *ErrCorruptMetadata {
	return &ErrCorruptMetadata{
		DiscoveryError: DiscoveryError{
			Code:       CodeRead,
			Message:    fmt.Sprintf("corrupt %s metadata", format),
			Reason:     detail,
			Suggestion: "the table may be mid-write or damaged; retry or repair with the writing engine",
			Cause:      cause,
		},
		Format: format,
		Detail: detail,
	}
}

// ErrMissingArtifact is returned when a file the format requires is absent.
type ErrMissingArtifact struct {
	DiscoveryError
	Format   string
	Artifact string
}

// NewMissingArtifact creates a new ErrMissingArtifact.
func NewMissingArtifact(format, artifact string) *ErrMissingArtifact {
	return &ErrMissingArtifact{
		DiscoveryError: DiscoveryError{
			Code:       CodeRead,
			Message:    fmt.Sprintf("missing %s artifact: %s", format, artifact),
			Reason:     "a file the format requires was not found in the object store",
			Suggestion: "verify the table was fully written and the prefix is correct",
		},
		Format:   format,
		Artifact: artifact,
	}
}

// ErrTransport wraps object-store failures encountered during reading.
type ErrTransport struct {
	DiscoveryError
	Key string
}

// NewTransport creates a new ErrTransport.
func NewTransport(key string, cause error) *ErrTransport {
	return &ErrTransport{
		DiscoveryError: DiscoveryError{
			Code:       CodeRead,
			Message:    fmt.Sprintf("object store request failed for %s", key),
			Reason:     "the object store returned an error",
			Suggestion: "check connectivity and credentials, then retry",
			Cause:      cause,
		},
		Key: key,
	}
}

// ErrUnknownPartitionColumn is returned when a partition column does not
// resolve to a schema column.
type ErrUnknownPartitionColumn struct {
	DiscoveryError
	Column string
}

// NewUnknownPartitionColumn creates a new ErrUnknownPartitionColumn.
func NewUnknownPartitionColumn(column string) *ErrUnknownPartitionColumn {
	return &ErrUnknownPartitionColumn{
		DiscoveryError: DiscoveryError{
			Code:       CodeRead,
			Message:    fmt.Sprintf("unknown partition column: %s", column),
			Reason:     "the partition references a column that is not in the table schema",
			Suggestion: "the source metadata is inconsistent; re-write the table schema",
		},
		Column: column,
	}
}

// ErrDanglingPartitionSource is returned when an Iceberg partition spec
// references a field id that is not in the resolved schema.
type ErrDanglingPartitionSource struct {
	DiscoveryError
	SourceID int
}

// NewDanglingPartitionSource creates a new ErrDanglingPartitionSource.
func NewDanglingPartitionSource(sourceID int) *ErrDanglingPartitionSource {
	return &ErrDanglingPartitionSource{
		DiscoveryError: DiscoveryError{
			Code:       CodeRead,
			Message:    fmt.Sprintf("dangling partition source-id: %d", sourceID),
			Reason:     "the partition spec references a field id absent from the current schema",
			Suggestion: "the Iceberg metadata file is inconsistent; check for a newer metadata version",
		},
		SourceID: sourceID,
	}
}

// ErrPropertyNamespaceConflict is returned when a source table property
// collides with a reserved lakescan property prefix.
type ErrPropertyNamespaceConflict struct {
	DiscoveryError
	Key string
}

// NewPropertyNamespaceConflict creates a new ErrPropertyNamespaceConflict.
func NewPropertyNamespaceConflict(key string) *ErrPropertyNamespaceConflict {
	return &ErrPropertyNamespaceConflict{
		DiscoveryError: DiscoveryError{
			Code:       CodeRead,
			Message:    fmt.Sprintf("property namespace conflict: %s", key),
			Reason:     "a source table property uses a prefix reserved for normalized metadata",
			Suggestion: "rename the source property; iceberg., delta. and hudi. prefixes are reserved",
		},
		Key: key,
	}
}

// ErrFormatMismatch is returned when re-discovery of an existing table
// yields a different format.
type ErrFormatMismatch struct {
	DiscoveryError
	Table    string
	Existing string
	Incoming string
}

// NewFormatMismatch creates a new ErrFormatMismatch.
func NewFormatMismatch(table, existing, incoming string) *ErrFormatMismatch {
	return &ErrFormatMismatch{
		DiscoveryError: DiscoveryError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("format conflict for table %s", table),
			Reason:     fmt.Sprintf("table is registered as %s but re-discovery found %s", existing, incoming),
			Suggestion: fmt.Sprintf("delete the table with 'lakescan table delete %s' if the format change is intentional", table),
		},
		Table:    table,
		Existing: existing,
		Incoming: incoming,
	}
}

// ErrTableNotFound is returned when a referenced table is not in the catalog.
type ErrTableNotFound struct {
	DiscoveryError
	Table string
}

// NewTableNotFound creates a new ErrTableNotFound.
func NewTableNotFound(table string) *ErrTableNotFound {
	return &ErrTableNotFound{
		DiscoveryError: DiscoveryError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("table not found: %s", table),
			Reason:     "no discovered table registered with this name",
			Suggestion: "list known tables with 'lakescan table list'",
		},
		Table: table,
	}
}

// ErrStorageBackend is returned on transport or constraint failures from
// the metadata catalog.
type ErrStorageBackend struct {
	DiscoveryError
	Operation string
}

// NewStorageBackend creates a new ErrStorageBackend.
func NewStorageBackend(operation string, cause error) *ErrStorageBackend {
	return &ErrStorageBackend{
		DiscoveryError: DiscoveryError{
			Code:       CodeInternal,
			Message:    fmt.Sprintf("catalog %s failed", operation),
			Reason:     "the metadata database returned an error",
			Suggestion: "check the database is reachable and migrations have run",
			Cause:      cause,
		},
		Operation: operation,
	}
}

// ErrInvalidMetadata is returned when a normalized record fails validation
// before it reaches the catalog.
type ErrInvalidMetadata struct {
	DiscoveryError
	Field string
}

// NewInvalidMetadata creates a new ErrInvalidMetadata.
func NewInvalidMetadata(field, reason string) *ErrInvalidMetadata {
	return &ErrInvalidMetadata{
		DiscoveryError: DiscoveryError{
			Code:       CodeValidation,
			Message:    "invalid table metadata",
			Reason:     fmt.Sprintf("field '%s': %s", field, reason),
			Suggestion: "this indicates a normalizer defect; report it with the source URI",
		},
		Field: field,
	}
}

// ErrMigrationFailed is returned when a catalog schema migration fails.
type ErrMigrationFailed struct {
	DiscoveryError
	Migration string
}

// NewMigrationFailed creates a new ErrMigrationFailed.
func NewMigrationFailed(migration string, cause error) *ErrMigrationFailed {
	return &ErrMigrationFailed{
		DiscoveryError: DiscoveryError{
			Code:       CodeInternal,
			Message:    fmt.Sprintf("migration failed: %s", migration),
			Reason:     cause.Error(),
			Suggestion: "check database connection and migration file syntax",
			Cause:      cause,
		},
		Migration: migration,
	}
}

// CodeOf extracts the ErrorCode from an error chain, defaulting to CodeInternal.
func CodeOf(err error) ErrorCode {
	var de *DiscoveryError
	if errors.As(err, &de) {
		return de.Code
	}
	// Typed errors embed DiscoveryError by value, so errors.As on the
	// pointer type above misses them; probe the concrete kinds.
	type coded interface{ errorCode() ErrorCode }
	var c coded
	if errors.As(err, &c) {
		return c.errorCode()
	}
	return CodeInternal
}

func (e *ErrUnrecognizedFormat) errorCode() ErrorCode        { return e.Code }
func (e *ErrDetectionFailed) errorCode() ErrorCode           { return e.Code }
func (e *ErrCorruptMetadata) errorCode() ErrorCode           { return e.Code }
func (e *ErrMissingArtifact) errorCode() ErrorCode           { return e.Code }
func (e *ErrTransport) errorCode() ErrorCode                 { return e.Code }
func (e *ErrUnknownPartitionColumn) errorCode() ErrorCode    { return e.Code }
func (e *ErrDanglingPartitionSource) errorCode() ErrorCode   { return e.Code }
func (e *ErrPropertyNamespaceConflict) errorCode() ErrorCode { return e.Code }
func (e *ErrFormatMismatch) errorCode() ErrorCode            { return e.Code }
func (e *ErrTableNotFound) errorCode() ErrorCode             { return e.Code }
func (e *ErrStorageBackend) errorCode() ErrorCode            { return e.Code }
func (e *ErrInvalidMetadata) errorCode() ErrorCode           { return e.Code }
func (e *ErrMigrationFailed) errorCode() ErrorCode           { return e.Code }
