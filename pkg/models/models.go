// Package models provides shared data models for the lakescan public API.
// Hosts (HTTP gateways, UIs) render these instead of the internal types.
package models

import (
	"time"

	"github.com/lakescan-io/lakescan/internal/catalog"
)

// TableInfo is the external representation of a discovered table.
type TableInfo struct {
	Name               string            `json:"name" yaml:"name"`
	Format             string            `json:"format" yaml:"format"`
	Location           string            `json:"location" yaml:"location"`
	Columns            []Column          `json:"columns" yaml:"columns"`
	Partitions         []string          `json:"partitions" yaml:"partitions"`
	Properties         map[string]string `json:"properties" yaml:"properties"`
	SupportsTimeTravel bool              `json:"supports_time_travel" yaml:"supports_time_travel"`
	NumFiles           *int64            `json:"num_files,omitempty" yaml:"num_files,omitempty"`
	SizeBytes          *int64            `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	RowCount           *int64            `json:"row_count,omitempty" yaml:"row_count,omitempty"`
	CreatedAt          time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" yaml:"updated_at"`
	Warnings           []Warning         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Column is the external representation of a table column.
type Column struct {
	Name     string `json:"name" yaml:"name"`
	DataType string `json:"data_type" yaml:"data_type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Warning is a recoverable diagnostic attached to a discovery result.
type Warning struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// FormatInfo describes one supported table format for listings.
type FormatInfo struct {
	Format       string   `json:"format" yaml:"format"`
	Name         string   `json:"name" yaml:"name"`
	Lakehouse    bool     `json:"lakehouse" yaml:"lakehouse"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
}

// ErrorResponse is the external representation of a failure.
type ErrorResponse struct {
	Error      string `json:"error" yaml:"error"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Code       int    `json:"code" yaml:"code"`
}

// FromTableMetadata converts the canonical model into its external form.
func FromTableMetadata(meta *catalog.TableMetadata) TableInfo {
	info := TableInfo{
		Name:               meta.TableName,
		Format:             meta.Format.String(),
		Location:           meta.Location,
		Partitions:         meta.Partitions,
		Properties:         meta.Properties,
		SupportsTimeTravel: meta.SupportsTimeTravel,
		NumFiles:           meta.NumFiles,
		SizeBytes:          meta.SizeBytes,
		RowCount:           meta.RowCount,
		CreatedAt:          meta.CreatedAt,
		UpdatedAt:          meta.UpdatedAt,
	}
	if info.Partitions == nil {
		info.Partitions = []string{}
	}
	if info.Properties == nil {
		info.Properties = map[string]string{}
	}
	for _, col := range meta.Columns {
		info.Columns = append(info.Columns, Column{
			Name:     col.Name,
			DataType: col.DataType,
			Nullable: col.Nullable,
			Comment:  col.Comment,
		})
	}
	for _, diag := range meta.Diagnostics {
		info.Warnings = append(info.Warnings, Warning{
			Kind:    string(diag.Kind),
			Message: diag.Message,
		})
	}
	return info
}
