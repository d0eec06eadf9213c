// Package observability provides structured logging for the discovery
// engine. Structured logging only: every discovery emits discovery_id,
// uri, detected format, table name, column count, execution time, and
// error (if any). Silent failures are forbidden.
package observability

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// DiscoveryLogEntry contains all required fields for discovery logging.
type DiscoveryLogEntry struct {
	// DiscoveryID is the unique identifier for this discovery call.
	// Required: every discovery must have an ID.
	DiscoveryID string

	// URI is the object-store location that was discovered.
	// Required: every discovery is attributed to a location.
	URI string

	// Format is the detected table format.
	// May be empty if the call failed before detection completed.
	Format string

	// Table is the normalized table name.
	// May be empty if the call failed before normalization.
	Table string

	// Columns is the number of normalized columns.
	Columns int

	// Partitions is the number of partition columns.
	Partitions int

	// Diagnostics is the number of recoverable warnings attached to
	// the result.
	Diagnostics int

	// ExecutionTime is how long the discovery took.
	// Must be non-negative.
	ExecutionTime time.Duration

	// Outcome is the result status: "success", "error".
	Outcome string

	// Error contains the error message if the discovery failed.
	// Empty string for successful calls.
	Error string
}

// Validate checks that all required fields are present.
func (e *DiscoveryLogEntry) Validate() error {
	if e.DiscoveryID == "" {
		return fmt.Errorf("observability: discovery_id is required")
	}
	if e.URI == "" {
		return fmt.Errorf("observability: uri is required")
	}
	if e.ExecutionTime < 0 {
		return fmt.Errorf("observability: execution_time cannot be negative")
	}
	return nil
}

// DiscoveryLogger is the interface for discovery logging.
type DiscoveryLogger interface {
	// LogDiscovery logs one discovery event.
	// Returns an error if logging fails or the entry is invalid.
	LogDiscovery(ctx context.Context, entry DiscoveryLogEntry) error

	// GetSummary returns aggregated discovery statistics.
	GetSummary() *Summary
}

// Summary represents aggregated discovery statistics.
type Summary struct {
	SuccessCount int               `json:"success_count"`
	ErrorCount   int               `json:"error_count"`
	ByFormat     []FormatStat      `json:"by_format"`
	TopErrors    []ErrorReasonStat `json:"top_errors"`
}

// FormatStat counts discoveries per detected format.
type FormatStat struct {
	Format string `json:"format"`
	Count  int    `json:"count"`
}

// ErrorReasonStat counts failures per error message.
type ErrorReasonStat struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// jsonLogOutput is the structured format for JSON logs.
type jsonLogOutput struct {
	Timestamp       string `json:"timestamp"`
	Level           string `json:"level"`
	DiscoveryID     string `json:"discovery_id"`
	URI             string `json:"uri"`
	Format          string `json:"format,omitempty"`
	Table           string `json:"table,omitempty"`
	Columns         int    `json:"columns"`
	Partitions      int    `json:"partitions"`
	Diagnostics     int    `json:"diagnostics,omitempty"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Outcome         string `json:"outcome,omitempty"`
	Error           string `json:"error,omitempty"`
}

// JSONLogger implements DiscoveryLogger with JSON line output.
type JSONLogger struct {
	writer  io.Writer
	entries []DiscoveryLogEntry // Track entries for the summary
	mu      sync.RWMutex
}

// NewJSONLogger creates a new JSON logger writing to the given writer.
func NewJSONLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{
		writer:  w,
		entries: make([]DiscoveryLogEntry, 0),
	}
}

// LogDiscovery logs a discovery event as one JSON line.
func (l *JSONLogger) LogDiscovery(ctx context.Context, entry DiscoveryLogEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("observability: context error: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	level := "info"
	if entry.Error != "" {
		level = "error"
	}

	output := jsonLogOutput{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Level:           level,
		DiscoveryID:     entry.DiscoveryID,
		URI:             entry.URI,
		Format:          entry.Format,
		Table:           entry.Table,
		Columns:         entry.Columns,
		Partitions:      entry.Partitions,
		Diagnostics:     entry.Diagnostics,
		ExecutionTimeMs: entry.ExecutionTime.Milliseconds(),
		Outcome:         entry.Outcome,
		Error:           entry.Error,
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("observability: failed to marshal log: %w", err)
	}
	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("observability: failed to write log: %w", err)
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	return nil
}

// GetSummary returns aggregated discovery statistics.
func (l *JSONLogger) GetSummary() *Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := &Summary{
		ByFormat:  []FormatStat{},
		TopErrors: []ErrorReasonStat{},
	}

	formatCounts := make(map[string]int)
	errorCounts := make(map[string]int)

	for _, entry := range l.entries {
		if entry.Error == "" {
			summary.SuccessCount++
		} else {
			summary.ErrorCount++
			errorCounts[entry.Error]++
		}
		if entry.Format != "" {
			formatCounts[entry.Format]++
		}
	}

	for format, count := range formatCounts {
		summary.ByFormat = append(summary.ByFormat, FormatStat{Format: format, Count: count})
	}
	sort.Slice(summary.ByFormat, func(i, j int) bool {
		return summary.ByFormat[i].Count > summary.ByFormat[j].Count
	})

	for reason, count := range errorCounts {
		summary.TopErrors = append(summary.TopErrors, ErrorReasonStat{Reason: reason, Count: count})
	}
	sort.Slice(summary.TopErrors, func(i, j int) bool {
		return summary.TopErrors[i].Count > summary.TopErrors[j].Count
	})
	if len(summary.TopErrors) > 5 {
		summary.TopErrors = summary.TopErrors[:5]
	}

	return summary
}

// NoopLogger is a logger that discards all logs.
// Useful for testing or when logging is disabled.
type NoopLogger struct{}

// NewNoopLogger creates a new no-op logger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

// LogDiscovery does nothing and always succeeds.
func (l *NoopLogger) LogDiscovery(ctx context.Context, entry DiscoveryLogEntry) error {
	return nil
}

// GetSummary returns an empty summary for the no-op logger.
func (l *NoopLogger) GetSummary() *Summary {
	return &Summary{
		ByFormat:  []FormatStat{},
		TopErrors: []ErrorReasonStat{},
	}
}
