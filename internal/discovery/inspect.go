package discovery

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/lakescan-io/lakescan/internal/catalog"
	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
)

// InspectReport summarizes a datastore location without persisting
// anything: detected format (best effort), file counts, total size, a
// per-extension histogram, and the newest modification time.
type InspectReport struct {
	URI            string         `json:"uri"`
	Bucket         string         `json:"bucket"`
	Prefix         string         `json:"prefix"`
	Format         string         `json:"format"`
	FileCount      int            `json:"file_count"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	FileTypes      map[string]int `json:"file_types"`
	LastModified   *time.Time     `json:"last_modified,omitempty"`
}

// Inspect lists up to 1000 keys under the URI and aggregates basic
// statistics. Unlike Discover, an unrecognized layout is not an error:
// the report carries format "unknown".
func (e *Engine) Inspect(ctx context.Context, objStore objectstore.ObjectStore, rawURI string) (*InspectReport, error) {
	uri, err := objectstore.ParseURI(rawURI)
	if err != nil {
		return nil, errors.NewInvalidMetadata("location", err.Error())
	}

	infos, err := objStore.List(ctx, uri.Prefix, 1000)
	if err != nil {
		return nil, errors.NewTransport(uri.Prefix, err)
	}

	report := &InspectReport{
		URI:       uri.String(),
		Bucket:    uri.Bucket,
		Prefix:    uri.Prefix,
		Format:    catalog.FormatUnknown.String(),
		FileTypes: map[string]int{},
	}

	for _, info := range infos {
		report.FileCount++
		report.TotalSizeBytes += info.Size
		report.FileTypes[extension(info.Key)]++
		if report.LastModified == nil || info.LastModified.After(*report.LastModified) {
			modified := info.LastModified
			report.LastModified = &modified
		}
	}

	format, err := e.detector.Detect(ctx, objStore, uri)
	if err == nil {
		report.Format = format.String()
	} else {
		var unrecognized *errors.ErrUnrecognizedFormat
		if !stderrors.As(err, &unrecognized) {
			return nil, err
		}
	}

	return report, nil
}

// extension returns the final dot suffix of a key's base name, or
// "unknown" for extension-less files.
func extension(key string) string {
	base := key
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[idx+1:]
	}
	return "unknown"
}

// SortedFileTypes returns the histogram as stable (extension, count)
// pairs for rendering.
func (r *InspectReport) SortedFileTypes() []FileTypeCount {
	out := make([]FileTypeCount, 0, len(r.FileTypes))
	for ext, count := range r.FileTypes {
		out = append(out, FileTypeCount{Extension: ext, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Extension < out[j].Extension
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// FileTypeCount is one row of the file-type histogram.
type FileTypeCount struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
}
