// Package iceberg reads Apache Iceberg table metadata from object storage.
//
// Iceberg stores a chain of JSON metadata files under metadata/. The
// current file is located through version-hint.text when present, falling
// back to the lexically greatest *.metadata.json (filenames encode
// monotonic versions). Discovery is purely metadata-file-driven; catalogs
// (REST, Glue) are a host concern, not a fallback inside this reader.
package iceberg

import (
	"context"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
	"github.com/lakescan-io/lakescan/internal/reader"
)

const formatName = "iceberg"

// Reader parses Iceberg metadata files.
type Reader struct{}

// NewReader creates an Iceberg reader.
func NewReader() *Reader {
	return &Reader{}
}

// metadataFile mirrors the subset of the Iceberg table-metadata JSON the
// discovery core consumes. v1 uses the top-level schema/partition-spec;
// v2 uses the schemas/partition-specs lists with current/default ids.
type metadataFile struct {
	FormatVersion     int               `json:"format-version"`
	Location          string            `json:"location"`
	LastUpdatedMS     int64             `json:"last-updated-ms"`
	CurrentSnapshotID int64             `json:"current-snapshot-id"`
	CurrentSchemaID   int               `json:"current-schema-id"`
	Schemas           []schemaDoc       `json:"schemas"`
	Schema            *schemaDoc        `json:"schema"`
	DefaultSpecID     int               `json:"default-spec-id"`
	PartitionSpecs    []partitionSpec   `json:"partition-specs"`
	PartitionSpec     []partitionField  `json:"partition-spec"`
	Snapshots         []snapshotDoc     `json:"snapshots"`
	Properties        map[string]string `json:"properties"`
}

type schemaDoc struct {
	SchemaID int        `json:"schema-id"`
	Fields   []fieldDoc `json:"fields"`
}

type fieldDoc struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     any    `json:"type"`
	Required bool   `json:"required"`
	Doc      string `json:"doc"`
}

type partitionSpec struct {
	SpecID int              `json:"spec-id"`
	Fields []partitionField `json:"fields"`
}

type partitionField struct {
	SourceID  int    `json:"source-id"`
	FieldID   int    `json:"field-id"`
	Name      string `json:"name"`
	Transform string `json:"transform"`
}

type snapshotDoc struct {
	SnapshotID       int64             `json:"snapshot-id"`
	ParentSnapshotID int64             `json:"parent-snapshot-id"`
	TimestampMS      int64             `json:"timestamp-ms"`
	Summary          map[string]string `json:"summary"`
}

// Read locates and parses the current metadata file.
func (r *Reader) Read(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) (*reader.Raw, error) {
	data, key, err := r.currentMetadataFile(ctx, store, uri)
	if err != nil {
		return nil, err
	}

	var doc metadataFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewCorruptMetadata(formatName, fmt.Sprintf("invalid JSON in %s", key), err)
	}

	schema, err := currentSchema(&doc)
	if err != nil {
		return nil, err
	}

	raw := &reader.IcebergRaw{
		Location:          uri.String(),
		FormatVersion:     doc.FormatVersion,
		LastUpdatedMS:     doc.LastUpdatedMS,
		CurrentSnapshotID: doc.CurrentSnapshotID,
		Properties:        doc.Properties,
	}
	if raw.Properties == nil {
		raw.Properties = map[string]string{}
	}

	for _, f := range schema.Fields {
		raw.SchemaFields = append(raw.SchemaFields, reader.IcebergField{
			ID:       f.ID,
			Name:     f.Name,
			Type:     typeName(f.Type),
			Required: f.Required,
			Doc:      f.Doc,
		})
	}

	for _, pf := range currentSpecFields(&doc) {
		raw.PartitionFields = append(raw.PartitionFields, reader.IcebergPartitionField{
			SourceID:  pf.SourceID,
			FieldID:   pf.FieldID,
			Name:      pf.Name,
			Transform: pf.Transform,
		})
	}

	for _, s := range doc.Snapshots {
		raw.Snapshots = append(raw.Snapshots, reader.IcebergSnapshot{
			SnapshotID:       s.SnapshotID,
			ParentSnapshotID: s.ParentSnapshotID,
			TimestampMS:      s.TimestampMS,
			Summary:          s.Summary,
		})
	}

	return &reader.Raw{Iceberg: raw}, nil
}

// currentMetadataFile returns the bytes and key of the active metadata
// file. The version hint wins when it resolves; otherwise the listing
// fallback picks the lexically greatest *.metadata.json, deferring to a
// strictly newer last_modified when the two disagree.
func (r *Reader) currentMetadataFile(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) ([]byte, string, error) {
	hintKey := uri.Join("metadata/version-hint.text")
	hint, err := store.Get(ctx, hintKey)
	if err != nil && !objectstore.IsNotFound(err) {
		return nil, "", errors.NewTransport(hintKey, err)
	}
	if err == nil {
		name := strings.TrimSpace(string(hint))
		if name != "" {
			if !strings.HasSuffix(name, ".metadata.json") {
				// Plain-number hints name the version, not the file.
				name = fmt.Sprintf("v%s.metadata.json", name)
			}
			key := uri.Join("metadata/" + name)
			data, err := store.Get(ctx, key)
			if err == nil {
				return data, key, nil
			}
			if !objectstore.IsNotFound(err) {
				return nil, "", errors.NewTransport(key, err)
			}
		}
	}

	prefix := uri.Join("metadata/")
	infos, err := store.List(ctx, prefix, 1000)
	if err != nil {
		return nil, "", errors.NewTransport(prefix, err)
	}

	var candidates []objectstore.ObjectInfo
	for _, info := range infos {
		if strings.HasSuffix(info.Key, ".metadata.json") {
			candidates = append(candidates, info)
		}
	}
	if len(candidates) == 0 {
		return nil, "", errors.NewMissingArtifact(formatName, prefix+"*.metadata.json")
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Key < candidates[j].Key
	})
	chosen := candidates[len(candidates)-1]
	for _, c := range candidates {
		if c.LastModified.After(chosen.LastModified) {
			chosen = c
		}
	}

	data, err := store.Get(ctx, chosen.Key)
	if err != nil {
		return nil, "", errors.NewTransport(chosen.Key, err)
	}
	return data, chosen.Key, nil
}

// currentSchema resolves current-schema-id against schemas, falling back
// to the v1 top-level schema.
func currentSchema(doc *metadataFile) (*schemaDoc, error) {
	for i := range doc.Schemas {
		if doc.Schemas[i].SchemaID == doc.CurrentSchemaID {
			return &doc.Schemas[i], nil
		}
	}
	if doc.Schema != nil {
		return doc.Schema, nil
	}
	if len(doc.Schemas) > 0 {
		return &doc.Schemas[0], nil
	}
	return nil, errors.NewCorruptMetadata(formatName, "metadata file has no schema", nil)
}

// currentSpecFields resolves default-spec-id against partition-specs,
// falling back to the v1 top-level partition-spec. An unpartitioned
// table yields an empty list.
func currentSpecFields(doc *metadataFile) []partitionField {
	for _, spec := range doc.PartitionSpecs {
		if spec.SpecID == doc.DefaultSpecID {
			return spec.Fields
		}
	}
	return doc.PartitionSpec
}

// typeName flattens a decoded field type. Primitive types are strings
// ("long", "decimal(10,2)"); nested types collapse to their container
// discriminator and degrade to VARCHAR during normalization.
func typeName(t any) string {
	switch v := t.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["type"].(string); ok {
			return name
		}
	}
	return ""
}

// Ensure Reader implements the reader contract.
var _ reader.Reader = (*Reader)(nil)
