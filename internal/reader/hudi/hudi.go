// Package hudi reads Apache Hudi table metadata from object storage.
//
// Hudi keeps table configuration in .hoodie/hoodie.properties and a
// timeline of commit files under .hoodie/. There is no single metadata
// document carrying the schema; it is recovered opportunistically from
// the newest commit that embeds one. Some real tables have commits with
// no embedded schema at all — that case is a diagnostic, not an error.
package hudi

import (
	"context"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
	"github.com/lakescan-io/lakescan/internal/reader"
)

const formatName = "hudi"

// commitExtensions are the timeline entries that represent commits.
var commitExtensions = []string{".commit", ".deltacommit", ".replacecommit", ".inflight"}

// Reader parses the Hudi properties file and timeline.
type Reader struct{}

// NewReader creates a Hudi reader.
func NewReader() *Reader {
	return &Reader{}
}

// commitDoc is the subset of a commit file the reader inspects.
// metadata.schema is either an Avro schema object or a JSON string
// containing one.
type commitDoc struct {
	Metadata struct {
		Schema any `json:"schema"`
	} `json:"metadata"`
}

type avroSchema struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

type avroField struct {
	Name string `json:"name"`
	Type any    `json:"type"`
}

// Read parses hoodie.properties and the commit timeline.
func (r *Reader) Read(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) (*reader.Raw, error) {
	propsKey := uri.Join(".hoodie/hoodie.properties")
	data, err := store.Get(ctx, propsKey)
	if err != nil {
		if objectstore.IsNotFound(err) {
			return nil, errors.NewMissingArtifact(formatName, propsKey)
		}
		return nil, errors.NewTransport(propsKey, err)
	}
	props := parseProperties(data)

	timeline, err := r.readTimeline(ctx, store, uri)
	if err != nil {
		return nil, err
	}

	raw := &reader.HudiRaw{
		Location:   uri.String(),
		TableName:  props["hoodie.table.name"],
		TableType:  props["hoodie.table.type"],
		Properties: props,
		Timeline:   timeline,
	}

	if fields := props["hoodie.table.partition.fields"]; fields != "" {
		for _, part := range strings.Split(fields, ",") {
			if part = strings.TrimSpace(part); part != "" {
				raw.PartitionFields = append(raw.PartitionFields, part)
			}
		}
	}

	raw.SchemaFields, raw.SchemaRecovered = r.recoverSchema(ctx, store, timeline)

	return &reader.Raw{Hudi: raw}, nil
}

// readTimeline lists the direct children of .hoodie/ with commit
// extensions, ordered by last_modified.
func (r *Reader) readTimeline(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) ([]reader.HudiCommit, error) {
	prefix := uri.Join(".hoodie/")
	infos, err := store.List(ctx, prefix, 1000)
	if err != nil {
		return nil, errors.NewTransport(prefix, err)
	}

	var timeline []reader.HudiCommit
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, prefix)
		if strings.Contains(name, "/") {
			continue
		}
		ext, ok := commitExtension(name)
		if !ok {
			continue
		}
		timeline = append(timeline, reader.HudiCommit{
			CommitTime:   strings.TrimSuffix(name, ext),
			CommitType:   strings.TrimPrefix(ext, "."),
			Key:          info.Key,
			LastModified: info.LastModified,
		})
	}

	sort.Slice(timeline, func(i, j int) bool {
		if timeline[i].LastModified.Equal(timeline[j].LastModified) {
			return timeline[i].CommitTime < timeline[j].CommitTime
		}
		return timeline[i].LastModified.Before(timeline[j].LastModified)
	})
	return timeline, nil
}

func commitExtension(name string) (string, bool) {
	for _, ext := range commitExtensions {
		if strings.HasSuffix(name, ext) {
			return ext, true
		}
	}
	return "", false
}

// recoverSchema walks the timeline newest-first and returns the fields
// of the first commit that embeds a parseable Avro schema. Failures are
// silent here; the normalizer surfaces an empty schema as a diagnostic.
func (r *Reader) recoverSchema(ctx context.Context, store objectstore.ObjectStore, timeline []reader.HudiCommit) ([]reader.HudiField, bool) {
	for i := len(timeline) - 1; i >= 0; i-- {
		data, err := store.Get(ctx, timeline[i].Key)
		if err != nil {
			continue
		}

		var doc commitDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}

		schema, ok := decodeAvroSchema(doc.Metadata.Schema)
		if !ok || len(schema.Fields) == 0 {
			continue
		}

		fields := make([]reader.HudiField, 0, len(schema.Fields))
		for _, f := range schema.Fields {
			fields = append(fields, reader.HudiField{Name: f.Name, Type: f.Type})
		}
		return fields, true
	}
	return nil, false
}

// decodeAvroSchema accepts the schema either as an object or as a JSON
// string requiring a second parse.
func decodeAvroSchema(v any) (*avroSchema, bool) {
	switch s := v.(type) {
	case string:
		var schema avroSchema
		if err := json.Unmarshal([]byte(s), &schema); err != nil {
			return nil, false
		}
		return &schema, true
	case map[string]any:
		data, err := json.Marshal(s)
		if err != nil {
			return nil, false
		}
		var schema avroSchema
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, false
		}
		return &schema, true
	default:
		return nil, false
	}
}

// Ensure Reader implements the reader contract.
var _ reader.Reader = (*Reader)(nil)
