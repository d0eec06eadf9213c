// Package delta reads Delta Lake table metadata from object storage.
//
// The transaction log lives at _delta_log/ as {version:020d}.json files
// holding one JSON action per line. Only the latest log file matters for
// discovery: its last metaData action carries the current schema,
// partitioning and configuration, and its last protocol action carries
// the reader/writer versions. add/remove actions are ignored.
package delta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
	"github.com/lakescan-io/lakescan/internal/reader"
)

const formatName = "delta"

// Reader parses the Delta transaction log.
type Reader struct{}

// NewReader creates a Delta reader.
func NewReader() *Reader {
	return &Reader{}
}

// action is one line of a transaction-log file. Fields for action kinds
// the core ignores (add, remove, commitInfo, txn) are omitted; unknown
// keys are skipped by the decoder.
type action struct {
	MetaData *metaDataAction `json:"metaData"`
	Protocol *protocolAction `json:"protocol"`
}

type metaDataAction struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	SchemaString     string            `json:"schemaString"`
	PartitionColumns []string          `json:"partitionColumns"`
	Configuration    map[string]string `json:"configuration"`
	CreatedTime      int64             `json:"createdTime"`
}

type protocolAction struct {
	MinReaderVersion int `json:"minReaderVersion"`
	MinWriterVersion int `json:"minWriterVersion"`
}

// schemaDoc is the document embedded in metaData.schemaString.
type schemaDoc struct {
	Type   string     `json:"type"`
	Fields []fieldDoc `json:"fields"`
}

type fieldDoc struct {
	Name     string `json:"name"`
	Type     any    `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Read parses the highest-version transaction-log file.
func (r *Reader) Read(ctx context.Context, store objectstore.ObjectStore, uri objectstore.URI) (*reader.Raw, error) {
	logPrefix := uri.Join("_delta_log/")
	infos, err := store.List(ctx, logPrefix, 1000)
	if err != nil {
		return nil, errors.NewTransport(logPrefix, err)
	}

	version, key, ok := latestLogFile(logPrefix, infos)
	if !ok {
		return nil, errors.NewCorruptMetadata(formatName, "no transaction log", nil)
	}

	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, errors.NewTransport(key, err)
	}

	meta, protocol, err := mergeActions(key, data)
	if err != nil {
		return nil, err
	}
	if meta == nil || meta.SchemaString == "" {
		return nil, errors.NewCorruptMetadata(formatName, fmt.Sprintf("no schema in %s", key), nil)
	}

	var schema schemaDoc
	if err := json.Unmarshal([]byte(meta.SchemaString), &schema); err != nil {
		return nil, errors.NewCorruptMetadata(formatName, "invalid schemaString document", err)
	}

	raw := &reader.DeltaRaw{
		Location:         uri.String(),
		Version:          version,
		PartitionColumns: meta.PartitionColumns,
		Properties:       map[string]string{},
		CreatedTime:      meta.CreatedTime,
	}
	for k, v := range meta.Configuration {
		raw.Properties[k] = v
	}
	if meta.Name != "" {
		raw.Properties["table.name"] = meta.Name
	}
	if meta.Description != "" {
		raw.Properties["table.description"] = meta.Description
	}
	if protocol != nil {
		raw.HasProtocol = true
		raw.MinReaderVersion = protocol.MinReaderVersion
		raw.MinWriterVersion = protocol.MinWriterVersion
	}

	for _, f := range schema.Fields {
		raw.SchemaFields = append(raw.SchemaFields, reader.DeltaField{
			Name:     f.Name,
			Type:     typeName(f.Type),
			Nullable: f.Nullable,
		})
	}

	return &reader.Raw{Delta: raw}, nil
}

// latestLogFile picks the highest-version {version:020d}.json entry,
// excluding checkpoint files.
func latestLogFile(logPrefix string, infos []objectstore.ObjectInfo) (int64, string, bool) {
	type logFile struct {
		version int64
		key     string
	}
	var files []logFile
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, logPrefix)
		if !strings.HasSuffix(name, ".json") || strings.Contains(name, ".checkpoint.") {
			continue
		}
		version, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		files = append(files, logFile{version: version, key: info.Key})
	}
	if len(files) == 0 {
		return 0, "", false
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	last := files[len(files)-1]
	return last.version, last.key, true
}

// mergeActions stream-parses the line-delimited action log. The last
// metaData and the last protocol action win; a truncated or invalid
// line is fatal, not skippable.
func mergeActions(key string, data []byte) (*metaDataAction, *protocolAction, error) {
	var meta *metaDataAction
	var protocol *protocolAction

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var act action
		if err := json.Unmarshal([]byte(text), &act); err != nil {
			return nil, nil, errors.NewCorruptMetadata(formatName,
				fmt.Sprintf("invalid action at %s line %d", key, line), err)
		}
		if act.MetaData != nil {
			meta = act.MetaData
		}
		if act.Protocol != nil {
			protocol = act.Protocol
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewCorruptMetadata(formatName, fmt.Sprintf("unreadable log %s", key), err)
	}

	return meta, protocol, nil
}

// typeName flattens a decoded field type. Primitives are strings
// ("long", "decimal(10,2)"); struct/array/map objects collapse to their
// container discriminator and degrade during normalization.
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
