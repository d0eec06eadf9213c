package hudi

import (
	"context"
	"errors"
	"testing"
	"time"

	serrors "github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
)

const hoodieProperties = `hoodie.table.name=sales_hudi
hoodie.table.type=COPY_ON_WRITE
hoodie.table.partition.fields=region
`

const commitWithSchema = `{
	"partitionToWriteStats": {},
	"metadata": {
		"schema": "{\"type\":\"record\",\"name\":\"sales\",\"fields\":[{\"name\":\"order_id\",\"type\":\"long\"},{\"name\":\"region\",\"type\":[\"null\",\"string\"]}]}"
	}
}`

func tableURI(t *testing.T) objectstore.URI {
	t.Helper()
	uri, err := objectstore.ParseURI("s3://warehouse/sales/sales_hudi")
	if err != nil {
		t.Fatalf("ParseURI: %v", err)
	}
	return uri
}

func TestReader_ParsesPropertiesAndTimeline(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := objectstore.NewMemoryStore()
	store.Put("sales/sales_hudi/.hoodie/hoodie.properties", []byte(hoodieProperties))
	store.PutAt("sales/sales_hudi/.hoodie/20240101000000.commit", []byte(commitWithSchema), base)
	store.PutAt("sales/sales_hudi/.hoodie/20240102000000.commit", []byte(commitWithSchema), base.Add(24*time.Hour))

	raw, err := NewReader().Read(context.Background(), store, tableURI(t))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	h := raw.Hudi
	if h == nil {
		t.Fatal("raw record is not tagged hudi")
	}

	if h.TableName != "sales_hudi" || h.TableType != "COPY_ON_WRITE" {
		t.Errorf("table = %q type = %q", h.TableName, h.TableType)
	}
	if len(h.Timeline) != 2 {
		t.Fatalf("timeline = %d entries", len(h.Timeline))
	}
	if h.Timeline[0].CommitTime != "20240101000000" || h.Timeline[0].CommitType != "commit" {
		t.Errorf("timeline[0] = %+v", h.Timeline[0])
	}
	if h.Timeline[1].LastModified.Before(h.Timeline[0].LastModified) {
		t.Error("timeline not ordered by last_modified")
	}
	if len(h.PartitionFields) != 1 || h.PartitionFields[0] != "region" {
		t.Errorf("partition fields = %v", h.PartitionFields)
	}
	if !h.SchemaRecovered || len(h.SchemaFields) != 2 {
		t.Fatalf("schema recovery failed: recovered=%v fields=%d", h.SchemaRecovered, len(h.SchemaFields))
	}
	if h.SchemaFields[0].Name != "order_id" {
		t.Errorf("field 0 = %+v", h.SchemaFields[0])
	}
}

func TestReader_SchemaAsObject(t *testing.T) {
	commit := `{"metadata": {"schema": {"type": "record", "name": "t", "fields": [{"name": "id", "type": "long"}]}}}`

	store := objectstore.NewMemoryStore()
	store.Put("sales/sales_hudi/.hoodie/hoodie.properties", []byte(hoodieProperties))
	store.Put("sales/sales_hudi/.hoodie/20240101000000.commit", []byte(commit))

	raw, err := NewReader().Read(context.Background(), store, tableURI(t))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !raw.Hudi.SchemaRecovered || len(raw.Hudi.SchemaFields) != 1 {
		t.Errorf("object-form schema not recovered: %+v", raw.Hudi)
	}
}

func TestReader_SchemaRecoveryPrefersNewestCommit(t *testing.T) {
	oldCommit := `{"metadata": {"schema": {"type": "record", "name": "t", "fields": [{"name": "old_col", "type": "long"}]}}}`
	newCommit := `{"metadata": {"schema": {"type": "record", "name": "t", "fields": [{"name": "new_col", "type": "long"}]}}}`

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := objectstore.NewMemoryStore()
	store.Put("sales/sales_hudi/.hoodie/hoodie.properties", []byte(hoodieProperties))
	store.PutAt("sales/sales_hudi/.hoodie/20240101000000.commit", []byte(oldCommit), base)
	store.PutAt("sales/sales_hudi/.hoodie/20240102000000.commit", []byte(newCommit), base.Add(time.Hour))

	raw, err := NewReader().Read(context.Background(), store, tableURI(t))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if raw.Hudi.SchemaFields[0].Name != "new_col" {
		t.Errorf("schema recovered from stale commit: %+v", raw.Hudi.SchemaFields)
	}
}

func TestReader_NoRecoverableSchemaIsNotFatal(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("sales/sales_hudi/.hoodie/hoodie.properties", []byte(hoodieProperties))
	store.Put("sales/sales_hudi/.hoodie/20240101000000.commit", []byte(`{"partitionToWriteStats": {}}`))
	store.Put("sales/sales_hudi/.hoodie/20240102000000.inflight", []byte(``))

	raw, err := NewReader().Read(context.Background(), store, tableURI(t))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if raw.Hudi.SchemaRecovered || len(raw.Hudi.SchemaFields) != 0 {
		t.Errorf("expected empty schema, got %+v", raw.Hudi.SchemaFields)
	}
	if len(raw.Hudi.Timeline) != 2 {
		t.Errorf("timeline = %d", len(raw.Hudi.Timeline))
	}
}

func TestReader_MissingPropertiesIsFatal(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("sales/sales_hudi/.hoodie/20240101000000.commit", []byte(commitWithSchema))

	_, err := NewReader().Read(context.Background(), store, tableURI(t))
	var missing *serrors.ErrMissingArtifact
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
}

func TestReader_IgnoresAuxiliaryFiles(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("sales/sales_hudi/.hoodie/hoodie.properties", []byte(hoodieProperties))
	store.Put("sales/sales_hudi/.hoodie/20240101000000.commit", []byte(commitWithSchema))
	store.Put("sales/sales_hudi/.hoodie/metadata/files/file.hfile", []byte("x"))
	store.Put("sales/sales_hudi/.hoodie/20240101000000.commit.requested", []byte(""))

	raw, err := NewReader().Read(context.Background(), store, tableURI(t))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(raw.Hudi.Timeline) != 1 {
		t.Errorf("timeline = %d entries, want 1", len(raw.Hudi.Timeline))
	}
}
