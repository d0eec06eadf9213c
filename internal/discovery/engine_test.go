package discovery

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/lakescan-io/lakescan/internal/catalog"
	serrors "github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
	"github.com/lakescan-io/lakescan/internal/storage"
)

const icebergMetadata = `{
	"format-version": 2,
	"location": "s3://warehouse/sales/orders",
	"current-schema-id": 0,
	"schemas": [{
		"schema-id": 0,
		"fields": [
			{"id": 1, "name": "order_id", "type": "long", "required": true},
			{"id": 5, "name": "region", "type": "string", "required": false}
		]
	}],
	"default-spec-id": 0,
	"partition-specs": [{
		"spec-id": 0,
		"fields": [{"source-id": 5, "field-id": 1000, "name": "region", "transform": "identity"}]
	}],
	"current-snapshot-id": 42,
	"snapshots": [{"snapshot-id": 42, "timestamp-ms": 1700000000000}]
}`

const deltaCommit = `{"protocol":{"minReaderVersion":1,"minWriterVersion":2}}
{"metaData":{"id":"aaa","schemaString":"{\"type\":\"struct\",\"fields\":[{\"name\":\"id\",\"type\":\"long\",\"nullable\":false,\"metadata\":{}},{\"name\":\"dt\",\"type\":\"date\",\"nullable\":true,\"metadata\":{}}]}","partitionColumns":["dt"],"configuration":{},"createdTime":1700000000000}}
`

const hudiProperties = `hoodie.table.name=sales_hudi
hoodie.table.type=COPY_ON_WRITE
hoodie.table.partition.fields=region
`

const hudiCommit = `{"metadata": {"schema": {"type": "record", "name": "sales", "fields": [{"name": "order_id", "type": "long"}, {"name": "region", "type": ["null", "string"]}]}}}`

func icebergFixture() *objectstore.MemoryStore {
	store := objectstore.NewMemoryStore()
	store.Put("sales/orders/metadata/v1.metadata.json", []byte(icebergMetadata))
	return store
}

func deltaFixture() *objectstore.MemoryStore {
	store := objectstore.NewMemoryStore()
	store.Put("sales/orders/_delta_log/00000000000000000000.json", []byte(deltaCommit))
	return store
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(storage.NewMockStore(), nil)
}

// S1: Iceberg happy path.
func TestEngine_DiscoverIceberg(t *testing.T) {
	engine := newTestEngine(t)
	meta, err := engine.Discover(context.Background(), icebergFixture(), "s3://warehouse/sales/orders")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if meta.Format != catalog.FormatIceberg {
		t.Errorf("format = %s", meta.Format)
	}
	wantCols := []catalog.ColumnMetadata{
		{Name: "order_id", DataType: "BIGINT", Nullable: false},
		{Name: "region", DataType: "VARCHAR", Nullable: true},
	}
	if !reflect.DeepEqual(meta.Columns, wantCols) {
		t.Errorf("columns = %+v", meta.Columns)
	}
	if !reflect.DeepEqual(meta.Partitions, []string{"region"}) {
		t.Errorf("partitions = %v", meta.Partitions)
	}
	if !meta.SupportsTimeTravel {
		t.Error("time travel expected")
	}
	if meta.Properties["iceberg.format_version"] != "2" {
		t.Errorf("format_version = %q", meta.Properties["iceberg.format_version"])
	}

	stored, err := engine.Get(context.Background(), "orders")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Format != catalog.FormatIceberg {
		t.Errorf("stored format = %s", stored.Format)
	}
}

// S2: Delta with partitionColumns.
func TestEngine_DiscoverDelta(t *testing.T) {
	engine := newTestEngine(t)
	meta, err := engine.Discover(context.Background(), deltaFixture(), "s3://warehouse/sales/orders")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if meta.Format != catalog.FormatDelta {
		t.Errorf("format = %s", meta.Format)
	}
	wantCols := []catalog.ColumnMetadata{
		{Name: "id", DataType: "BIGINT", Nullable: false},
		{Name: "dt", DataType: "DATE", Nullable: true},
	}
	if !reflect.DeepEqual(meta.Columns, wantCols) {
		t.Errorf("columns = %+v", meta.Columns)
	}
	if !reflect.DeepEqual(meta.Partitions, []string{"dt"}) {
		t.Errorf("partitions = %v", meta.Partitions)
	}
	if meta.Properties["delta.version"] != "0" {
		t.Errorf("delta.version = %q", meta.Properties["delta.version"])
	}
	if !meta.SupportsTimeTravel {
		t.Error("delta time travel expected")
	}
}

// S3: Hudi COPY_ON_WRITE with two commits.
func TestEngine_DiscoverHudi(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("sales/sales_hudi/.hoodie/hoodie.properties", []byte(hudiProperties))
	store.Put("sales/sales_hudi/.hoodie/20240101000000.commit", []byte(hudiCommit))
	store.Put("sales/sales_hudi/.hoodie/20240102000000.commit", []byte(hudiCommit))

	engine := newTestEngine(t)
	meta, err := engine.Discover(context.Background(), store, "s3://warehouse/sales/sales_hudi")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if meta.Format != catalog.FormatHudi {
		t.Errorf("format = %s", meta.Format)
	}
	if meta.TableName != "sales_hudi" {
		t.Errorf("table name = %q", meta.TableName)
	}
	if !meta.SupportsTimeTravel {
		t.Error("two commits must enable time travel")
	}
	if meta.Properties["hudi.commits.count"] != "2" {
		t.Errorf("commits count = %q", meta.Properties["hudi.commits.count"])
	}
}

// S5: format conflict on re-discovery leaves the stored row unchanged.
func TestEngine_FormatConflictOnRediscovery(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Discover(ctx, icebergFixture(), "s3://warehouse/sales/orders"); err != nil {
		t.Fatalf("first Discover: %v", err)
	}

	// The same URI is rewritten as a Delta table.
	_, err := engine.Discover(ctx, deltaFixture(), "s3://warehouse/sales/orders")
	var mismatch *serrors.ErrFormatMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
	if mismatch.Existing != "iceberg" || mismatch.Incoming != "delta" {
		t.Errorf("mismatch = existing=%q incoming=%q", mismatch.Existing, mismatch.Incoming)
	}

	stored, err := engine.Get(ctx, "orders")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Format != catalog.FormatIceberg {
		t.Errorf("stored format changed to %s", stored.Format)
	}
}

// S6: corrupt Delta log persists nothing.
func TestEngine_CorruptDeltaPersistsNothing(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("sales/orders/_delta_log/00000000000000000000.json", []byte(`{"metaData":{"id":"x","schemaString":"{\"fie`))

	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Discover(ctx, store, "s3://warehouse/sales/orders")
	var corrupt *serrors.ErrCorruptMetadata
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected ErrCorruptMetadata, got %v", err)
	}

	var notFound *serrors.ErrTableNotFound
	if _, err := engine.Get(ctx, "orders"); !errors.As(err, &notFound) {
		t.Errorf("expected no stored row, got %v", err)
	}
	count, err := engine.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d after failed discovery", count)
	}
}

// Re-discovery of a quiescent table is idempotent apart from updated_at.
func TestEngine_RediscoveryIsIdempotent(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	store := icebergFixture()

	first, err := engine.Discover(ctx, store, "s3://warehouse/sales/orders")
	if err != nil {
		t.Fatalf("first Discover: %v", err)
	}
	second, err := engine.Discover(ctx, store, "s3://warehouse/sales/orders")
	if err != nil {
		t.Fatalf("second Discover: %v", err)
	}

	if !reflect.DeepEqual(first.Columns, second.Columns) {
		t.Errorf("column ordering unstable:\n %+v\n %+v", first.Columns, second.Columns)
	}
	if !reflect.DeepEqual(first.Partitions, second.Partitions) {
		t.Errorf("partitions unstable")
	}
	if !reflect.DeepEqual(first.Properties, second.Properties) {
		t.Errorf("properties unstable")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on re-discovery")
	}
}

func TestEngine_UnknownLayoutFails(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("sales/other/readme.txt", []byte("hello"))

	engine := newTestEngine(t)
	_, err := engine.Discover(context.Background(), store, "s3://warehouse/sales/other")
	var unrecognized *serrors.ErrUnrecognizedFormat
	if !errors.As(err, &unrecognized) {
		t.Fatalf("expected ErrUnrecognizedFormat, got %v", err)
	}
}

func TestEngine_DeleteRemovesTable(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Discover(ctx, icebergFixture(), "s3://warehouse/sales/orders"); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if err := engine.Delete(ctx, "orders"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var notFound *serrors.ErrTableNotFound
	if _, err := engine.Get(ctx, "orders"); !errors.As(err, &notFound) {
		t.Errorf("expected ErrTableNotFound after delete, got %v", err)
	}
}

func TestEngine_ListFiltersByFormat(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Discover(ctx, icebergFixture(), "s3://warehouse/sales/orders"); err != nil {
		t.Fatalf("Discover iceberg: %v", err)
	}
	deltaStore := objectstore.NewMemoryStore()
	deltaStore.Put("sales/events/_delta_log/00000000000000000000.json", []byte(deltaCommit))
	if _, err := engine.Discover(ctx, deltaStore, "s3://warehouse/sales/events"); err != nil {
		t.Fatalf("Discover delta: %v", err)
	}

	icebergs, err := engine.List(ctx, catalog.FormatIceberg)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(icebergs, []string{"orders"}) {
		t.Errorf("List(iceberg) = %v", icebergs)
	}

	all, err := engine.List(ctx, catalog.FormatUnknown)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(all) = %v", all)
	}
}

// Round-trip through the real SQL catalog, not just the mock.
func TestEngine_DiscoverWithSQLStore(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := storage.NewMigrationRunner(db, storage.DialectSQLite).Run(ctx); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	engine := NewEngine(storage.NewSQLStore(db, storage.DialectSQLite), nil)
	meta, err := engine.Discover(ctx, icebergFixture(), "s3://warehouse/sales/orders")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	stored, err := engine.Get(ctx, meta.TableName)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(stored.Columns, meta.Columns) {
		t.Errorf("round-trip columns mismatch:\n %+v\n %+v", stored.Columns, meta.Columns)
	}
	if !reflect.DeepEqual(stored.Partitions, meta.Partitions) {
		t.Errorf("round-trip partitions mismatch")
	}
	if !reflect.DeepEqual(stored.Properties, meta.Properties) {
		t.Errorf("round-trip properties mismatch")
	}

	// Re-discovery exercises the update path: the returned metadata
	// must carry the preserved created_at, not a zero value.
	second, err := engine.Discover(ctx, icebergFixture(), "s3://warehouse/sales/orders")
	if err != nil {
		t.Fatalf("second Discover: %v", err)
	}
	if second.CreatedAt.IsZero() {
		t.Error("re-discovery returned zero created_at")
	}
	if !second.CreatedAt.Equal(meta.CreatedAt) {
		t.Errorf("created_at changed on re-discovery: %v -> %v", meta.CreatedAt, second.CreatedAt)
	}
	if !reflect.DeepEqual(second.Columns, meta.Columns) {
		t.Errorf("re-discovery columns mismatch:\n %+v\n %+v", second.Columns, meta.Columns)
	}
}

func TestEngine_Inspect(t *testing.T) {
	store := icebergFixture()
	store.Put("sales/orders/data/part-0000.parquet", []byte("0123456789"))

	engine := newTestEngine(t)
	report, err := engine.Inspect(context.Background(), store, "s3://warehouse/sales/orders")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	if report.Format != "iceberg" {
		t.Errorf("format = %q", report.Format)
	}
	if report.FileCount != 2 {
		t.Errorf("file count = %d", report.FileCount)
	}
	if report.FileTypes["parquet"] != 1 || report.FileTypes["json"] != 1 {
		t.Errorf("file types = %v", report.FileTypes)
	}
	if report.LastModified == nil {
		t.Error("last modified not set")
	}

	// Nothing was persisted.
	count, err := engine.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("inspect persisted %d rows", count)
	}
}

func TestEngine_InspectUnknownLayoutSucceeds(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("misc/readme.txt", []byte("hello"))

	engine := newTestEngine(t)
	report, err := engine.Inspect(context.Background(), store, "s3://warehouse/misc")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if report.Format != "unknown" {
		t.Errorf("format = %q", report.Format)
	}
}
