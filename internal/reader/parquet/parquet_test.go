package parquet

import (
	"bytes"
	"context"
	"errors"
	"testing"

	pq "github.com/parquet-go/parquet-go"

	serrors "github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
)

type userRecord struct {
	UserID  int64   `parquet:"user_id"`
	Country *string `parquet:"country,optional"`
}

func writeParquet(t *testing.T, rows []userRecord) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := pq.NewGenericWriter[userRecord](buf)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write parquet rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close parquet writer: %v", err)
	}
	return buf.Bytes()
}

func tableURI(t *testing.T) objectstore.URI {
	t.Helper()
	uri, err := objectstore.ParseURI("s3://warehouse/raw/users")
	if err != nil {
		t.Fatalf("ParseURI: %v", err)
	}
	return uri
}

func TestReader_ParsesFooter(t *testing.T) {
	us := "US"
	data := writeParquet(t, []userRecord{
		{UserID: 1, Country: &us},
		{UserID: 2, Country: nil},
	})

	store := objectstore.NewMemoryStore()
	store.Put("raw/users/part-0000.parquet", data)
	store.Put("raw/users/country=US/part-0001.parquet", data)

	raw, err := NewReader().Read(context.Background(), store, tableURI(t))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	p := raw.Parquet
	if p == nil {
		t.Fatal("raw record is not tagged parquet")
	}

	if len(p.Fields) != 2 {
		t.Fatalf("fields = %+v", p.Fields)
	}
	if p.Fields[0].Name != "user_id" || p.Fields[0].Nullable {
		t.Errorf("field 0 = %+v", p.Fields[0])
	}
	if p.Fields[1].Name != "country" || !p.Fields[1].Nullable {
		t.Errorf("field 1 = %+v", p.Fields[1])
	}
	if p.Fields[1].Type != "STRING" {
		t.Errorf("country type = %q, want STRING", p.Fields[1].Type)
	}

	if p.NumRows != 2 {
		t.Errorf("num rows = %d", p.NumRows)
	}
	if p.NumRowGroups < 1 {
		t.Errorf("num row groups = %d", p.NumRowGroups)
	}
	if p.NumColumns != 2 {
		t.Errorf("num columns = %d", p.NumColumns)
	}
	if p.FileCount != 2 {
		t.Errorf("file count = %d", p.FileCount)
	}
	if p.TotalSizeBytes != int64(2*len(data)) {
		t.Errorf("total size = %d", p.TotalSizeBytes)
	}
	if len(p.PartitionFields) != 1 || p.PartitionFields[0] != "country" {
		t.Errorf("partition fields = %v", p.PartitionFields)
	}
}

func TestReader_NoParquetFilesIsFatal(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("raw/users/README.md", []byte("nothing here"))

	_, err := NewReader().Read(context.Background(), store, tableURI(t))
	var missing *serrors.ErrMissingArtifact
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
}

func TestReader_InvalidFooterIsCorrupt(t *testing.T) {
	store := objectstore.NewMemoryStore()
	store.Put("raw/users/part-0000.parquet", []byte("PAR1 this is not a parquet file"))

	_, err := NewReader().Read(context.Background(), store, tableURI(t))
	var corrupt *serrors.ErrCorruptMetadata
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected ErrCorruptMetadata, got %v", err)
	}
}

func TestHivePartitions_Order(t *testing.T) {
	infos := []objectstore.ObjectInfo{
		{Key: "raw/t/year=2024/month=01/part-0000.parquet"},
		{Key: "raw/t/year=2024/month=02/part-0001.parquet"},
		{Key: "raw/t/part-0002.parquet"},
	}
	got := hivePartitions("raw/t/", infos)
	if len(got) != 2 || got[0] != "year" || got[1] != "month" {
		t.Errorf("hivePartitions = %v", got)
	}
}
