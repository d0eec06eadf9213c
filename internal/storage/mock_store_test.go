package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/lakescan-io/lakescan/internal/catalog"
	serrors "github.com/lakescan-io/lakescan/internal/errors"
)

func TestMockStore_MatchesSQLStoreSemantics(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	meta := sampleMeta("orders", catalog.FormatIceberg)
	if _, err := store.Save(ctx, meta); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Format immutability.
	_, err := store.Save(ctx, sampleMeta("orders", catalog.FormatHudi))
	var mismatch *serrors.ErrFormatMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}

	// Copy-on-read: mutations on the returned value don't leak back.
	got, err := store.Get(ctx, "orders")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Columns[0].Name = "mutated"

	again, err := store.Get(ctx, "orders")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Columns[0].Name != "order_id" {
		t.Error("stored value mutated through Get result")
	}

	// Delete.
	if err := store.Delete(ctx, "orders"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var notFound *serrors.ErrTableNotFound
	if _, err := store.Get(ctx, "orders"); !errors.As(err, &notFound) {
		t.Errorf("expected ErrTableNotFound after delete, got %v", err)
	}
}

func TestMockStore_FailureSimulation(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	store.SetPersistenceFailure(true)
	if _, err := store.Save(ctx, sampleMeta("orders", catalog.FormatIceberg)); err == nil {
		t.Error("expected simulated persistence failure")
	}

	store.SetConnectivityFailure(true)
	if err := store.CheckConnectivity(ctx); err == nil {
		t.Error("expected simulated connectivity failure")
	}
}

func TestMockStore_RespectsCancelledContext(t *testing.T) {
	store := NewMockStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, sampleMeta("orders", catalog.FormatIceberg)); err == nil {
		t.Error("Save with cancelled context expected error")
	}
	if _, err := store.List(ctx, catalog.FormatUnknown); err == nil {
		t.Error("List with cancelled context expected error")
	}
}
