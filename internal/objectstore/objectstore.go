// Package objectstore abstracts the blob backend that holds table data.
// The discovery core only needs three operations: list, get, head.
// All implementations must be:
// - Thread-safe
// - Context-aware (respecting cancellation/timeout)
// - Explicit about errors (never swallow)
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	// Key is the full object key within the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// LastModified is the object's modification timestamp.
	LastModified time.Time
}

// ObjectStore is the capability handle the discovery core consumes.
// A handle is already bound to one bucket; keys are bucket-relative.
type ObjectStore interface {
	// List returns up to maxKeys objects whose key starts with prefix.
	// maxKeys <= 0 means the implementation default.
	List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error)

	// Get returns the full content of the object at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Head returns object metadata without fetching content.
	Head(ctx context.Context, key string) (ObjectInfo, error)
}

// ErrorKind classifies object-store failures.
type ErrorKind int

const (
	// KindTransport covers network and backend failures.
	KindTransport ErrorKind = iota

	// KindNotFound means the key or prefix does not exist.
	KindNotFound

	// KindAccessDenied means the credentials lack permission.
	KindAccessDenied
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAccessDenied:
		return "access denied"
	default:
		return "transport"
	}
}

// StoreError is the error type returned by ObjectStore implementations.
type StoreError struct {
	Kind ErrorKind
	Key  string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("object store: %s: %s: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("object store: %s: %s", e.Kind, e.Key)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a classified object-store error.
func NewStoreError(kind ErrorKind, key string, err error) *StoreError {
	return &StoreError{Kind: kind, Key: key, Err: err}
}

// IsNotFound reports whether err is an object-store not-found failure.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindNotFound
}

// IsAccessDenied reports whether err is an object-store permission failure.
func IsAccessDenied(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindAccessDenied
}
