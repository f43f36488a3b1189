// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Fixed record names. Each is persisted independently.
const (
	RecordCurrent = "quotation-storage.current"
	RecordHistory = "quotation-storage.history"
	RecordProfile = "quotation-config.json"
)

// Store defines the interface for named record persistence.
// Records are opaque JSON documents keyed by a fixed name.
// This abstraction allows swapping storage backends (SQLite, memory, etc.)
// without changing the quotation store.
type Store interface {
	// Get returns the payload stored under name.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put creates or replaces the record stored under name.
	Put(ctx context.Context, name string, payload []byte) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases any resources held by the store.
	Close() error
}
