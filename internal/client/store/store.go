// Package store implements the Local Store: durable key/value persistence
// holding whole-record snapshots of the draft, the outbox, and the session
// credential. Every Put is a full, atomic overwrite of its record; a partial
// write is never observable on the next read.
package store

import "context"

// Names of the logical records the client persists.
const (
	RecordDraft        = "draft"
	RecordOutbox       = "outbox"
	RecordSessionToken = "sessionToken"
)

// Store is durable key/value persistence over named records.
//
// Get returns common.ErrorNotFound when the record is absent.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error

	// DeleteAll removes the named records in a single transaction. Used for
	// the terminal clear after a confirmed submission, where the draft and
	// outbox must vanish together.
	DeleteAll(ctx context.Context, names ...string) error
}
