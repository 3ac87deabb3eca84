// Package store persists finalized invoices and the working draft.
//
// Both live in named slots of a KV backend: the whole invoice collection is
// serialized as one JSON array under DefaultInvoicesKey and rewritten on every
// mutation, and the draft is a single JSON object under DefaultDraftKey.
// Two backends are provided:
//   - FileKV: one <key>.json file per slot, replaced atomically
//   - SQLiteKV: a kv table in a local SQLite database (WAL journal)
package store

import (
	"context"
	"fmt"
	"path/filepath"
)

const (
	DefaultInvoicesKey = "threm_invoices"
	DefaultDraftKey    = "threm_draft"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// KV is a durable byte slot store.
type KV interface {
	// Get returns the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the bytes stored under key.
	Put(ctx context.Context, key string, value []byte) error

	Close() error
}

// Open returns the KV backend named by backend rooted at path. For the file
// backend path is a directory; for sqlite it is a directory holding invoicer.db.
func Open(ctx context.Context, backend, path string) (KV, error) {
	switch backend {
	case BackendFile, "":
		return NewFileKV(path)
	case BackendSQLite:
		return OpenSQLite(ctx, filepath.Join(path, "invoicer.db"))
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
