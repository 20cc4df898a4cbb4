// Package history persists completed downloads and lists the most recent ones.
package history

import (
	"context"
)

// Store is the append-only download log.
//
// Append must durably persist the entry before returning; it assigns an ID and
// timestamp when they are empty and returns the stored entry. ListRecent returns at
// most ClampLimit(limit) entries ordered by DownloadedAt descending. All failures
// are *errors.StoreError. Implementations are safe for concurrent use.
type Store interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
