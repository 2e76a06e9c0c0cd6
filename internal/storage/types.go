package storage

import (
	"context"
	"time"

	"github.com/runnerr0/historydb/internal/history"
)

// Store is the handle every import component receives. Implementations
// are not safe for concurrent use; the importer is strictly sequential.
type Store interface {
	// Bootstrap idempotently creates the schema, tables, and indices.
	Bootstrap(ctx context.Context) error
	// MaxTimestamp returns the latest record timestamp stored for origin.
	// found is false when the origin has no records.
	MaxTimestamp(ctx context.Context, origin string) (ts time.Time, found bool, err error)
	// Begin opens a transaction for one batch of inserts.
	Begin(ctx context.Context) (Batch, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Batch is one open transaction. A record inserted through a batch, with its
// tags and links, becomes visible to others only after Commit.
type Batch interface {
	Insert(ctx context.Context, rec *history.Record) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Stats holds aggregate statistics about the imported history.
type Stats struct {
	TotalHistory int64
	TotalTags    int64
	TotalLinks   int64
	Origins      []OriginStats
}

// OriginStats summarizes the records imported from one origin.
type OriginStats struct {
	Origin string
	Count  int64
	Latest time.Time
}
