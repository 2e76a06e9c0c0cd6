package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/runnerr0/historydb/internal/history"
)

// insertHistorySQL inserts one history row, adds its tags that are not yet
// in the vocabulary, and links the row to the full tag set in a single
// statement. Tags inserted by this statement are not visible to its own
// lookup, hence the union with inserted_tags.
const insertHistorySQL = `
	with record_insert_id as (
		insert into history_to_drive.history (timestamp, title, host, url, user_agent, origin_description)
			values ($1, $2, $3, $4, $5, $6)
			returning history_id
	)
	   , tags_to_merge as (
		select distinct tag
		from unnest($7::varchar[]) as t(tag)
	)
	   , inserted_tags as (
		insert into history_to_drive.tag (tag)
			select tag
			from tags_to_merge
			on conflict (tag) do nothing
			returning tag_id
	)
	   , tag_ids as (
		select tag_id
		from inserted_tags
		union
		select tag_id
		from history_to_drive.tag
		where tag in (select tag from tags_to_merge)
	)
	insert
	into history_to_drive.history_tag (history_id, tag_id)
	select r.history_id, t.tag_id
	from tag_ids t
		cross join record_insert_id r`

const maxTimestampSQL = `
	select max(h.timestamp) last_ts
	from history_to_drive.history h
	where h.origin_description = $1`

const countsSQL = `
	select (select count(*) from history_to_drive.history),
	       (select count(*) from history_to_drive.tag),
	       (select count(*) from history_to_drive.history_tag)`

const originStatsSQL = `
	select origin_description, count(*), max(timestamp)
	from history_to_drive.history
	group by origin_description
	order by origin_description`

// pgConn is the subset of *pgx.Conn the store uses, so tests can substitute
// a fake connection.
type pgConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
}

// PostgresStore implements Store on a single PostgreSQL connection.
type PostgresStore struct {
	conn pgConn
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to the database at url. The caller closes the store.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, &history.StoreError{Op: "connect", Err: err}
	}
	return &PostgresStore{conn: conn}, nil
}

// Bootstrap creates the history_to_drive schema inside one transaction.
func (p *PostgresStore) Bootstrap(ctx context.Context) error {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return &history.StoreError{Op: "bootstrap", Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, stmt := range postgresSchema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return &history.StoreError{Op: "bootstrap", Err: err}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return &history.StoreError{Op: "bootstrap", Err: err}
	}
	return nil
}

// MaxTimestamp returns the latest timestamp stored for origin.
func (p *PostgresStore) MaxTimestamp(ctx context.Context, origin string) (time.Time, bool, error) {
	var last pgtype.Timestamp
	if err := p.conn.QueryRow(ctx, maxTimestampSQL, origin).Scan(&last); err != nil {
		return time.Time{}, false, &history.StoreError{Op: "max timestamp", Err: err}
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return last.Time.UTC(), true, nil
}

// Begin opens a batch transaction.
func (p *PostgresStore) Begin(ctx context.Context) (Batch, error) {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return nil, &history.StoreError{Op: "begin batch", Err: err}
	}
	return &pgBatch{tx: tx}, nil
}

// GetStats returns aggregate counts and per-origin watermarks.
func (p *PostgresStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	if err := p.conn.QueryRow(ctx, countsSQL).Scan(&stats.TotalHistory, &stats.TotalTags, &stats.TotalLinks); err != nil {
		return nil, &history.StoreError{Op: "count rows", Err: err}
	}

	rows, err := p.conn.Query(ctx, originStatsSQL)
	if err != nil {
		return nil, &history.StoreError{Op: "origin stats", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var o OriginStats
		var latest pgtype.Timestamp
		if err := rows.Scan(&o.Origin, &o.Count, &latest); err != nil {
			return nil, &history.StoreError{Op: "origin stats", Err: err}
		}
		o.Latest = latest.Time.UTC()
		stats.Origins = append(stats.Origins, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &history.StoreError{Op: "origin stats", Err: err}
	}
	return stats, nil
}

// Close closes the connection.
func (p *PostgresStore) Close() error {
	return p.conn.Close(context.Background())
}

type pgBatch struct {
	tx pgx.Tx
}

func (b *pgBatch) Insert(ctx context.Context, rec *history.Record) error {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := b.tx.Exec(ctx, insertHistorySQL,
		rec.Timestamp.UTC(), rec.Title, rec.Host, rec.URL, rec.UserAgent, rec.Origin, tags,
	)
	if err != nil {
		return &history.StoreError{Op: "insert history", Err: err}
	}
	return nil
}

func (b *pgBatch) Commit(ctx context.Context) error {
	if err := b.tx.Commit(ctx); err != nil {
		return &history.StoreError{Op: "commit batch", Err: err}
	}
	return nil
}

func (b *pgBatch) Rollback(ctx context.Context) error {
	if err := b.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return &history.StoreError{Op: "rollback batch", Err: err}
	}
	return nil
}
