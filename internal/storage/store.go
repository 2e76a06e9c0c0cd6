package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/historydb/internal/history"
)

// sqliteTimeLayout is fixed width so that text comparison and MAX() order
// timestamps chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at path with
// foreign keys enforced.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, &history.StoreError{Op: "open sqlite", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &history.StoreError{Op: "open sqlite", Err: err}
	}
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already-opened database. The pool is capped at a
// single connection: one connection serves every batch of an import.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}
}

// DB exposes the underlying handle.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Bootstrap applies the schema inside one transaction.
func (s *SQLiteStore) Bootstrap(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &history.StoreError{Op: "bootstrap", Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range sqliteSchema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &history.StoreError{Op: "bootstrap", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &history.StoreError{Op: "bootstrap", Err: err}
	}
	return nil
}

// MaxTimestamp returns the latest timestamp stored for origin.
func (s *SQLiteStore) MaxTimestamp(ctx context.Context, origin string) (time.Time, bool, error) {
	var v any
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(timestamp) FROM history WHERE origin_description = ?", origin,
	).Scan(&v)
	if err != nil {
		return time.Time{}, false, &history.StoreError{Op: "max timestamp", Err: err}
	}
	if v == nil {
		return time.Time{}, false, nil
	}
	ts, err := scanTime(v)
	if err != nil {
		return time.Time{}, false, &history.StoreError{Op: "max timestamp", Err: err}
	}
	return ts, true, nil
}

// Begin opens a batch transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &history.StoreError{Op: "begin batch", Err: err}
	}
	return &sqliteBatch{tx: tx}, nil
}

// GetStats returns aggregate counts and per-origin watermarks.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM history),
		       (SELECT COUNT(*) FROM tag),
		       (SELECT COUNT(*) FROM history_tag)
	`).Scan(&stats.TotalHistory, &stats.TotalTags, &stats.TotalLinks)
	if err != nil {
		return nil, &history.StoreError{Op: "count rows", Err: err}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT origin_description, COUNT(*), MAX(timestamp)
		FROM history
		GROUP BY origin_description
		ORDER BY origin_description
	`)
	if err != nil {
		return nil, &history.StoreError{Op: "origin stats", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var o OriginStats
		var latest any
		if err := rows.Scan(&o.Origin, &o.Count, &latest); err != nil {
			return nil, &history.StoreError{Op: "origin stats", Err: err}
		}
		if o.Latest, err = scanTime(latest); err != nil {
			return nil, &history.StoreError{Op: "origin stats", Err: err}
		}
		stats.Origins = append(stats.Origins, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &history.StoreError{Op: "origin stats", Err: err}
	}
	return stats, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteBatch struct {
	tx *sql.Tx
}

// Insert writes the record, adds any of its tags missing from the
// vocabulary, and links the record to all of its tags.
func (b *sqliteBatch) Insert(ctx context.Context, rec *history.Record) error {
	res, err := b.tx.ExecContext(ctx,
		`INSERT INTO history (timestamp, title, host, url, user_agent, origin_description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(rec.Timestamp), rec.Title, rec.Host, rec.URL, rec.UserAgent, rec.Origin,
	)
	if err != nil {
		return &history.StoreError{Op: "insert history", Err: err}
	}
	if len(rec.Tags) == 0 {
		return nil
	}
	historyID, err := res.LastInsertId()
	if err != nil {
		return &history.StoreError{Op: "insert history", Err: err}
	}

	args := make([]any, 0, len(rec.Tags)+1)
	args = append(args, historyID)
	for _, tag := range rec.Tags {
		if _, err := b.tx.ExecContext(ctx, "INSERT OR IGNORE INTO tag (tag) VALUES (?)", tag); err != nil {
			return &history.StoreError{Op: "upsert tag", Err: err}
		}
		args = append(args, tag)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(rec.Tags)), ", ")
	_, err = b.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO history_tag (history_id, tag_id)
		 SELECT ?, tag_id FROM tag WHERE tag IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return &history.StoreError{Op: "link tags", Err: err}
	}
	return nil
}

func (b *sqliteBatch) Commit(ctx context.Context) error {
	if err := b.tx.Commit(); err != nil {
		return &history.StoreError{Op: "commit batch", Err: err}
	}
	return nil
}

func (b *sqliteBatch) Rollback(ctx context.Context) error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return &history.StoreError{Op: "rollback batch", Err: err}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// scanTime converts a timestamp read back from SQLite. The driver returns
// time.Time for typed columns and text for aggregates.
func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimestamp(t)
	case []byte:
		return parseTimestamp(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		sqliteTimeLayout,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
