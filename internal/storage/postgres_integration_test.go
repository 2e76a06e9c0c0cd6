package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/historydb/internal/history"
)

// openLivePostgres connects to HISTORYDB_TEST_POSTGRES_URL and skips the
// test when it is not set.
func openLivePostgres(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("HISTORYDB_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("Skipping integration test: HISTORYDB_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Bootstrap(ctx))
	return store
}

func TestPostgresLive_InsertMergesTagsAndLinks(t *testing.T) {
	store := openLivePostgres(t)
	ctx := context.Background()

	// Unique names keep the test independent of whatever the database holds.
	suffix := uuid.NewString()[:8]
	origin := "it-" + suffix + ".xlsx"
	shared, onlyA, onlyB := "shared-"+suffix, "a-"+suffix, "b-"+suffix
	t.Cleanup(func() {
		_, _ = store.conn.Exec(ctx, `delete from history_to_drive.history_tag where history_id in
			(select history_id from history_to_drive.history where origin_description = $1)`, origin)
		_, _ = store.conn.Exec(ctx, `delete from history_to_drive.history where origin_description = $1`, origin)
		_, _ = store.conn.Exec(ctx, `delete from history_to_drive.tag where tag = any($1)`, []string{shared, onlyA, onlyB})
	})

	// Stored at microsecond precision.
	latest := time.Date(2023, 1, 2, 3, 4, 5, 123456000, time.UTC)
	recs := []*history.Record{
		{Timestamp: latest.Add(-time.Hour), Title: "A", Host: "a.com", URL: "https://a.com", UserAgent: "UA", Origin: origin, Tags: []string{shared, onlyA}},
		{Timestamp: latest, Title: "B", Host: "b.com", URL: "https://b.com", UserAgent: "UA", Origin: origin, Tags: []string{onlyB, shared}},
		{Timestamp: latest.Add(-2 * time.Hour), Title: "C", Host: "c.com", URL: "https://c.com", UserAgent: "UA", Origin: origin},
	}

	batch, err := store.Begin(ctx)
	require.NoError(t, err)
	for _, rec := range recs {
		require.NoError(t, batch.Insert(ctx, rec))
	}
	require.NoError(t, batch.Commit(ctx))

	var records, links int
	require.NoError(t, store.conn.QueryRow(ctx,
		`select count(*) from history_to_drive.history where origin_description = $1`, origin).Scan(&records))
	require.NoError(t, store.conn.QueryRow(ctx,
		`select count(*) from history_to_drive.history_tag ht
		 join history_to_drive.history h on h.history_id = ht.history_id
		 where h.origin_description = $1`, origin).Scan(&links))
	assert.Equal(t, 3, records)
	assert.Equal(t, 4, links)

	var tags int
	require.NoError(t, store.conn.QueryRow(ctx,
		`select count(*) from history_to_drive.tag where tag = any($1)`, []string{shared, onlyA, onlyB}).Scan(&tags))
	assert.Equal(t, 3, tags, "shared tag is created once")

	ts, found, err := store.MaxTimestamp(ctx, origin)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, latest, ts)
}

func TestPostgresLive_RollbackDiscardsBatch(t *testing.T) {
	store := openLivePostgres(t)
	ctx := context.Background()
	origin := "it-" + uuid.NewString()[:8] + ".csv"

	batch, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, batch.Insert(ctx, &history.Record{
		Timestamp: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Title:     "A",
		Host:      "a.com",
		URL:       "https://a.com",
		UserAgent: "UA",
		Origin:    origin,
	}))
	require.NoError(t, batch.Rollback(ctx))

	_, found, err := store.MaxTimestamp(ctx, origin)
	require.NoError(t, err)
	assert.False(t, found)
}
