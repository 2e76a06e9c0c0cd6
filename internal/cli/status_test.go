package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/historydb/internal/history"
	"github.com/runnerr0/historydb/internal/storage"
)

func seedHistory(t *testing.T, store storage.Store, origin string, stamps ...time.Time) {
	t.Helper()
	ctx := context.Background()
	batch, err := store.Begin(ctx)
	require.NoError(t, err)
	for i, ts := range stamps {
		rec := &history.Record{
			Timestamp: ts,
			Title:     "page",
			Host:      "example.com",
			URL:       "https://example.com/" + origin,
			UserAgent: "UA",
			Origin:    origin,
			Tags:      []string{"work"},
		}
		if i%2 == 1 {
			rec.Tags = append(rec.Tags, "personal")
		}
		require.NoError(t, batch.Insert(ctx, rec))
	}
	require.NoError(t, batch.Commit(ctx))
}

func TestStatus_EmptyStore(t *testing.T) {
	store := openSQLite(t, filepath.Join(t.TempDir(), "history.db"))
	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store, "sqlite"))
	})

	assert.Contains(t, output, "History Store Status")
	assert.Contains(t, output, "Version:       dev")
	assert.Contains(t, output, "Driver:        sqlite")
	assert.Contains(t, output, "Records:       0")
	assert.Contains(t, output, "No origins imported yet.")
}

func TestStatus_WithData(t *testing.T) {
	store := openSQLite(t, filepath.Join(t.TempDir(), "history.db"))
	day := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	stamps := make([]time.Time, 0, 1200)
	for i := 0; i < 1200; i++ {
		stamps = append(stamps, day.Add(time.Duration(i)*time.Minute))
	}
	seedHistory(t, store, "big.xlsx", stamps...)
	seedHistory(t, store, "small.csv", day)

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "dev"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store, "sqlite"))
	})

	assert.Contains(t, output, "Records:       1,201")
	assert.Contains(t, output, "Tags:          2")
	assert.Contains(t, output, "Tag links:     1,801")
	assert.Contains(t, output, "big.xlsx")
	assert.Contains(t, output, "latest 2023-01-01T19:59:00Z")
	assert.Contains(t, output, "small.csv")
	assert.Contains(t, output, "ago")
}

func TestStatus_JSON(t *testing.T) {
	store := openSQLite(t, filepath.Join(t.TempDir(), "history.db"))
	ts := time.Date(2023, 1, 1, 0, 0, 0, 500000000, time.UTC)
	seedHistory(t, store, "file1.xlsx", ts)

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "dev"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store, "sqlite"))
	})

	var got statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "dev", got.Version)
	assert.Equal(t, "sqlite", got.Driver)
	assert.Equal(t, int64(1), got.TotalHistory)
	assert.Equal(t, int64(1), got.TotalTags)
	assert.Equal(t, int64(1), got.TotalLinks)
	require.Len(t, got.Origins, 1)
	assert.Equal(t, "file1.xlsx", got.Origins[0].Origin)
	assert.Equal(t, "2023-01-01T00:00:00.5Z", got.Origins[0].Latest)
}

func TestStatus_InjectedStoreViaParser(t *testing.T) {
	isolateConfig(t)
	store := openSQLite(t, filepath.Join(t.TempDir(), "history.db"))
	seedHistory(t, store, "file1.xlsx", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	parser, _, cmds := buildParser("dev")
	cmds.Status.store = store

	output := captureOutput(t, func() {
		_, err := parser.ParseArgs([]string{"--driver", "sqlite", "status"})
		require.NoError(t, err)
	})
	assert.Contains(t, output, "Records:       1")
}

func TestStatus_FreshStoreReportsZeroCounts(t *testing.T) {
	dbPath := sqliteEnv(t)

	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("dev", []string{"--json", "--driver", "sqlite", "status"})
	})
	require.NoError(t, err)

	var got statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "sqlite", got.Driver)
	assert.Zero(t, got.TotalHistory)
	assert.Zero(t, got.TotalTags)
	assert.Zero(t, got.TotalLinks)
	assert.Empty(t, got.Origins)
	assert.FileExists(t, dbPath)
}
