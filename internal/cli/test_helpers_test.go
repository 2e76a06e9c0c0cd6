package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/historydb/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// isolateConfig points the default config lookup at an empty home so a
// developer's own config cannot leak into tests.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

// sqliteEnv exports a fresh sqlite database path under the default
// connection variable and returns it.
func sqliteEnv(t *testing.T) string {
	t.Helper()
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "db", "history.db")
	t.Setenv("POSTGRESQL_URL", path)
	return path
}

// openSQLite opens a bootstrapped store at path.
func openSQLite(t *testing.T, path string) *storage.SQLiteStore {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	store, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Bootstrap(context.Background()))
	return store
}

func writeCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}
