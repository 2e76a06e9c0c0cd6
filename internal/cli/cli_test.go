package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/historydb/internal/history"
)

func TestVersionFlag(t *testing.T) {
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("0.1.0-test", []string{"--version"})
	})

	assert.NoError(t, err)
	assert.Contains(t, output, "historydb 0.1.0-test")
}

func TestVersionOutputFormat(t *testing.T) {
	output := captureOutput(t, func() {
		_ = RunWithArgs("1.2.3", []string{"--version"})
	})

	assert.Equal(t, "historydb 1.2.3", strings.TrimSpace(output))
}

func TestVersionAfterSeparatorIsPositional(t *testing.T) {
	sqliteEnv(t)
	err := RunWithArgs("test", []string{"--driver", "sqlite", "import", "--", "--version"})
	var ce *history.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "--version")
}

func TestStatusSubcommandRecognized(t *testing.T) {
	sqliteEnv(t)
	captureOutput(t, func() {
		assert.NoError(t, RunWithArgs("test", []string{"--driver", "sqlite", "status"}))
	})
}

func TestSchemaSubcommandRecognized(t *testing.T) {
	path := sqliteEnv(t)
	output := captureOutput(t, func() {
		assert.NoError(t, RunWithArgs("test", []string{"--driver", "sqlite", "schema"}))
	})

	assert.Contains(t, output, "Schema history_to_drive is ready (sqlite)")
	_, err := os.Stat(path)
	assert.NoError(t, err, "sqlite database created with its directory")
}

func TestAllSubcommandsExist(t *testing.T) {
	expected := []string{"import", "schema", "status"}
	parser, _, _ := buildParser("test")

	for _, name := range expected {
		cmd := parser.Find(name)
		assert.NotNil(t, cmd, "subcommand %q should exist", name)
	}
}

func TestUnknownSubcommandFails(t *testing.T) {
	parser, _, _ := buildParser("test")
	parser.Options &^= goflags.PrintErrors
	_, err := parser.ParseArgs([]string{"nonexistent"})
	require.Error(t, err)
}

func TestHelpFlagDoesNotError(t *testing.T) {
	captureOutput(t, func() {
		err := RunWithArgs("test", []string{"--help"})
		assert.NoError(t, err)
	})
}

func TestGlobalFlags(t *testing.T) {
	sqliteEnv(t)
	parser, globals, _ := buildParser("test")
	captureOutput(t, func() {
		_, err := parser.ParseArgs([]string{"--json", "--verbose", "--driver", "sqlite", "status"})
		require.NoError(t, err)
	})

	assert.True(t, globals.JSON)
	assert.True(t, globals.Verbose)
	assert.Equal(t, "sqlite", globals.Driver)
}

func TestDriverFlagRejectsUnknownBackend(t *testing.T) {
	parser, _, _ := buildParser("test")
	parser.Options &^= goflags.PrintErrors
	_, err := parser.ParseArgs([]string{"--driver", "mysql", "status"})

	var flagsErr *goflags.Error
	require.True(t, errors.As(err, &flagsErr))
	assert.Equal(t, goflags.ErrInvalidChoice, flagsErr.Type)
}

func TestGlobalFlagsConfig(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "custom.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  driver: sqlite\n  url_env: HISTORYDB_DB\n"), 0644))
	t.Setenv("HISTORYDB_DB", dbPath)

	parser, globals, _ := buildParser("test")
	captureOutput(t, func() {
		_, err := parser.ParseArgs([]string{"--config", cfgPath, "schema"})
		require.NoError(t, err)
	})

	assert.Equal(t, cfgPath, globals.Config)
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestMissingConfigFileIsConfigError(t *testing.T) {
	err := RunWithArgs("test", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "status"})
	var ce *history.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestMissingConnectionVariable(t *testing.T) {
	isolateConfig(t)
	t.Setenv("POSTGRESQL_URL", "")

	err := RunWithArgs("test", []string{"status"})
	var ce *history.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "POSTGRESQL_URL")
}
