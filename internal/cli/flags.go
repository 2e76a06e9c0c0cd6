package cli

import "github.com/runnerr0/historydb/internal/storage"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Driver  string `long:"driver" description:"Store backend, overrides store.driver" choice:"postgres" choice:"sqlite"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ImportCommand imports export files into the store.
type ImportCommand struct {
	BatchSize int    `long:"batch-size" description:"Records committed per transaction, overrides import.batch_size"`
	Sheet     string `long:"sheet" description:"Worksheet to read from XLSX files, overrides import.sheet"`

	Args struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
	store   storage.Store // injectable for testing; nil means open from config
}

// SchemaCommand runs the schema bootstrapper only.
type SchemaCommand struct {
	globals *GlobalFlags
	version string
	store   storage.Store
}

// StatusCommand shows store statistics and per-origin watermarks.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	store   storage.Store
}
