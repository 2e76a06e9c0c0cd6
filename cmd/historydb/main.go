// historydb imports browser history exports into a relational store.
//
// Usage:
//
//	historydb import FILE...   # import exports, newest rows only
//	historydb schema           # create tables and indexes
//	historydb status           # counts and per-origin watermarks
package main

import (
	"os"

	"github.com/runnerr0/historydb/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// The parser already reports errors on stderr.
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
