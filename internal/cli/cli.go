package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Import *ImportCommand
	Schema *SchemaCommand
	Status *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "historydb"
	parser.LongDescription = "Incremental importer for browser history exports (XLSX/CSV) into a relational store."

	cmds := &commands{
		Import: &ImportCommand{globals: &globals, version: version},
		Schema: &SchemaCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("import", "Import history export files", "Import one or more export files in order, skipping rows at or before each file's watermark.", cmds.Import)
	parser.AddCommand("schema", "Create the store schema", "Create the history schema, tables and indexes if they do not exist.", cmds.Schema)
	parser.AddCommand("status", "Show store statistics", "Show record, tag and link counts and the watermark of every origin.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the historydb CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("historydb %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)
	return execute(parser, args)
}

func execute(parser *goflags.Parser, args []string) error {
	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
