package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/runnerr0/historydb/internal/config"
	"github.com/runnerr0/historydb/internal/importer"
)

type importJSON struct {
	Files    []fileResultJSON `json:"files"`
	Inserted int              `json:"inserted"`
	Failed   int              `json:"failed"`
}

type fileResultJSON struct {
	Path       string `json:"path"`
	Origin     string `json:"origin"`
	Watermark  string `json:"watermark,omitempty"`
	Inserted   int    `json:"inserted"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	cfg, log, err := prepare(c.globals, func(cfg *config.Config) {
		if c.BatchSize != 0 {
			cfg.Import.BatchSize = c.BatchSize
		}
		if c.Sheet != "" {
			cfg.Import.Sheet = c.Sheet
		}
	})
	if err != nil {
		return err
	}
	defer log.Close()

	// The connection string and every input file are checked before the
	// store is touched.
	if c.store == nil {
		if _, err := cfg.StoreURL(); err != nil {
			return err
		}
	}
	if err := importer.CheckFiles(c.Args.Files); err != nil {
		return err
	}

	ctx := context.Background()
	store, release, err := connect(ctx, c.store, cfg)
	if err != nil {
		return err
	}
	defer release()

	if err := store.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	jsonOut := c.globals != nil && c.globals.JSON
	var out io.Writer = os.Stdout
	if jsonOut {
		out = io.Discard
	}

	im := importer.New(store, importer.Options{
		BatchSize: cfg.Import.BatchSize,
		Sheet:     cfg.Import.Sheet,
		Out:       out,
		Log:       log,
	})
	results, runErr := im.Run(ctx, c.Args.Files)

	if jsonOut && results != nil {
		if err := printImportJSON(results); err != nil {
			return err
		}
	}
	return runErr
}

func printImportJSON(results []importer.FileResult) error {
	out := importJSON{Files: make([]fileResultJSON, len(results))}
	for i, r := range results {
		f := fileResultJSON{
			Path:       r.Path,
			Origin:     r.Origin,
			Inserted:   r.Inserted,
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Watermark.Found {
			f.Watermark = r.Watermark.At.UTC().Format(time.RFC3339Nano)
		}
		if r.Err != nil {
			f.Error = r.Err.Error()
			out.Failed++
		}
		out.Inserted += r.Inserted
		out.Files[i] = f
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
