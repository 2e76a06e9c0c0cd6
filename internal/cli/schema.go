package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/historydb/internal/storage"
)

// Execute implements the go-flags Commander interface for SchemaCommand.
func (c *SchemaCommand) Execute(args []string) error {
	cfg, log, err := prepare(c.globals, nil)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx := context.Background()
	store, release, err := connect(ctx, c.store, cfg)
	if err != nil {
		return err
	}
	defer release()

	if err := store.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	log.WithField("driver", cfg.Store.Driver).Debug("schema bootstrapped")

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{"schema": storage.Schema, "driver": cfg.Store.Driver})
	}
	fmt.Printf("Schema %s is ready (%s)\n", storage.Schema, cfg.Store.Driver)
	return nil
}
