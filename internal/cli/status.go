package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/runnerr0/historydb/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version      string             `json:"version"`
	Driver       string             `json:"driver"`
	TotalHistory int64              `json:"total_history"`
	TotalTags    int64              `json:"total_tags"`
	TotalLinks   int64              `json:"total_links"`
	Origins      []originStatusJSON `json:"origins"`
}

type originStatusJSON struct {
	Origin string `json:"origin"`
	Count  int64  `json:"count"`
	Latest string `json:"latest"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
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
	return c.executeWithStore(ctx, store, cfg.Store.Driver)
}

// executeWithStore runs status against a provided store (for testing).
func (c *StatusCommand) executeWithStore(ctx context.Context, store storage.Store, driver string) error {
	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(stats, driver)
	}
	return c.printStatusHuman(stats, driver)
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, driver string) error {
	fmt.Println("History Store Status")
	fmt.Println("====================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Driver:        %s\n", driver)
	fmt.Printf("Records:       %s\n", humanize.Comma(stats.TotalHistory))
	fmt.Printf("Tags:          %s\n", humanize.Comma(stats.TotalTags))
	fmt.Printf("Tag links:     %s\n", humanize.Comma(stats.TotalLinks))

	if len(stats.Origins) == 0 {
		fmt.Println()
		fmt.Println("No origins imported yet.")
		return nil
	}

	fmt.Println()
	fmt.Println("Origins:")
	for _, o := range stats.Origins {
		fmt.Printf("  %-30s %10s  latest %s (%s)\n",
			o.Origin,
			humanize.Comma(o.Count),
			o.Latest.UTC().Format(time.RFC3339),
			humanize.Time(o.Latest),
		)
	}
	return nil
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, driver string) error {
	out := statusJSON{
		Version:      c.version,
		Driver:       driver,
		TotalHistory: stats.TotalHistory,
		TotalTags:    stats.TotalTags,
		TotalLinks:   stats.TotalLinks,
		Origins:      make([]originStatusJSON, len(stats.Origins)),
	}

	for i, o := range stats.Origins {
		out.Origins[i] = originStatusJSON{
			Origin: o.Origin,
			Count:  o.Count,
			Latest: o.Latest.UTC().Format(time.RFC3339Nano),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
