// Package importer loads browser history exports into the store, one file
// at a time, skipping rows already covered by each origin's watermark.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/runnerr0/historydb/internal/history"
	"github.com/runnerr0/historydb/internal/sheet"
	"github.com/runnerr0/historydb/internal/storage"
)

// Options configures an Importer.
type Options struct {
	BatchSize int
	Sheet     string
	// Out receives the human-readable progress lines. Defaults to os.Stdout.
	Out io.Writer
	Log logrus.FieldLogger
}

// Importer drives imports against one store.
type Importer struct {
	store     storage.Store
	batchSize int
	sheet     sheet.Options
	out       io.Writer
	log       logrus.FieldLogger
}

// FileResult is the outcome of importing one file.
type FileResult struct {
	Path      string
	Origin    string
	Watermark Watermark
	Inserted  int
	Duration  time.Duration
	Err       error
}

// New returns an Importer writing to store.
func New(store storage.Store, opts Options) *Importer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Importer{
		store:     store,
		batchSize: opts.BatchSize,
		sheet:     sheet.Options{Sheet: opts.Sheet},
		out:       opts.Out,
		log:       opts.Log,
	}
}

// CheckFiles verifies every path exists before anything is imported.
func CheckFiles(paths []string) error {
	if len(paths) == 0 {
		return &history.ConfigError{Detail: "expecting one or more paths to an export file"}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return &history.ConfigError{Detail: fmt.Sprintf("could not find file at %s", p), Err: err}
		}
		if info.IsDir() {
			return &history.ConfigError{Detail: fmt.Sprintf("%s is a directory", p)}
		}
	}
	return nil
}

// Run imports paths in order. Every path must exist, otherwise nothing is
// imported and a *history.ConfigError is returned. A file that fails does
// not stop the run; the returned error then counts the failed files.
func (im *Importer) Run(ctx context.Context, paths []string) ([]FileResult, error) {
	if err := CheckFiles(paths); err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(paths))
	failed := 0
	for _, p := range paths {
		res := im.ImportFile(ctx, p)
		if res.Err != nil {
			failed++
		}
		results = append(results, res)
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d files failed to import", failed, len(paths))
	}
	return results, nil
}

// ImportFile imports a single export file. The origin is the file's base
// name; its watermark is resolved fresh for every call.
func (im *Importer) ImportFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	name := filepath.Base(path)
	res := FileResult{Path: path, Origin: history.OriginFor(name)}
	log := im.log.WithFields(logrus.Fields{
		"file":   path,
		"origin": res.Origin,
		"run_id": uuid.NewString(),
	})

	fmt.Fprintf(im.out, "Importing %s ...\n", name)

	res.Inserted, res.Watermark, res.Err = im.importFile(ctx, path, res.Origin, log)
	res.Duration = time.Since(start)

	if res.Err != nil {
		fmt.Fprintf(im.out, "Import of %s failed after %d rows: %v\n", name, res.Inserted, res.Err)
		log.WithError(res.Err).WithField("inserted", res.Inserted).Error("import failed")
		return res
	}
	fmt.Fprintf(im.out, "Done inserting %d history rows\n", res.Inserted)
	log.WithFields(logrus.Fields{
		"inserted": res.Inserted,
		"duration": res.Duration.String(),
	}).Info("import finished")
	return res
}

func (im *Importer) importFile(ctx context.Context, path, origin string, log logrus.FieldLogger) (int, Watermark, error) {
	wm, err := ResolveWatermark(ctx, im.store, origin)
	if err != nil {
		return 0, Watermark{}, fmt.Errorf("resolve watermark: %w", err)
	}
	if wm.Found {
		fmt.Fprintf(im.out, "Max timestamp of %s found for %s, skipping records before then\n",
			wm.At.Format(time.RFC3339Nano), origin)
	} else {
		fmt.Fprintf(im.out, "No previous records found for %s\n", origin)
	}
	log.WithFields(logrus.Fields{"watermark": wm.At, "found": wm.Found}).Debug("watermark resolved")

	rows, err := sheet.Open(path, im.sheet)
	if err != nil {
		return 0, wm, err
	}
	defer rows.Close()

	n, err := NewWriter(im.store, im.batchSize, log).Write(ctx, wm, rows)
	return n, wm, err
}
