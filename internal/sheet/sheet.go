// Package sheet streams rows of typed cells out of tabular export files.
package sheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/runnerr0/historydb/internal/history"
)

// DefaultSheet is the worksheet read from workbooks unless configured otherwise.
const DefaultSheet = "Sheet1"

// Reader iterates over the rows of a source in file order.
type Reader interface {
	// Next advances to the next row. It returns false at the end of the
	// source or on error; check Err afterwards.
	Next() bool
	// Cells returns the current row. The slice is only valid until the
	// next call to Next.
	Cells() []history.Cell
	Err() error
	Close() error
}

// Options controls how a source is opened.
type Options struct {
	// Sheet names the worksheet to read from workbooks.
	Sheet string
}

// Open picks a reader for path based on its extension.
func Open(path string, opts Options) (Reader, error) {
	if opts.Sheet == "" {
		opts.Sheet = DefaultSheet
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return OpenXLSX(path, opts.Sheet)
	case ".csv":
		return OpenCSV(path)
	default:
		return nil, &history.ConfigError{Detail: fmt.Sprintf("unsupported file type %q for %s", ext, path)}
	}
}
