package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/historydb/internal/history"
)

const utf8BOM = "\uFEFF"

type csvReader struct {
	f     *os.File
	r     *csv.Reader
	cells []history.Cell
	first bool
	err   error
}

// OpenCSV opens a comma-separated export. Every non-empty field is a text
// cell; empty fields are empty cells.
func OpenCSV(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true
	return &csvReader{f: f, r: r, first: true}, nil
}

func (c *csvReader) Next() bool {
	if c.err != nil {
		return false
	}
	rec, err := c.r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.err = fmt.Errorf("read csv: %w", err)
		}
		return false
	}
	if c.first {
		c.first = false
		if len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
		}
	}

	c.cells = c.cells[:0]
	for _, v := range rec {
		if v == "" {
			c.cells = append(c.cells, history.EmptyCell())
			continue
		}
		c.cells = append(c.cells, history.TextCell(v))
	}
	return true
}

func (c *csvReader) Cells() []history.Cell { return c.cells }

func (c *csvReader) Err() error { return c.err }

func (c *csvReader) Close() error { return c.f.Close() }
