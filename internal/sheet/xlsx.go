package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/runnerr0/historydb/internal/history"
)

type xlsxReader struct {
	f     *excelize.File
	rows  *excelize.Rows
	sheet string
	width int
	row   int
	cells []history.Cell
	err   error
}

// OpenXLSX opens the named worksheet of a workbook. A workbook without that
// worksheet fails with a *history.SchemaViolation.
func OpenXLSX(path, sheet string) (Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		f.Close()
		return nil, &history.SchemaViolation{Detail: fmt.Sprintf("cannot find worksheet %q", sheet)}
	}

	width, err := usedWidth(f, sheet)
	if err != nil {
		f.Close()
		return nil, err
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}

	return &xlsxReader{f: f, rows: rows, sheet: sheet, width: width}, nil
}

// usedWidth returns the column count of the worksheet's used range, so rows
// with trailing empty cells keep their full width. The stored dimension may
// be missing or stale, so the widest row present also counts.
func usedWidth(f *excelize.File, sheet string) (int, error) {
	width, err := dimensionWidth(f, sheet)
	if err != nil {
		return 0, err
	}
	widest, err := widestRow(f, sheet)
	if err != nil {
		return 0, err
	}
	if widest > width {
		width = widest
	}
	return width, nil
}

func dimensionWidth(f *excelize.File, sheet string) (int, error) {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil {
		return 0, fmt.Errorf("worksheet dimension: %w", err)
	}
	if dim == "" {
		return 0, nil
	}
	parts := strings.Split(dim, ":")
	col, _, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return 0, fmt.Errorf("worksheet dimension %q: %w", dim, err)
	}
	return col, nil
}

// widestRow scans the worksheet once for the longest row.
func widestRow(f *excelize.File, sheet string) (int, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	defer rows.Close()

	widest := 0
	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return 0, fmt.Errorf("scan worksheet %q: %w", sheet, err)
		}
		if len(cols) > widest {
			widest = len(cols)
		}
	}
	if err := rows.Error(); err != nil {
		return 0, fmt.Errorf("scan worksheet %q: %w", sheet, err)
	}
	return widest, nil
}

func (x *xlsxReader) Next() bool {
	if x.err != nil || !x.rows.Next() {
		if x.err == nil {
			x.err = x.rows.Error()
		}
		return false
	}
	x.row++

	raw, err := x.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		x.err = fmt.Errorf("read row %d: %w", x.row, err)
		return false
	}

	n := len(raw)
	if n < x.width {
		n = x.width
	}
	x.cells = x.cells[:0]
	for col := 1; col <= n; col++ {
		value := ""
		if col <= len(raw) {
			value = raw[col-1]
		}
		c, err := x.cell(col, value)
		if err != nil {
			x.err = err
			return false
		}
		x.cells = append(x.cells, c)
	}
	return true
}

func (x *xlsxReader) cell(col int, value string) (history.Cell, error) {
	if value == "" {
		return history.EmptyCell(), nil
	}
	name, err := excelize.CoordinatesToCellName(col, x.row)
	if err != nil {
		return history.Cell{}, fmt.Errorf("cell name: %w", err)
	}
	typ, err := x.f.GetCellType(x.sheet, name)
	if err != nil {
		return history.Cell{}, fmt.Errorf("cell type %s: %w", name, err)
	}
	return typedCell(typ, value), nil
}

// typedCell maps an excelize cell type and raw value onto a history.Cell.
func typedCell(typ excelize.CellType, value string) history.Cell {
	switch typ {
	case excelize.CellTypeBool:
		return history.BoolCell(value == "1" || strings.EqualFold(value, "true"))
	case excelize.CellTypeError:
		return history.ErrorCell(value)
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return history.IntCell(n)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return history.FloatCell(f)
		}
		return history.TextCell(value)
	default:
		return history.TextCell(value)
	}
}

func (x *xlsxReader) Cells() []history.Cell { return x.cells }

func (x *xlsxReader) Err() error { return x.err }

func (x *xlsxReader) Close() error {
	if err := x.rows.Close(); err != nil {
		x.f.Close()
		return err
	}
	return x.f.Close()
}
