package history

import "fmt"

// CellError reports a cell that could not be turned into a string, such as
// a spreadsheet error marker (#NAME?, #REF!).
type CellError struct {
	Column string
	Detail string
}

func (e *CellError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("cell error: %s", e.Detail)
	}
	return fmt.Sprintf("cell error in column %s: %s", e.Column, e.Detail)
}

// SchemaViolation reports a source whose layout does not match the fixed
// six-column export format. It aborts the import of the whole file.
type SchemaViolation struct {
	Columns int
	Detail  string
}

func (e *SchemaViolation) Error() string {
	if e.Detail != "" {
		return "schema violation: " + e.Detail
	}
	return fmt.Sprintf("schema violation: only %d columns present, expected at least %d", e.Columns, MinColumns)
}

// StoreError wraps any failure reported by the relational store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ConfigError reports a problem with the run's inputs or settings. It aborts
// the whole run before any file is processed.
type ConfigError struct {
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Detail, e.Err)
	}
	return "config: " + e.Detail
}

func (e *ConfigError) Unwrap() error { return e.Err }
