package history

import (
	"fmt"
	"strconv"
)

// CellKind identifies which variant a Cell holds.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindError
)

func (k CellKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindError:
		return "error"
	}
	return fmt.Sprintf("CellKind(%d)", int(k))
}

// Cell is one raw value read from a tabular source. Only the field matching
// Kind is meaningful; Text also carries the description of an error cell.
type Cell struct {
	Kind  CellKind
	Text  string
	Int   int64
	Float float64
	Bool  bool
}

func TextCell(s string) Cell     { return Cell{Kind: KindText, Text: s} }
func IntCell(n int64) Cell       { return Cell{Kind: KindInt, Int: n} }
func FloatCell(f float64) Cell   { return Cell{Kind: KindFloat, Float: f} }
func BoolCell(b bool) Cell       { return Cell{Kind: KindBool, Bool: b} }
func ErrorCell(desc string) Cell { return Cell{Kind: KindError, Text: desc} }
func EmptyCell() Cell            { return Cell{Kind: KindEmpty} }

// Normalize returns the canonical string form of the cell. Error cells fail
// with a *CellError carrying the cell's description.
func (c Cell) Normalize() (string, error) {
	switch c.Kind {
	case KindText:
		return c.Text, nil
	case KindInt:
		return strconv.FormatInt(c.Int, 10), nil
	case KindFloat:
		return strconv.FormatFloat(c.Float, 'f', -1, 64), nil
	case KindBool:
		if c.Bool {
			return "true", nil
		}
		return "false", nil
	case KindEmpty:
		return "", nil
	case KindError:
		return "", &CellError{Detail: "Error: " + c.Text}
	default:
		return "", &CellError{Detail: "unknown cell kind " + c.Kind.String()}
	}
}
