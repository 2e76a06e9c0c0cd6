package history

import (
	"errors"
	"time"
)

// MinColumns is the number of leading positional columns every row must carry.
const MinColumns = 6

// Column positions in an export row.
const (
	colTimestamp = iota
	colTags
	colTitle
	colHost
	colURL
	colUserAgent
)

var columnNames = [MinColumns]string{"timestamp", "tags", "title", "host", "url", "user_agent"}

// timestampLayouts are tried in order; all of them require an explicit offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02t15:04:05.999999999Z07:00",
}

// ParseTimestamp parses an RFC 3339 timestamp and returns it in UTC,
// truncated to the microsecond precision of the timestamp column.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Microsecond), true
		}
	}
	return time.Time{}, false
}

// DecodeRow turns an export row into a candidate Record. ok is false, with a
// nil error, when the timestamp cell does not parse: such rows are treated as
// non-data (stray headers, footers) and skipped. A row with too few columns
// fails with a *SchemaViolation; a malformed cell in any column but the title
// fails with a *CellError.
func DecodeRow(cells []Cell) (rec Record, ok bool, err error) {
	if len(cells) < MinColumns {
		return Record{}, false, &SchemaViolation{Columns: len(cells)}
	}

	var values [MinColumns]string
	for i := 0; i < MinColumns; i++ {
		v, err := cells[i].Normalize()
		if err != nil {
			if i == colTitle {
				// #NAME? and friends are common in exported titles.
				v = ""
			} else {
				return Record{}, false, withColumn(err, columnNames[i])
			}
		}
		values[i] = v
	}

	ts, parsed := ParseTimestamp(values[colTimestamp])
	if !parsed {
		return Record{}, false, nil
	}

	return Record{
		Timestamp: ts,
		Title:     Truncate(values[colTitle], MaxTitleLen),
		Host:      Truncate(values[colHost], MaxHostLen),
		URL:       Truncate(values[colURL], MaxURLLen),
		UserAgent: Truncate(values[colUserAgent], MaxUserAgentLen),
		Tags:      NormalizeTags(values[colTags]),
	}, true, nil
}

func withColumn(err error, column string) error {
	var ce *CellError
	if errors.As(err, &ce) {
		return &CellError{Column: column, Detail: ce.Detail}
	}
	return err
}
