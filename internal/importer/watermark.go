package importer

import (
	"context"
	"time"

	"github.com/runnerr0/historydb/internal/storage"
)

// Watermark is the dedup boundary for one origin: only records strictly
// newer than At are imported.
type Watermark struct {
	Origin string
	At     time.Time
	// Found is false when the store holds no records for Origin, in which
	// case At is the zero time and every record is new.
	Found bool
}

// Admits reports whether a record with timestamp ts lies past the watermark.
func (w Watermark) Admits(ts time.Time) bool {
	if !w.Found {
		return true
	}
	return ts.After(w.At)
}

// ResolveWatermark reads the latest stored timestamp for origin. It assumes
// each origin's timestamps never decrease in file order.
func ResolveWatermark(ctx context.Context, store storage.Store, origin string) (Watermark, error) {
	ts, found, err := store.MaxTimestamp(ctx, origin)
	if err != nil {
		return Watermark{}, err
	}
	return Watermark{Origin: origin, At: ts, Found: found}, nil
}
