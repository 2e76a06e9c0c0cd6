package importer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/historydb/internal/history"
	"github.com/runnerr0/historydb/internal/sheet"
	"github.com/runnerr0/historydb/internal/storage"
)

// DefaultBatchSize is the number of records committed per transaction.
const DefaultBatchSize = 1000

// Writer persists decoded records in fixed-size transactional batches.
type Writer struct {
	store     storage.Store
	batchSize int
	log       logrus.FieldLogger
}

// NewWriter returns a Writer committing every batchSize records. A
// non-positive batchSize selects DefaultBatchSize.
func NewWriter(store storage.Store, batchSize int, log logrus.FieldLogger) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{store: store, batchSize: batchSize, log: log}
}

// Write decodes every row from rows and inserts the records newer than wm,
// tagged with wm.Origin. It returns the number of records committed.
//
// Any error aborts the import: the open batch is rolled back while batches
// already committed stay in place, and the returned count covers exactly
// those.
func (w *Writer) Write(ctx context.Context, wm Watermark, rows sheet.Reader) (committed int, err error) {
	var (
		batch   storage.Batch
		pending int
		batchNo int
	)

	defer func() {
		if err != nil && batch != nil {
			if rbErr := batch.Rollback(ctx); rbErr != nil {
				w.log.WithError(rbErr).Warn("rollback failed")
			}
			if pending > 0 {
				w.log.WithFields(logrus.Fields{"batch": batchNo, "discarded": pending}).Warn("batch discarded")
			}
		}
	}()

	for rows.Next() {
		rec, ok, err := history.DecodeRow(rows.Cells())
		if err != nil {
			return committed, err
		}
		if !ok || !wm.Admits(rec.Timestamp) {
			continue
		}
		rec.Origin = wm.Origin

		if batch == nil {
			if batch, err = w.store.Begin(ctx); err != nil {
				return committed, err
			}
			batchNo++
		}
		if err := batch.Insert(ctx, &rec); err != nil {
			return committed, err
		}
		pending++

		if pending == w.batchSize {
			if err := w.commit(ctx, batch, batchNo, pending); err != nil {
				return committed, err
			}
			committed += pending
			pending = 0
			batch = nil
		}
	}
	if err := rows.Err(); err != nil {
		return committed, err
	}

	if batch != nil {
		if err := w.commit(ctx, batch, batchNo, pending); err != nil {
			return committed, err
		}
		committed += pending
		batch = nil
	}
	return committed, nil
}

func (w *Writer) commit(ctx context.Context, batch storage.Batch, batchNo, n int) error {
	if err := batch.Commit(ctx); err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{"batch": batchNo, "inserted": n}).Debug("batch committed")
	return nil
}
