package importer

import (
	"context"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"go.uber.org/zap"
)

// CommitFunc is called after each committed chunk with the offset of the
// first data row not yet covered.
type CommitFunc func(ctx context.Context, nextOffset int) error

// BatchWriter buffers validated rows and writes them in chunks. A chunk
// that fails is abandoned as a whole; later chunks still run.
type BatchWriter struct {
	store    Store
	size     int
	upsert   bool
	report   *Report
	logger   *zap.Logger
	onCommit CommitFunc

	buf     []*ParsedRow
	touched map[uint]struct{}
	// held is set once a chunk fails; the cursor then stays at that chunk
	held bool
}

func NewBatchWriter(store Store, size int, mode Mode, report *Report, logger *zap.Logger, onCommit CommitFunc) *BatchWriter {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &BatchWriter{
		store:    store,
		size:     size,
		upsert:   mode == ModeUpsert,
		report:   report,
		logger:   logger,
		onCommit: onCommit,
		touched:  make(map[uint]struct{}),
	}
}

// Add buffers row and writes a chunk once the buffer is full.
func (w *BatchWriter) Add(ctx context.Context, row *ParsedRow) {
	w.buf = append(w.buf, row)
	if len(w.buf) >= w.size {
		w.Flush(ctx)
	}
}

// Flush writes everything buffered.
func (w *BatchWriter) Flush(ctx context.Context) {
	for len(w.buf) > 0 {
		n := w.size
		if n > len(w.buf) {
			n = len(w.buf)
		}
		w.writeChunk(ctx, w.buf[:n])
		w.buf = w.buf[n:]
	}
	w.buf = nil
}

// TouchedCategories lists categories that received products.
func (w *BatchWriter) TouchedCategories() []uint {
	ids := make([]uint, 0, len(w.touched))
	for id := range w.touched {
		ids = append(ids, id)
	}
	return ids
}

func (w *BatchWriter) writeChunk(ctx context.Context, chunk []*ParsedRow) {
	skus := make([]string, len(chunk))
	for i, r := range chunk {
		skus[i] = r.Product.SKU
	}

	existing, err := w.store.ExistingSKUs(ctx, skus)
	if err != nil {
		w.failChunk(ctx, chunk[0].Offset, chunk, err)
		return
	}

	rows := make([]*ParsedRow, 0, len(chunk))
	for _, r := range chunk {
		if existing[r.Product.SKU] && !w.upsert {
			w.report.skip(r.Line, r.Product.SKU, ReasonDuplicateSKU, nil)
			continue
		}
		rows = append(rows, r)
	}

	if len(rows) > 0 {
		products := make([]models.Product, len(rows))
		for i, r := range rows {
			products[i] = r.Product
		}

		affected, err := w.store.WriteProducts(ctx, products, w.upsert)
		if err != nil {
			w.failChunk(ctx, chunk[0].Offset, rows, err)
			return
		}

		if w.upsert {
			for _, r := range rows {
				if existing[r.Product.SKU] {
					w.report.Updated++
				} else {
					w.report.Imported++
				}
			}
		} else {
			w.report.Imported += int(affected)
			// rows that lost a race to another writer between the lookup and the insert
			if lost := len(rows) - int(affected); lost > 0 {
				w.report.Skipped += lost
				w.report.Skips[ReasonDuplicateSKU] += lost
			}
		}
		for _, r := range rows {
			w.touched[r.Product.CategoryID] = struct{}{}
		}
	}

	if !w.held {
		w.saveCursor(ctx, chunk[len(chunk)-1].Offset+1)
	}
}

func (w *BatchWriter) saveCursor(ctx context.Context, next int) {
	if w.onCommit == nil {
		return
	}
	if err := w.onCommit(ctx, next); err != nil {
		w.logger.Warn("Failed to save import cursor", zap.Int("offset", next), zap.Error(err))
	}
}

// failChunk reports rows as failed. The first failure pins the cursor at
// chunkStart so a resumed run retries the chunk; later commits in the same
// run leave the cursor there.
func (w *BatchWriter) failChunk(ctx context.Context, chunkStart int, rows []*ParsedRow, err error) {
	w.logger.Error("Import chunk failed",
		zap.Int("rows", len(rows)),
		zap.Int("first_line", rows[0].Line),
		zap.Int("last_line", rows[len(rows)-1].Line),
		zap.Error(err),
	)
	for _, r := range rows {
		w.report.fail(r.Line, r.Product.SKU, err)
	}
	if !w.held {
		w.held = true
		w.saveCursor(ctx, chunkStart)
	}
}
