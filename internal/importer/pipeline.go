package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const minNameRunes = 3

// Pipeline runs one import: read records, validate each row, resolve its
// category and slug, then batch-write.
type Pipeline struct {
	ic *ImportContext
}

func NewPipeline(ic *ImportContext) *Pipeline {
	return &Pipeline{ic: ic}
}

// SourceKey identifies a source's content under a mode for the resume cursor.
func SourceKey(fingerprint string, mode Mode) string {
	return fingerprint + ":" + string(mode)
}

// Fingerprint hashes source content.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Run imports src. Cancelling ctx stops between rows; chunks already
// written stay written and the partial report is returned with ctx's error.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Report, error) {
	ic := p.ic
	opts := ic.Options
	start := time.Now()

	name := opts.Source
	if name == "" {
		name = src.Name()
	}
	report := newReport(name, opts.Mode)

	records, err := src.Records()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}
	if es, ok := src.(interface{ Encoding() Encoding }); ok {
		report.Encoding = es.Encoding()
	}

	key := SourceKey(src.Fingerprint(), opts.Mode)
	resumeFrom := opts.ResumeFrom
	if resumeFrom == 0 && opts.Resume {
		if resumeFrom, err = ic.Store.LoadCursor(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to load import cursor: %w", err)
		}
	}

	writer := NewBatchWriter(ic.Store, opts.BatchSize, opts.Mode, report, ic.Logger,
		func(ctx context.Context, next int) error {
			return ic.Store.SaveCursor(ctx, key, next)
		})

	ic.Logger.Info("Import started",
		zap.Int("records", len(records)),
		zap.Int("resume_from", resumeFrom),
		zap.Int("batch_size", opts.BatchSize),
	)

	var runErr error
	for offset, rec := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if offset < resumeFrom {
			report.Resumed++
			continue
		}
		report.Total++

		res := p.processRow(ctx, offset, rec)
		if !res.OK() {
			report.skip(res.Line, rec.SKU, res.Reason, res.Err)
			continue
		}
		writer.Add(ctx, res.Row)
	}
	if runErr == nil {
		writer.Flush(ctx)
	}

	report.CategoriesCreated = len(ic.Categories.Created())
	if touched := writer.TouchedCategories(); len(touched) > 0 {
		if err := ic.Store.RecountCategories(ctx, touched); err != nil {
			ic.Logger.Warn("Failed to recount category products", zap.Error(err))
		}
	}

	report.Duration = time.Since(start)
	report.DurationMS = report.Duration.Milliseconds()
	p.recordMetrics(ctx, report)

	ic.Logger.Info("Import finished",
		zap.Int("total", report.Total),
		zap.Int("imported", report.Imported),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("categories_created", report.CategoriesCreated),
		zap.Duration("duration", report.Duration),
	)
	return report, runErr
}

func (p *Pipeline) processRow(ctx context.Context, offset int, rec Record) RowResult {
	ic := p.ic
	res := RowResult{Line: rec.Line}

	if rec.Columns > 0 && rec.Columns < 3 {
		res.Reason = ReasonShortRow
		return res
	}
	if utf8.RuneCountInString(rec.Name) < minNameRunes {
		res.Reason = ReasonMissingName
		return res
	}
	if rec.SKU == "" {
		res.Reason = ReasonMissingSKU
		return res
	}
	price, ok := ParsePrice(rec.Price)
	if !ok || !price.IsPositive() {
		res.Reason = ReasonInvalidPrice
		res.Err = fmt.Errorf("unusable price %q", rec.Price)
		return res
	}
	// claimed below, only once the row is ready to write
	if ic.Dedupe.HasSKU(rec.SKU) {
		res.Reason = ReasonDuplicateSKU
		return res
	}

	categoryName := rec.Category
	if categoryName == "" {
		categoryName = ic.Options.DefaultCategory
	}
	if categoryName == "" {
		categoryName = GuessCategory(rec.Name)
	}
	categoryID, err := ic.Categories.Resolve(ctx, categoryName)
	if err != nil {
		ic.Logger.Error("Category resolution failed",
			zap.Int("line", rec.Line),
			zap.String("category", categoryName),
			zap.Error(err),
		)
		res.Reason = ReasonCategoryError
		res.Err = err
		return res
	}

	slug, err := ic.Dedupe.UniqueSlug(ctx, Slugify(rec.Name))
	if err != nil {
		res.Reason = ReasonWriteFailed
		res.Err = err
		return res
	}

	ic.Dedupe.ClaimSKU(rec.SKU)
	res.Row = &ParsedRow{
		Line:       rec.Line,
		Offset:     offset,
		Record:     rec,
		Price:      price,
		CategoryID: categoryID,
		Product:    buildProduct(rec, price, categoryID, slug, ic.Options.Tag),
	}
	return res
}

func buildProduct(rec Record, price decimal.Decimal, categoryID uint, slug, tag string) models.Product {
	description := CleanDescription(rec.Description)
	if description == "" {
		description = rec.Name + " - профессиональный инструмент"
	}
	short := truncateRunes(description, shortDescRunes)

	p := models.Product{
		SKU:              rec.SKU,
		Name:             truncateRunes(rec.Name, 500),
		Slug:             slug,
		Description:      &description,
		ShortDescription: &short,
		Stock:            ParseStock(rec.Availability),
		Price:            price,
		CategoryID:       categoryID,
		IsActive:         true,
	}
	if rec.ImageURL != "" {
		img := rec.ImageURL
		p.ImageURL = &img
	}
	if tag != "" {
		t := tag
		p.Tag = &t
	}
	return p
}

func (p *Pipeline) recordMetrics(ctx context.Context, r *Report) {
	m := p.ic.Metrics
	if m == nil {
		return
	}
	dims := map[string]string{"Mode": string(r.Mode)}
	counts := map[string]int{
		aws_pkg.MetricImportRowsImported: r.Imported,
		aws_pkg.MetricImportRowsUpdated:  r.Updated,
		aws_pkg.MetricImportRowsSkipped:  r.Skipped,
		aws_pkg.MetricImportRowsFailed:   r.Failed,
	}
	var errs []error
	for name, v := range counts {
		errs = append(errs, m.RecordCount(ctx, name, float64(v), dims))
	}
	errs = append(errs, m.RecordLatency(ctx, aws_pkg.MetricImportDuration, r.Duration, dims))
	if err := errors.Join(errs...); err != nil {
		p.ic.Logger.Warn("Failed to publish import metrics", zap.Error(err))
	}
}
