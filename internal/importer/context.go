package importer

import (
	"fmt"
	"strings"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	"go.uber.org/zap"
)

// Mode selects how rows whose SKU is already stored are handled.
type Mode string

const (
	// ModeInsert leaves existing products untouched and counts the row as
	// duplicate_sku.
	ModeInsert Mode = "insert"
	// ModeUpsert refreshes the existing product keyed by SKU.
	ModeUpsert Mode = "upsert"
)

const DefaultBatchSize = 500

// ParseMode accepts "insert", "upsert" or "" (insert).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeInsert:
		return ModeInsert, nil
	case ModeUpsert:
		return ModeUpsert, nil
	}
	return "", fmt.Errorf("unknown import mode %q", s)
}

// Options tune one import run.
type Options struct {
	Mode      Mode
	BatchSize int
	// Source names the run in logs and reports.
	Source string
	// ResumeFrom skips data rows before this offset. When zero and Resume is
	// set, the offset stored for the source is used.
	ResumeFrom int
	Resume     bool
	// DefaultCategory is used for rows without a category instead of a
	// guess from the product name.
	DefaultCategory string
	Tag             string
}

// ImportContext carries everything one run needs. It is created fresh per
// run and never shared between runs.
type ImportContext struct {
	Store      Store
	Logger     *zap.Logger
	Metrics    aws_pkg.MetricsRecorder
	Options    Options
	Categories *CategoryResolver
	Dedupe     *Deduper
}

func NewImportContext(store Store, logger *zap.Logger, opts Options) *ImportContext {
	if logger == nil {
		logger = zap.L()
	}
	if opts.Mode == "" {
		opts.Mode = ModeInsert
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	logger = logger.With(zap.String("source", opts.Source), zap.String("mode", string(opts.Mode)))
	return &ImportContext{
		Store:      store,
		Logger:     logger,
		Options:    opts,
		Categories: NewCategoryResolver(store, logger),
		Dedupe:     NewDeduper(store.ProductSlugExists),
	}
}
