package services

import (
	"context"
	"errors"
	"time"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"go.uber.org/zap"
)

const EventImportCompleted = "import.completed"

// CacheInvalidator drops cached product listings.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ImportServiceOptions carries the optional collaborators of ImportService.
type ImportServiceOptions struct {
	BatchSize   int
	Cache       CacheInvalidator
	Metrics     aws_pkg.MetricsRecorder
	Events      aws_pkg.SNSPublisher
	EventsTopic string
}

// ImportSummary is the payload of the import.completed event.
type ImportSummary struct {
	Source   string `json:"source"`
	Mode     string `json:"mode"`
	Imported int    `json:"imported"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// ImportService runs the import pipeline for uploads, queued jobs and
// scraped records.
type ImportService struct {
	store  importer.Store
	logger *zap.Logger
	opts   ImportServiceOptions
}

func NewImportService(store importer.Store, logger *zap.Logger, opts ImportServiceOptions) *ImportService {
	if logger == nil {
		logger = zap.L()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = importer.DefaultBatchSize
	}
	return &ImportService{store: store, logger: logger, opts: opts}
}

// ImportFile picks a source for name by extension and imports it.
func (s *ImportService) ImportFile(ctx context.Context, name string, data []byte, opts importer.Options) (*importer.Report, error) {
	src, err := importer.SourceFromFile(name, data)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			return nil, apperrors.ErrUnsupportedFile.Wrap(err)
		}
		return nil, err
	}
	return s.Import(ctx, src, opts)
}

// ImportRecords imports records that are already in memory.
func (s *ImportService) ImportRecords(ctx context.Context, name string, records []importer.Record, opts importer.Options) (*importer.Report, error) {
	return s.Import(ctx, importer.NewRecordSource(name, records), opts)
}

// Import runs one pipeline over src. When anything was stored the product
// cache is invalidated, and a summary event is published.
func (s *ImportService) Import(ctx context.Context, src importer.Source, opts importer.Options) (*importer.Report, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = s.opts.BatchSize
	}
	ic := importer.NewImportContext(s.store, s.logger, opts)
	ic.Metrics = s.opts.Metrics

	report, err := importer.NewPipeline(ic).Run(ctx, src)
	if report == nil {
		return nil, err
	}

	// the run may have been cancelled after some chunks were committed
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if report.Success() > 0 && s.opts.Cache != nil {
		if cerr := s.opts.Cache.Invalidate(bg); cerr != nil {
			s.logger.Error("CRITICAL: Failed to invalidate cache after bulk import", zap.Error(cerr))
		}
	}
	summary := ImportSummary{
		Source:   report.Source,
		Mode:     string(report.Mode),
		Imported: report.Imported,
		Updated:  report.Updated,
		Skipped:  report.Skipped,
		Failed:   report.Failed,
	}
	if perr := aws_pkg.PublishEvent(bg, s.opts.Events, s.opts.EventsTopic, EventImportCompleted, summary); perr != nil {
		s.logger.Warn("Failed to publish import event", zap.Error(perr))
	}
	return report, err
}
