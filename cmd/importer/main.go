// Command importer loads a price list (CSV, TXT, JSON, XML/YML, XLSX or a ZIP
// holding one of them) into the catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	"github.com/QJQnova/Eps-sub001/internal/config"
	"github.com/QJQnova/Eps-sub001/internal/controllers"
	"github.com/QJQnova/Eps-sub001/internal/database"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/logger"
	"github.com/QJQnova/Eps-sub001/internal/services"
	"go.uber.org/zap"
)

type options struct {
	file     string
	mode     importer.Mode
	batch    int
	resume   bool
	tag      string
	category string
}

func parseFlags(args []string, defaultBatch int, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		opts options
		mode string
	)
	fs.StringVar(&opts.file, "file", "", "price list to import (required)")
	fs.StringVar(&mode, "mode", string(importer.ModeInsert), "insert skips existing SKUs, upsert updates them")
	fs.IntVar(&opts.batch, "batch", defaultBatch, "rows per transaction")
	fs.BoolVar(&opts.resume, "resume", false, "continue after the last committed chunk of this file")
	fs.StringVar(&opts.tag, "tag", "", "tag stored on imported products")
	fs.StringVar(&opts.category, "category", "", "category for rows without one")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.file == "" {
		return opts, errors.New("--file is required")
	}
	if !importer.IsSupported(opts.file) {
		return opts, fmt.Errorf("unsupported file %s, expected one of %v", filepath.Base(opts.file), importer.SupportedExtensions)
	}
	m, err := importer.ParseMode(mode)
	if err != nil {
		return opts, err
	}
	opts.mode = m
	if opts.batch <= 0 {
		return opts, fmt.Errorf("--batch must be positive, got %d", opts.batch)
	}
	return opts, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	cfg.ApplySecrets(ctx)

	opts, err := parseFlags(os.Args[1:], cfg.ImportBatchSize, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log, err := logger.Initialize(cfg.Env, cfg.LogWriter(ctx, "importer"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		return 1
	}
	defer log.Sync()

	if err := cfg.RequireDatabase(); err != nil {
		log.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		log.Error("Failed to read file", zap.String("file", opts.file), zap.Error(err))
		return 1
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Error("Failed to migrate database", zap.Error(err))
		return 1
	}

	svcOpts := services.ImportServiceOptions{BatchSize: opts.batch}
	// a running storefront keeps serving stale listings unless the cache is bumped
	if rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log); err == nil {
		defer rdb.Close()
		svcOpts.Cache = controllers.NewCacheManager(rdb, cfg.CacheTTL)
	} else {
		log.Warn("Redis unavailable, product cache will not be invalidated", zap.Error(err))
	}
	if cfg.ImportEventsTopic != "" || cfg.CloudWatchEnabled {
		if awsCfg, err := aws_pkg.LoadAWSConfig(ctx, cfg.AWS); err == nil {
			if cfg.ImportEventsTopic != "" {
				svcOpts.Events = aws_pkg.NewSNSClient(awsCfg)
				svcOpts.EventsTopic = cfg.ImportEventsTopic
			}
			if cfg.CloudWatchEnabled {
				svcOpts.Metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace)
			}
		} else {
			log.Warn("AWS config unavailable, events and metrics disabled", zap.Error(err))
		}
	}

	imports := services.NewImportService(importer.NewGormStore(db), log, svcOpts)

	name := filepath.Base(opts.file)
	log.Info("Import started",
		zap.String("file", opts.file),
		zap.String("mode", string(opts.mode)),
		zap.Int("batch", opts.batch),
		zap.Bool("resume", opts.resume),
	)

	report, err := imports.ImportFile(ctx, name, data, importer.Options{
		Mode:            opts.mode,
		BatchSize:       opts.batch,
		Source:          name,
		Resume:          opts.resume,
		DefaultCategory: opts.category,
		Tag:             opts.tag,
	})
	if report != nil {
		logSummary(log, report)
	}
	if err != nil {
		log.Error("Import failed", zap.Error(err))
		return 1
	}
	return 0
}

func logSummary(log *zap.Logger, r *importer.Report) {
	fields := []zap.Field{
		zap.String("source", r.Source),
		zap.String("mode", string(r.Mode)),
		zap.String("encoding", string(r.Encoding)),
		zap.Int("total", r.Total),
		zap.Int("resumed", r.Resumed),
		zap.Int("imported", r.Imported),
		zap.Int("updated", r.Updated),
		zap.Int("skipped", r.Skipped),
		zap.Int("failed", r.Failed),
		zap.Int("categories_created", r.CategoriesCreated),
		zap.Int64("duration_ms", r.DurationMS),
	}
	for reason, n := range r.Skips {
		fields = append(fields, zap.Int("skip_"+string(reason), n))
	}
	log.Info("Import finished", fields...)

	for i, e := range r.Errors {
		if i == 20 {
			log.Info("More row errors omitted", zap.Int("count", len(r.Errors)-i))
			break
		}
		log.Warn("Row not imported", zap.Int("line", e.Line), zap.String("sku", e.SKU), zap.String("reason", string(e.Reason)), zap.String("error", e.Message))
	}
}
