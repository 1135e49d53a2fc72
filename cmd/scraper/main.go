// Command scraper collects supplier catalogs and upserts them through the
// import pipeline.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	"github.com/QJQnova/Eps-sub001/internal/config"
	"github.com/QJQnova/Eps-sub001/internal/controllers"
	"github.com/QJQnova/Eps-sub001/internal/database"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/llm"
	"github.com/QJQnova/Eps-sub001/internal/logger"
	"github.com/QJQnova/Eps-sub001/internal/scraper"
	"github.com/QJQnova/Eps-sub001/internal/services"
	"go.uber.org/zap"
)

type options struct {
	supplier      string
	all           bool
	dryRun        bool
	mirrorImages  bool
	suppliersFile string
	mode          importer.Mode
}

func parseFlags(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("scraper", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		opts options
		mode string
	)
	fs.StringVar(&opts.supplier, "supplier", "", "supplier id to scrape")
	fs.BoolVar(&opts.all, "all", false, "scrape every active supplier")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "print records as JSON instead of importing them")
	fs.BoolVar(&opts.mirrorImages, "mirror-images", false, "copy product images to S3")
	fs.StringVar(&opts.suppliersFile, "suppliers-file", "", "JSON file replacing or adding suppliers")
	fs.StringVar(&mode, "mode", string(importer.ModeUpsert), "insert or upsert")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.all == (opts.supplier != "") {
		return opts, errors.New("exactly one of --supplier or --all is required")
	}
	m, err := importer.ParseMode(mode)
	if err != nil {
		return opts, err
	}
	opts.mode = m
	return opts, nil
}

// selectSuppliers resolves the suppliers a run covers.
func selectSuppliers(reg *scraper.Registry, opts options) ([]scraper.Supplier, error) {
	if opts.all {
		active := reg.Active()
		if len(active) == 0 {
			return nil, errors.New("no active suppliers")
		}
		return active, nil
	}
	sup, ok := reg.Get(opts.supplier)
	if !ok {
		return nil, fmt.Errorf("unknown supplier %q", opts.supplier)
	}
	return []scraper.Supplier{sup}, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	cfg.ApplySecrets(ctx)

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log, err := logger.Initialize(cfg.Env, cfg.LogWriter(ctx, "scraper"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		return 1
	}
	defer log.Sync()

	reg, err := scraper.LoadRegistry(opts.suppliersFile)
	if err != nil {
		log.Error("Failed to load suppliers", zap.Error(err))
		return 1
	}
	suppliers, err := selectSuppliers(reg, opts)
	if err != nil {
		log.Error("No suppliers to scrape", zap.Error(err))
		return 1
	}

	scrOpts := scraper.Options{Logger: log}
	if client := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel); client.Enabled() {
		scrOpts.Extractor = client
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, suppliers without selectors will fail")
	}

	var svcOpts services.ImportServiceOptions
	svcOpts.BatchSize = cfg.ImportBatchSize
	if opts.mirrorImages || cfg.ImportEventsTopic != "" || cfg.CloudWatchEnabled {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil && opts.mirrorImages {
			log.Error("AWS config unavailable, cannot mirror images", zap.Error(err))
			return 1
		}
		if err == nil {
			if opts.mirrorImages {
				if cfg.S3Bucket == "" {
					log.Error("--mirror-images needs AWS_S3_BUCKET")
					return 1
				}
				scrOpts.Images = aws_pkg.NewImageStore(awsCfg, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicURL)
			}
			if cfg.ImportEventsTopic != "" {
				svcOpts.Events = aws_pkg.NewSNSClient(awsCfg)
				svcOpts.EventsTopic = cfg.ImportEventsTopic
			}
			if cfg.CloudWatchEnabled {
				svcOpts.Metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace)
			}
		}
	}
	scr := scraper.New(scrOpts)

	var imports *services.ImportService
	if !opts.dryRun {
		if err := cfg.RequireDatabase(); err != nil {
			log.Error("Invalid configuration", zap.Error(err))
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
		if rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log); err == nil {
			defer rdb.Close()
			svcOpts.Cache = controllers.NewCacheManager(rdb, cfg.CacheTTL)
		} else {
			log.Warn("Redis unavailable, product cache will not be invalidated", zap.Error(err))
		}
		imports = services.NewImportService(importer.NewGormStore(db), log, svcOpts)
	}

	failed := 0
	for _, sup := range suppliers {
		if ctx.Err() != nil {
			break
		}
		if err := scrapeOne(ctx, log, scr, imports, sup, opts); err != nil {
			log.Error("Supplier failed", zap.String("supplier", sup.ID), zap.Error(err))
			failed++
		}
	}

	if ctx.Err() != nil {
		log.Warn("Scraping interrupted")
		return 1
	}
	if failed > 0 {
		log.Error("Scraping finished with failures", zap.Int("failed", failed), zap.Int("suppliers", len(suppliers)))
		return 1
	}
	log.Info("Scraping finished", zap.Int("suppliers", len(suppliers)))
	return 0
}

func scrapeOne(ctx context.Context, log *zap.Logger, scr *scraper.Scraper, imports *services.ImportService, sup scraper.Supplier, opts options) error {
	log = log.With(zap.String("supplier", sup.ID))
	log.Info("Scraping supplier", zap.String("name", sup.Name), zap.Int("pages", len(sup.CatalogURLs)))

	records, err := scr.ScrapeSupplier(ctx, sup)
	if err != nil {
		return err
	}
	log.Info("Supplier scraped", zap.Int("records", len(records)))
	if len(records) == 0 {
		return nil
	}

	if opts.mirrorImages {
		n := scr.MirrorImages(ctx, records)
		log.Info("Images mirrored", zap.Int("mirrored", n))
	}

	if opts.dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"supplier": sup.ID, "records": records})
	}

	report, err := imports.ImportRecords(ctx, "scraper:"+sup.ID, records, importer.Options{
		Mode:   opts.mode,
		Source: "scraper:" + sup.ID,
		Tag:    sup.ID,
	})
	if report != nil {
		log.Info("Supplier imported",
			zap.Int("total", report.Total),
			zap.Int("imported", report.Imported),
			zap.Int("updated", report.Updated),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
		)
	}
	return err
}
