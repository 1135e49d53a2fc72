package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// pollTimeout bounds each BLPOP so the worker notices shutdown.
const pollTimeout = 5 * time.Second

// StartBulkImportWorker consumes job ids from the redis queue and imports
// the persisted files. The returned channel closes when the worker exits
// after ctx is cancelled.
func StartBulkImportWorker(ctx context.Context, queue *JobQueue, imports *ImportService) <-chan struct{} {
	done := make(chan struct{})
	if queue == nil || imports == nil {
		zap.L().Warn("bulk import worker not started: missing dependencies")
		close(done)
		return done
	}

	go func() {
		defer close(done)
		zap.L().Info("bulk import worker started",
			zap.String("queue", BulkImportQueueKey),
			zap.String("dir", queue.storageDir),
		)
		for {
			if ctx.Err() != nil {
				zap.L().Info("bulk import worker stopping")
				return
			}

			jobID, err := queue.Next(ctx, pollTimeout)
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				zap.L().Error("redis BLPop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			ProcessJob(ctx, queue, imports, jobID)
		}
	}()
	return done
}

// ProcessJob runs one queued import and records its outcome on the job.
func ProcessJob(ctx context.Context, queue *JobQueue, imports *ImportService, jobID string) {
	log := zap.L().With(zap.String("job", jobID))

	job, err := queue.Get(ctx, jobID)
	if err != nil {
		log.Error("failed to read job metadata", zap.Error(err))
		return
	}

	started := time.Now().UTC()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &started
	if err := queue.Save(ctx, job); err != nil {
		log.Warn("failed to mark job processing", zap.Error(err))
	}

	finish := func(report *importer.Report, runErr error) {
		finished := time.Now().UTC()
		job.FinishedAt = &finished
		if report != nil {
			job.Result = report
		}
		if runErr != nil {
			job.Status = models.JobStatusFailed
			job.Error = runErr.Error()
			log.Error("bulk import processing failed", zap.Error(runErr))
		} else {
			job.Status = models.JobStatusDone
		}
		// record the outcome even when shutdown cancelled the run
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := queue.Save(saveCtx, job); err != nil {
			log.Error("failed to store job result", zap.Error(err))
		}
		_ = os.Remove(job.FilePath)
	}

	data, err := os.ReadFile(filepath.Clean(job.FilePath))
	if err != nil {
		finish(nil, err)
		return
	}
	mode, err := importer.ParseMode(job.Mode)
	if err != nil {
		finish(nil, err)
		return
	}

	report, err := imports.ImportFile(ctx, job.FileName, data, importer.Options{
		Mode:            mode,
		Source:          job.FileName,
		DefaultCategory: job.DefaultCategory,
	})
	finish(report, err)
}
