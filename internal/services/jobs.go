package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	BulkImportQueueKey  = "bulk_import:queue"
	bulkImportJobPrefix = "bulk_import:job:"
	bulkImportJobTTL    = 24 * time.Hour

	DefaultBulkStorageDir = "./data/bulk_imports"
)

var ErrJobNotFound = apperrors.New(http.StatusNotFound, "Job not found", nil)

// JobQueue stores async import jobs in redis and their files on disk.
type JobQueue struct {
	redis      *redis.Client
	storageDir string
}

func NewJobQueue(rdb *redis.Client, storageDir string) *JobQueue {
	if storageDir == "" {
		storageDir = DefaultBulkStorageDir
	}
	return &JobQueue{redis: rdb, storageDir: storageDir}
}

func JobKey(id string) string {
	return bulkImportJobPrefix + id
}

// Enqueue persists the upload under its job id, keeping the original
// extension, and pushes the job onto the queue. Only the mode and default
// category of opts travel with the job.
func (q *JobQueue) Enqueue(ctx context.Context, fileName string, data []byte, opts importer.Options) (*models.BulkImportJob, error) {
	if err := os.MkdirAll(q.storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(fileName))
	filePath := filepath.Join(q.storageDir, id+ext)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to persist file: %w", err)
	}

	job := &models.BulkImportJob{
		ID:              id,
		Status:          models.JobStatusPending,
		FileName:        fileName,
		FilePath:        filePath,
		Mode:            string(opts.Mode),
		DefaultCategory: opts.DefaultCategory,
		CreatedAt:       time.Now().UTC(),
	}
	if err := q.Save(ctx, job); err != nil {
		os.Remove(filePath)
		return nil, err
	}
	if err := q.redis.RPush(ctx, BulkImportQueueKey, id).Err(); err != nil {
		os.Remove(filePath)
		q.redis.Del(ctx, JobKey(id))
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	zap.L().Info("Bulk import job queued", zap.String("job_id", id), zap.String("file", fileName))
	return job, nil
}

func (q *JobQueue) Get(ctx context.Context, id string) (*models.BulkImportJob, error) {
	val, err := q.redis.Get(ctx, JobKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", id, err)
	}
	var job models.BulkImportJob
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, fmt.Errorf("failed to parse job %s: %w", id, err)
	}
	return &job, nil
}

func (q *JobQueue) Save(ctx context.Context, job *models.BulkImportJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.redis.Set(ctx, JobKey(job.ID), b, bulkImportJobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job metadata: %w", err)
	}
	return nil
}

// Next blocks until a job id is available or ctx is done.
func (q *JobQueue) Next(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.redis.BLPop(ctx, timeout, BulkImportQueueKey).Result()
	if err != nil {
		return "", err
	}
	if len(res) < 2 {
		return "", redis.Nil
	}
	return res[1], nil
}
