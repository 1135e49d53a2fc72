package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// jsonUploadName names API payloads in reports and queued files.
const jsonUploadName = "products.json"

// BulkImportHandler handles bulk product import operations
type BulkImportHandler struct {
	imports   ImportServiceAPI
	jobs      JobQueueAPI
	validator *RequestValidator
}

// NewBulkImportHandler wires the handler. jobs may be nil when redis is not
// available; async requests then get 503.
func NewBulkImportHandler(imports ImportServiceAPI, jobs JobQueueAPI, validator *RequestValidator) *BulkImportHandler {
	return &BulkImportHandler{imports: imports, jobs: jobs, validator: validator}
}

type upload struct {
	name    string
	data    []byte
	records []importer.Record
}

// CreateBulkProducts imports a multipart `file` or a JSON {products: [...]}
// body. ?mode=insert|upsert picks the duplicate handling, ?async=true queues
// the upload for the background worker.
func (h *BulkImportHandler) CreateBulkProducts(c *gin.Context) {
	mode, err := importer.ParseMode(c.Query("mode"))
	if err != nil {
		badRequest(c, "mode must be insert or upsert")
		return
	}

	up, err := h.readUpload(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	opts := importer.Options{
		Mode:            mode,
		Source:          up.name,
		DefaultCategory: strings.TrimSpace(c.Query("category")),
	}
	if strings.EqualFold(strings.TrimSpace(c.Query("async")), "true") {
		h.handleAsyncImport(c, up, opts)
		return
	}
	h.handleSyncImport(c, up, opts)
}

// GetBulkImportJobStatus returns the job status/result stored in Redis
func (h *BulkImportHandler) GetBulkImportJobStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		badRequest(c, "Job ID required")
		return
	}
	if h.jobs == nil {
		respondError(c, apperrors.ErrServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), jobStatusTimeout)
	defer cancel()

	job, err := h.jobs.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *BulkImportHandler) readUpload(c *gin.Context) (*upload, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		return h.readJSONUpload(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file is required")
	}
	if err := h.validator.ValidateImportFile(file); err != nil {
		return nil, err
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}
	return &upload{name: file.Filename, data: data}, nil
}

func (h *BulkImportHandler) readJSONUpload(c *gin.Context) (*upload, error) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("request body too large or unreadable")
	}
	var body struct {
		Products []map[string]interface{} `json:"products"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("invalid JSON body")
	}
	if len(body.Products) == 0 {
		return nil, fmt.Errorf("no products provided")
	}
	return &upload{
		name:    jsonUploadName,
		data:    data,
		records: importer.RecordsFromObjects(body.Products),
	}, nil
}

func (h *BulkImportHandler) handleAsyncImport(c *gin.Context, up *upload, opts importer.Options) {
	if h.jobs == nil {
		respondError(c, apperrors.ErrServiceUnavailable)
		return
	}
	job, err := h.jobs.Enqueue(c.Request.Context(), up.name, up.data, opts)
	if err != nil {
		zap.L().Error("Failed to enqueue async bulk import", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"message": "Import queued for processing",
	})
}

func (h *BulkImportHandler) handleSyncImport(c *gin.Context, up *upload, opts importer.Options) {
	ctx := c.Request.Context()

	var (
		report *importer.Report
		err    error
	)
	if up.records != nil {
		report, err = h.imports.ImportRecords(ctx, up.name, up.records, opts)
	} else {
		report, err = h.imports.ImportFile(ctx, up.name, up.data, opts)
	}
	if err != nil {
		zap.L().Error("Bulk import processing failed", zap.Error(err), zap.String("source", up.name))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": report.Success(),
		"failed":  report.FailedCount(),
		"report":  report,
	})
}
