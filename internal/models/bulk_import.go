package models

import "time"

// ImportCursor records the last committed row offset of an import source so
// an interrupted run can resume.
type ImportCursor struct {
	SourceKey string    `gorm:"primaryKey;type:varchar(80)" json:"sourceKey"`
	Offset    int       `gorm:"not null;default:0" json:"offset"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Bulk import job statuses.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusDone       = "done"
	JobStatusFailed     = "failed"
)

// BulkImportJob is the job metadata stored in redis for async imports.
type BulkImportJob struct {
	ID              string      `json:"id"`
	Status          string      `json:"status"`
	FileName        string      `json:"file_name"`
	FilePath        string      `json:"file_path"`
	Mode            string      `json:"mode"`
	DefaultCategory string      `json:"default_category,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	FinishedAt      *time.Time  `json:"finished_at,omitempty"`
	Result          interface{} `json:"result,omitempty"`
	Error           string      `json:"error,omitempty"`
}
