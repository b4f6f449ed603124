package ingestion

import (
	"context"
	"mime/multipart"

	"github.com/feichai0017/concept-graph/internal/models"
	"github.com/feichai0017/concept-graph/pkg/queue"
)

// UploadResult is returned to the upload caller before any processing
// happens.
type UploadResult struct {
	Document  *models.Document `json:"document"`
	JobID     string           `json:"jobId"`
	Duplicate bool             `json:"-"`
}

// DocumentStatus combines the persisted document row with the live
// job snapshot. Job is nil once the queue has forgotten the job.
type DocumentStatus struct {
	Document *models.Document `json:"document"`
	Job      *queue.JobStatus `json:"job,omitempty"`
}

type Service interface {
	UploadDocument(ctx context.Context, file multipart.File, header *multipart.FileHeader, subjectID string) (*UploadResult, error)
	HandleIngest(ctx context.Context, job *queue.IngestJob) error
	GetStatus(ctx context.Context, documentID string) (*DocumentStatus, error)
	DeleteDocument(ctx context.Context, documentID string) error
	CleanupUploads(ctx context.Context) error
}
