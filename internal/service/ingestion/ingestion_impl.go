package ingestion

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/concept-graph/internal/models"
	"github.com/feichai0017/concept-graph/internal/pipeline"
	"github.com/feichai0017/concept-graph/internal/repository"
	"github.com/feichai0017/concept-graph/internal/textextract"
	"github.com/feichai0017/concept-graph/pkg/cache"
	"github.com/feichai0017/concept-graph/pkg/logger"
	"github.com/feichai0017/concept-graph/pkg/queue"
	"github.com/feichai0017/concept-graph/pkg/storage"
)

// progress checkpoints reported to the queue during one attempt
const (
	progressFetched    = 10
	progressExtracted  = 30
	progressAnalyzing  = 50
	progressPersisting = 80
	progressDone       = 100
)

type ServiceConfig struct {
	MaxFileSize   int64
	AllowedTypes  []string
	QueuePriority int

	MaxChunkSize int
	MinChunkSize int
	BatchSize    int
	BatchPause   time.Duration

	RetentionPeriod time.Duration
}

type IngestionService struct {
	repo      *repository.Repository
	queue     queue.Queue
	storage   storage.Storage
	extractor *pipeline.Extractor
	cache     *cache.Cache
	logger    logger.Logger
	config    *ServiceConfig
}

func NewService(
	repo *repository.Repository,
	q queue.Queue,
	store storage.Storage,
	extractor *pipeline.Extractor,
	c *cache.Cache,
	log logger.Logger,
	cfg *ServiceConfig,
) Service {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxFileSize:     50 * 1024 * 1024, // 50MB
			AllowedTypes:    []string{".pdf", ".txt", ".md"},
			QueuePriority:   2,
			MaxChunkSize:    4000,
			MinChunkSize:    100,
			BatchSize:       3,
			BatchPause:      time.Second,
			RetentionPeriod: 7 * 24 * time.Hour,
		}
	}

	return &IngestionService{
		repo:      repo,
		queue:     q,
		storage:   store,
		extractor: extractor,
		cache:     c,
		logger:    log,
		config:    cfg,
	}
}

// UploadDocument 接收上传并入队，立即返回
func (s *IngestionService) UploadDocument(
	ctx context.Context,
	file multipart.File,
	header *multipart.FileHeader,
	subjectID string,
) (*UploadResult, error) {
	s.logger.Info("Starting document upload",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
		logger.String("subjectId", subjectID),
	)

	if err := s.validateFile(header); err != nil {
		s.logger.Error("File validation failed",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, err
	}

	// 学科必须已存在
	if _, err := s.repo.GetSubject(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("failed to resolve subject: %w", err)
	}

	documentID := uuid.New().String()
	storageRef := documentID + strings.ToLower(filepath.Ext(header.Filename))

	if _, err := s.storage.Store(ctx, file, storageRef, header.Size); err != nil {
		s.logger.Error("Failed to store upload",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	doc := &models.Document{
		ID:               documentID,
		Title:            header.Filename,
		StorageRef:       storageRef,
		FileSize:         header.Size,
		SubjectID:        subjectID,
		ProcessingStatus: models.StatusPending,
		UploadedAt:       time.Now(),
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	// 入队失败必须让调用方知道，不能静默吞掉
	result, err := s.queue.EnqueueIngest(ctx, &queue.IngestJob{
		DocumentID: documentID,
		StorageRef: storageRef,
		SubjectID:  subjectID,
		Title:      header.Filename,
		Priority:   s.config.QueuePriority,
	})
	if err != nil {
		s.logger.Error("Failed to enqueue ingestion job",
			logger.String("documentId", documentID),
			logger.Error(err),
		)
		if uerr := s.repo.UpdateDocumentStatus(ctx, documentID, models.StatusFailed, "failed to enqueue ingestion job"); uerr != nil {
			s.logger.Error("Failed to mark document failed",
				logger.String("documentId", documentID),
				logger.Error(uerr),
			)
		}
		return nil, fmt.Errorf("failed to enqueue ingestion job: %w", err)
	}

	s.logger.Info("Document accepted",
		logger.String("documentId", documentID),
		logger.String("jobId", result.JobID),
	)

	return &UploadResult{
		Document:  doc,
		JobID:     result.JobID,
		Duplicate: result.Duplicate,
	}, nil
}

// HandleIngest 执行一次完整的摄取流水线
func (s *IngestionService) HandleIngest(ctx context.Context, job *queue.IngestJob) error {
	jobID := queue.JobID(job.DocumentID)

	if err := s.repo.UpdateDocumentStatus(ctx, job.DocumentID, models.StatusProcessing, ""); err != nil {
		return s.failIngest(ctx, job, fmt.Errorf("failed to mark document processing: %w", err))
	}

	// 拉取原始文件
	reader, err := s.storage.Get(ctx, job.StorageRef)
	if err != nil {
		return s.failIngest(ctx, job, fmt.Errorf("failed to get stored file: %w", err))
	}
	defer reader.Close()
	s.setProgress(ctx, jobID, progressFetched)

	// 文本抽取
	extracted, err := textextract.FromReader(reader, job.StorageRef)
	if err != nil {
		return s.failIngest(ctx, job, fmt.Errorf("failed to extract text: %w", err))
	}
	if extracted.Text == "" {
		return s.failIngest(ctx, job, fmt.Errorf("no text content found in document"))
	}
	s.setProgress(ctx, jobID, progressExtracted)

	chunks := pipeline.Chunk(extracted.Text, s.config.MaxChunkSize, s.config.MinChunkSize)
	s.logger.Info("Document chunked",
		logger.String("documentId", job.DocumentID),
		logger.Int("chunks", len(chunks)),
		logger.Int("pages", extracted.Pages),
	)
	s.setProgress(ctx, jobID, progressAnalyzing)

	candidates := s.extractConcepts(ctx, chunks, extracted.Pages)

	// 文档内去重后落库；重试会整体替换而不是追加
	merged := pipeline.Deduplicate(candidates)
	concepts := make([]models.RawConcept, 0, len(merged))
	for _, m := range merged {
		c := models.RawConcept{
			ID:         uuid.New().String(),
			Term:       m.Term,
			Definition: m.Definition,
			Example:    m.Example,
			DocumentID: job.DocumentID,
		}
		if len(m.Pages) > 0 {
			c.PageNumber = m.Pages[0]
		} else {
			c.PageNumber = 1
		}
		concepts = append(concepts, c)
	}

	if err := s.repo.ReplaceConcepts(ctx, job.DocumentID, concepts); err != nil {
		return s.failIngest(ctx, job, fmt.Errorf("failed to persist concepts: %w", err))
	}
	s.setProgress(ctx, jobID, progressPersisting)

	if err := s.repo.UpdateDocumentStatus(ctx, job.DocumentID, models.StatusCompleted, ""); err != nil {
		return s.failIngest(ctx, job, fmt.Errorf("failed to mark document completed: %w", err))
	}
	s.setProgress(ctx, jobID, progressDone)

	// 缓存失效是尽力而为
	if s.cache != nil {
		s.cache.InvalidateSubject(ctx, job.SubjectID)
	}

	s.logger.Info("Document ingestion completed",
		logger.String("documentId", job.DocumentID),
		logger.Int("concepts", len(concepts)),
	)
	return nil
}

// extractConcepts runs chunk extraction in fixed-size batches with a
// pause between batches. A failed chunk contributes nothing; it never
// aborts the job. Results are merged in chunk ordinal order, not
// completion order, so downstream dedup tie-breaks are reproducible.
func (s *IngestionService) extractConcepts(ctx context.Context, chunks []string, totalPages int) []pipeline.Candidate {
	results := make([][]pipeline.Candidate, len(chunks))

	batchSize := s.config.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

batches:
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = s.extractor.ExtractChunk(gctx, chunks[i], i+1, len(chunks), totalPages)
				return nil
			})
		}
		// ExtractChunk contains its own failures, so Wait only
		// propagates context cancellation.
		_ = g.Wait()

		if end < len(chunks) && s.config.BatchPause > 0 {
			select {
			case <-ctx.Done():
				break batches
			case <-time.After(s.config.BatchPause):
			}
		}
	}

	var candidates []pipeline.Candidate
	for _, found := range results {
		candidates = append(candidates, found...)
	}
	return candidates
}

// GetStatus 合并文档行与队列快照
func (s *IngestionService) GetStatus(ctx context.Context, documentID string) (*DocumentStatus, error) {
	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	status := &DocumentStatus{Document: doc}

	job, err := s.queue.GetJobStatus(ctx, queue.JobID(documentID))
	if err == nil {
		status.Job = job
	}
	// 队列已遗忘的任务不是错误，文档行仍然是权威状态

	return status, nil
}

// DeleteDocument 删除文档、其概念与底层文件
func (s *IngestionService) DeleteDocument(ctx context.Context, documentID string) error {
	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, doc.StorageRef); err != nil {
		// 文件删除失败不阻塞元数据删除
		s.logger.Warn("Failed to delete stored file",
			logger.String("documentId", documentID),
			logger.String("storageRef", doc.StorageRef),
			logger.Error(err),
		)
	}

	if err := s.repo.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.InvalidateSubject(ctx, doc.SubjectID)
	}

	s.logger.Info("Document deleted",
		logger.String("documentId", documentID),
	)
	return nil
}

// CleanupUploads 清理过期的已上传文件
func (s *IngestionService) CleanupUploads(ctx context.Context) error {
	threshold := time.Now().Add(-s.config.RetentionPeriod)

	if err := s.storage.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("failed to cleanup storage: %w", err)
	}

	s.logger.Info("Completed uploads cleanup",
		logger.Time("threshold", threshold),
	)
	return nil
}

func (s *IngestionService) failIngest(ctx context.Context, job *queue.IngestJob, cause error) error {
	s.logger.Error("Ingestion attempt failed",
		logger.String("documentId", job.DocumentID),
		logger.Error(cause),
	)

	if err := s.repo.UpdateDocumentStatus(ctx, job.DocumentID, models.StatusFailed, cause.Error()); err != nil {
		s.logger.Error("Failed to record failure state",
			logger.String("documentId", job.DocumentID),
			logger.Error(err),
		)
	}
	return cause
}

func (s *IngestionService) setProgress(ctx context.Context, jobID string, progress int) {
	if err := s.queue.SetProgress(ctx, jobID, progress); err != nil {
		s.logger.Warn("Failed to report progress",
			logger.String("jobId", jobID),
			logger.Int("progress", progress),
			logger.Error(err),
		)
	}
}

// validateFile 验证上传文件
func (s *IngestionService) validateFile(header *multipart.FileHeader) error {
	if header.Size <= 0 {
		return fmt.Errorf("empty upload")
	}
	if header.Size > s.config.MaxFileSize {
		return fmt.Errorf("file size exceeds maximum limit of %d bytes", s.config.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, t := range s.config.AllowedTypes {
		if t == ext {
			return nil
		}
	}
	return fmt.Errorf("unsupported file type: %s", ext)
}
