package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/concept-graph/internal/service/ingestion"
	"github.com/feichai0017/concept-graph/pkg/logger"
	"github.com/feichai0017/concept-graph/pkg/queue"
)

type IngestWorker struct {
	BaseWorker
	ingestService ingestion.Service
}

func NewIngestWorker(cfg *Config, ingestService ingestion.Service, logger logger.Logger) (*IngestWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency:    cfg.Concurrency,
			Queues:         cfg.Queues,
			RetryDelayFunc: queue.ExponentialRetryDelay(cfg.RetryBase),
		},
	)

	w := &IngestWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   logger,
			stopChan: make(chan struct{}),
		},
		ingestService: ingestService,
	}

	// 注册任务处理器
	w.registerHandlers()
	return w, nil
}

func (w *IngestWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeIngest, w.handleIngest)
}

func (w *IngestWorker) handleIngest(ctx context.Context, t *asynq.Task) error {
	var job queue.IngestJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		w.logger.Error("Failed to unmarshal job",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		// 无法解析的任务重试也没有意义
		return fmt.Errorf("failed to unmarshal job: %v: %w", err, asynq.SkipRetry)
	}

	if job.DocumentID == "" || job.StorageRef == "" {
		w.logger.Error("Invalid job payload",
			logger.String("documentId", job.DocumentID),
			logger.String("storageRef", job.StorageRef),
		)
		return fmt.Errorf("invalid job payload: missing required fields: %w", asynq.SkipRetry)
	}

	w.logger.Info("Processing ingestion job",
		logger.String("jobId", queue.JobID(job.DocumentID)),
		logger.String("documentId", job.DocumentID),
		logger.String("title", job.Title),
	)

	if err := w.ingestService.HandleIngest(ctx, &job); err != nil {
		w.logger.Error("Ingestion job failed",
			logger.String("documentId", job.DocumentID),
			logger.Error(err),
		)
		return err
	}

	w.logger.Info("Ingestion job completed",
		logger.String("documentId", job.DocumentID),
	)
	return nil
}

func (w *IngestWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
