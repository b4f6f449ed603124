package config

import (
	"sync"
	"time"
)

var (
	pipelineOnce   sync.Once
	pipelineConfig *PipelineConfig
)

// PipelineConfig holds the tuning knobs of the ingestion pipeline.
type PipelineConfig struct {
	MaxChunkSize int // characters per chunk
	MinChunkSize int // chunks below this are dropped as noise

	BatchSize  int           // chunks extracted concurrently
	BatchPause time.Duration // pause between batches

	// Extraction calls allowed per window, shared across all workers
	// in the process. Protects the upstream model API rate budget.
	RateLimit  int
	RateWindow time.Duration

	WorkerConcurrency int
	RetryBase         time.Duration // first retry delay, doubles per attempt
	MaxRetries        int           // retries after the first attempt
}

func GetPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		loadEnv()

		pipelineConfig = &PipelineConfig{
			MaxChunkSize:      getEnvInt("PIPELINE_MAX_CHUNK_SIZE", 4000),
			MinChunkSize:      getEnvInt("PIPELINE_MIN_CHUNK_SIZE", 100),
			BatchSize:         getEnvInt("PIPELINE_BATCH_SIZE", 3),
			BatchPause:        getEnvDuration("PIPELINE_BATCH_PAUSE", time.Second),
			RateLimit:         getEnvInt("PIPELINE_RATE_LIMIT", 5),
			RateWindow:        getEnvDuration("PIPELINE_RATE_WINDOW", 60*time.Second),
			WorkerConcurrency: getEnvInt("PIPELINE_WORKER_CONCURRENCY", 2),
			RetryBase:         getEnvDuration("PIPELINE_RETRY_BASE", 2*time.Second),
			MaxRetries:        getEnvInt("PIPELINE_MAX_RETRIES", 2),
		}
	})
	return pipelineConfig
}
