package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskTypeIngest 文档摄取任务
const TaskTypeIngest = "document:ingest"

// ErrJobNotFound is returned when the queue no longer knows a job,
// e.g. after the retention window has passed.
var ErrJobNotFound = errors.New("job not found")

// JobID derives the queue identity from the document identity. One
// document therefore has at most one in-flight job.
func JobID(documentID string) string {
	return "job-" + documentID
}

// IngestJob 任务负载
type IngestJob struct {
	DocumentID string `json:"documentId"`
	StorageRef string `json:"storageRef"`
	SubjectID  string `json:"subjectId"`
	Title      string `json:"title"`
	Priority   int    `json:"priority"`
}

// JobState is the queue-level lifecycle of a job.
type JobState string

const (
	StateWaiting   JobState = "waiting"
	StateActive    JobState = "active"
	StateDelayed   JobState = "delayed"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// JobStatus is a non-blocking snapshot of one job.
type JobStatus struct {
	JobID        string   `json:"jobId"`
	State        JobState `json:"state"`
	Progress     int      `json:"progress"`
	AttemptsMade int      `json:"attemptsMade"`
	FailedReason string   `json:"failedReason,omitempty"`
}

// EnqueueResult is returned to the intake caller immediately.
type EnqueueResult struct {
	JobID      string `json:"jobId"`
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Duplicate  bool   `json:"-"`
}

// Queue 接口定义
type Queue interface {
	EnqueueIngest(ctx context.Context, job *IngestJob) (*EnqueueResult, error)
	GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error)
	SetProgress(ctx context.Context, jobID string, progress int) error
	Close() error
}

// Config 队列配置
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MaxRetries         int           // retries after the first attempt
	RetryBase          time.Duration // doubles on every retry
	ProcessTimeout     time.Duration
	CompletedRetention time.Duration
}

// taskClient is the slice of *asynq.Client the queue depends on.
type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// AsynqQueue 实现
type AsynqQueue struct {
	client    taskClient
	inspector *asynq.Inspector
	redis     *redis.Client
	cfg       *Config
}

var queueNames = []string{"critical", "default", "low"}

// QueuePriorities is shared by the worker server so both sides drain
// the same queues.
var QueuePriorities = map[string]int{
	"critical": 6,
	"default":  3,
	"low":      1,
}

func NewAsynqQueue(cfg *Config) (*AsynqQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redis:     redisClient,
		cfg:       cfg,
	}, nil
}

// EnqueueIngest adds one ingestion job. Enqueueing a document whose
// job is still in a non-terminal state is a no-op: the existing job
// keeps running and the caller gets its identity back.
func (q *AsynqQueue) EnqueueIngest(ctx context.Context, job *IngestJob) (*EnqueueResult, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	jobID := JobID(job.DocumentID)
	opts := []asynq.Option{
		asynq.TaskID(jobID),
		asynq.MaxRetry(q.cfg.MaxRetries),
		asynq.Timeout(q.cfg.ProcessTimeout),
		asynq.Retention(q.cfg.CompletedRetention),
	}

	// 根据优先级选择队列
	switch job.Priority {
	case 1:
		opts = append(opts, asynq.Queue("critical"))
	case 2:
		opts = append(opts, asynq.Queue("default"))
	default:
		opts = append(opts, asynq.Queue("low"))
	}

	t := asynq.NewTask(TaskTypeIngest, payload, opts...)
	_, err = q.client.EnqueueContext(ctx, t)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return &EnqueueResult{
			JobID:      jobID,
			DocumentID: job.DocumentID,
			Status:     "pending",
			Duplicate:  true,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	return &EnqueueResult{
		JobID:      jobID,
		DocumentID: job.DocumentID,
		Status:     "pending",
	}, nil
}

// GetJobStatus reports the job snapshot without blocking on the job
// itself.
func (q *AsynqQueue) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	var info *asynq.TaskInfo
	var lastErr error

	for _, queueName := range queueNames {
		var err error
		info, err = q.inspector.GetTaskInfo(queueName, jobID)
		if err == nil {
			break
		}
		info = nil
		lastErr = err
	}

	if info == nil {
		return nil, fmt.Errorf("%w: %v", ErrJobNotFound, lastErr)
	}

	status := &JobStatus{
		JobID:        jobID,
		State:        mapTaskState(info.State),
		AttemptsMade: attemptsMade(info),
		FailedReason: info.LastErr,
	}

	progress, err := q.getProgress(ctx, jobID)
	if err == nil {
		status.Progress = progress
	}
	if status.State == StateCompleted && status.Progress < 100 {
		status.Progress = 100
	}

	return status, nil
}

// SetProgress records the job's progress percentage. Progress is a
// plain integer owned by the queue, independent of the backing task
// library.
func (q *AsynqQueue) SetProgress(ctx context.Context, jobID string, progress int) error {
	key := progressKey(jobID)
	if err := q.redis.Set(ctx, key, progress, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (q *AsynqQueue) getProgress(ctx context.Context, jobID string) (int, error) {
	val, err := q.redis.Get(ctx, progressKey(jobID)).Int()
	if err != nil {
		return 0, err
	}
	return val, nil
}

func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}

func progressKey(jobID string) string {
	return fmt.Sprintf("job_progress:%s", jobID)
}

// mapTaskState 将 asynq 状态转换为 JobState
func mapTaskState(state asynq.TaskState) JobState {
	switch state {
	case asynq.TaskStateActive:
		return StateActive
	case asynq.TaskStateScheduled, asynq.TaskStateRetry:
		return StateDelayed
	case asynq.TaskStateCompleted:
		return StateCompleted
	case asynq.TaskStateArchived:
		return StateFailed
	default:
		return StateWaiting
	}
}

func attemptsMade(info *asynq.TaskInfo) int {
	attempts := info.Retried
	switch info.State {
	case asynq.TaskStateActive, asynq.TaskStateCompleted, asynq.TaskStateArchived, asynq.TaskStateRetry:
		attempts++
	}
	return attempts
}

// ExponentialRetryDelay returns the asynq retry delay function:
// base, base*2, base*4, ...
func ExponentialRetryDelay(base time.Duration) func(n int, err error, task *asynq.Task) time.Duration {
	return func(n int, err error, task *asynq.Task) time.Duration {
		return base << n
	}
}
