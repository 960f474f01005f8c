package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeAnalyze = "outfit:analyze"
	QueueName       = "analysis"
)

// Queue schedules a stored job for background processing.
type Queue interface {
	Enqueue(ctx context.Context, jobID uuid.UUID) error
}

// Processor runs one job to a terminal state.
type Processor interface {
	Process(ctx context.Context, jobID uuid.UUID) error
}

type taskPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// AsynqQueue enqueues jobs on a Redis-backed asynq queue. Tasks are never
// retried: the worker records failures on the job itself.
type AsynqQueue struct {
	client *asynq.Client
}

func NewAsynqQueue(client *asynq.Client) *AsynqQueue {
	return &AsynqQueue{client: client}
}

func (q *AsynqQueue) Enqueue(ctx context.Context, jobID uuid.UUID) error {
	payload, err := json.Marshal(taskPayload{JobID: jobID})
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}
	task := asynq.NewTask(TaskTypeAnalyze, payload, asynq.MaxRetry(0))
	info, err := q.client.EnqueueContext(ctx, task, asynq.Queue(QueueName))
	if err != nil {
		return fmt.Errorf("enqueue analysis task: %w", err)
	}
	slog.Debug("analysis task enqueued", "job_id", jobID, "task_id", info.ID)
	return nil
}

// NewServeMux routes analysis tasks to p.
func NewServeMux(p Processor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeAnalyze, func(ctx context.Context, t *asynq.Task) error {
		var payload taskPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode task payload: %v: %w", err, asynq.SkipRetry)
		}
		return p.Process(ctx, payload.JobID)
	})
	return mux
}

// ServerConfig returns the asynq worker configuration for the analysis queue.
func ServerConfig(concurrency int) asynq.Config {
	return asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueName: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			slog.Error("analysis task failed", "type", task.Type(), "error", err)
		}),
	}
}

// InlineQueue runs each job on its own goroutine in this process. Wait blocks
// until every enqueued job has finished.
type InlineQueue struct {
	processor Processor
	wg        sync.WaitGroup
}

func NewInlineQueue(p Processor) *InlineQueue {
	return &InlineQueue{processor: p}
}

func (q *InlineQueue) Enqueue(ctx context.Context, jobID uuid.UUID) error {
	// The request that enqueued the job will be cancelled long before it finishes.
	ctx = context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.processor.Process(ctx, jobID); err != nil {
			slog.Error("inline analysis failed", "job_id", jobID, "error", err)
		}
	}()
	return nil
}

func (q *InlineQueue) Wait() {
	q.wg.Wait()
}

var (
	_ Queue = (*AsynqQueue)(nil)
	_ Queue = (*InlineQueue)(nil)
)
