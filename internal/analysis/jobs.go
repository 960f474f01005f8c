package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/meeteo/internal/cache"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

var (
	ErrJobNotFound     = errors.New("analysis job not found")
	ErrJobExists       = errors.New("analysis job already exists")
	ErrAlreadyTerminal = errors.New("analysis job already finished")
)

// JobStore holds analysis jobs. Finish is the only mutation and succeeds at
// most once per job.
type JobStore interface {
	Create(ctx context.Context, job *models.AnalysisJob) error
	Get(ctx context.Context, id uuid.UUID) (*models.AnalysisJob, bool, error)
	Finish(ctx context.Context, id uuid.UUID, status, result string) error
}

// RedisJobStore keeps jobs as JSON documents that expire after ttl.
type RedisJobStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewRedisJobStore(c cache.Cache, ttl time.Duration) *RedisJobStore {
	return &RedisJobStore{cache: c, ttl: ttl}
}

func (s *RedisJobStore) Create(ctx context.Context, job *models.AnalysisJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal analysis job: %w", err)
	}
	ok, err := s.cache.SetNX(ctx, cache.AnalysisJobKey(job.ID), data, s.ttl)
	if err != nil {
		return fmt.Errorf("store analysis job: %w", err)
	}
	if !ok {
		return ErrJobExists
	}
	return nil
}

func (s *RedisJobStore) Get(ctx context.Context, id uuid.UUID) (*models.AnalysisJob, bool, error) {
	data, found, err := s.cache.Get(ctx, cache.AnalysisJobKey(id))
	if err != nil {
		return nil, false, fmt.Errorf("load analysis job: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	var job models.AnalysisJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, false, fmt.Errorf("decode analysis job: %w", err)
	}
	return &job, true, nil
}

// Finish moves a processing job to status with result. The image is dropped
// since nothing reads it after this point. The key keeps its original TTL.
func (s *RedisJobStore) Finish(ctx context.Context, id uuid.UUID, status, result string) error {
	if status != models.AnalysisStatusCompleted && status != models.AnalysisStatusError {
		return fmt.Errorf("finish analysis job: invalid terminal status %q", status)
	}

	err := s.cache.Update(ctx, cache.AnalysisJobKey(id), func(current []byte) ([]byte, error) {
		var job models.AnalysisJob
		if err := json.Unmarshal(current, &job); err != nil {
			return nil, fmt.Errorf("decode analysis job: %w", err)
		}
		if job.Terminal() {
			return nil, ErrAlreadyTerminal
		}
		job.Status = status
		job.Result = &result
		job.Image = nil
		job.UpdatedAt = time.Now().UTC()
		return json.Marshal(&job)
	})
	if errors.Is(err, cache.ErrNotFound) {
		return ErrJobNotFound
	}
	return err
}

var _ JobStore = (*RedisJobStore)(nil)
