// Package analysis critiques an uploaded outfit photo against the weather.
// Initiation stores a job and queues it; a worker fills in the result; the
// client polls Status until the job is completed or error.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

// Initiated is returned when a job has been accepted.
type Initiated struct {
	AnalysisID string `json:"analysis_id"`
	Status     string `json:"status"`
}

// StatusResult is the polling view of a job.
type StatusResult struct {
	Status   string  `json:"status"`
	Feedback *string `json:"feedback"`
}

type Service struct {
	jobs  JobStore
	queue Queue
}

func NewService(jobs JobStore, queue Queue) *Service {
	return &Service{jobs: jobs, queue: queue}
}

// Initiate validates and re-encodes the image, stores a processing job and
// queues it. Malformed images fail with ErrInvalidImageFormat.
func (s *Service) Initiate(ctx context.Context, image string, weather models.WeatherSnapshot) (*Initiated, error) {
	raw, err := DecodeDataURL(image)
	if err != nil {
		return nil, err
	}
	processed, err := ToJPEG(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.AnalysisJob{
		ID:        uuid.New(),
		Image:     processed,
		Weather:   weather,
		Status:    models.AnalysisStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create analysis job: %w", err)
	}

	if err := s.queue.Enqueue(ctx, job.ID); err != nil {
		if ferr := s.jobs.Finish(ctx, job.ID, models.AnalysisStatusError, ErrorFeedback); ferr != nil {
			slog.Error("failed to mark unqueued job as error", "job_id", job.ID, "error", ferr)
		}
		return nil, fmt.Errorf("queue analysis job: %w", err)
	}

	slog.Info("analysis job created", "job_id", job.ID, "image_bytes", len(processed))
	return &Initiated{AnalysisID: job.ID.String(), Status: job.Status}, nil
}

// Status reports a job's state. Unknown or malformed ids yield not_found.
func (s *Service) Status(ctx context.Context, analysisID string) (*StatusResult, error) {
	id, err := uuid.Parse(analysisID)
	if err != nil {
		return &StatusResult{Status: models.AnalysisStatusNotFound}, nil
	}
	job, found, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return &StatusResult{Status: models.AnalysisStatusNotFound}, nil
	}
	return &StatusResult{Status: job.Status, Feedback: job.Result}, nil
}
