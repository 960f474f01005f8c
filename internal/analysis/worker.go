package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/meeteo/internal/metrics"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

// ErrorFeedback is the result text stored on a job whose analysis failed.
const ErrorFeedback = "An error occurred while analyzing your image."

const critiqueMaxTokens = 1024

const critiquePrompt = `You are a helpful fashion assistant. I'll show you an image of an outfit and provide current weather details. Please analyze if the outfit is appropriate for the weather conditions. Be specific about why it is or isn't suitable, and provide suggestions if needed.

Current weather conditions:
Temperature: %.0f°F
Conditions: %s
Feels like: %.0f°F

Please analyze the outfit in the provided image and tell me if it's appropriate for these weather conditions.`

// BuildCritiquePrompt renders the outfit critique prompt for w.
func BuildCritiquePrompt(w models.WeatherSnapshot) string {
	return fmt.Sprintf(critiquePrompt, w.Temp, w.Description, w.FeelsLike)
}

// Worker runs the language-model critique for queued jobs.
type Worker struct {
	provider models.AIProvider
	jobs     JobStore
}

func NewWorker(provider models.AIProvider, jobs JobStore) *Worker {
	return &Worker{provider: provider, jobs: jobs}
}

// Process critiques one job and records exactly one terminal state. A job
// that has expired or already finished is skipped. Errors are returned only
// when the job store itself fails.
func (w *Worker) Process(ctx context.Context, jobID uuid.UUID) error {
	job, found, err := w.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if !found {
		slog.Warn("analysis job not found, skipping", "job_id", jobID)
		return nil
	}
	if job.Terminal() {
		return nil
	}

	start := time.Now()
	status, result := w.critique(ctx, job)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if err := w.jobs.Finish(ctx, jobID, status, result); err != nil {
		if errors.Is(err, ErrAlreadyTerminal) || errors.Is(err, ErrJobNotFound) {
			slog.Warn("analysis job changed while running", "job_id", jobID, "error", err)
			return nil
		}
		return fmt.Errorf("finish analysis job: %w", err)
	}
	metrics.AnalysisJobsTotal.WithLabelValues(status).Inc()

	slog.Info("analysis job finished",
		"job_id", jobID,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// critique never panics; a provider panic becomes an error status.
func (w *Worker) critique(ctx context.Context, job *models.AnalysisJob) (status, result string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in analysis", "job_id", job.ID, "panic", r)
			status, result = models.AnalysisStatusError, ErrorFeedback
		}
	}()

	text, err := w.provider.Complete(ctx, models.CompletionRequest{
		Prompt:    BuildCritiquePrompt(job.Weather),
		Image:     &models.ImageInput{MediaType: "image/jpeg", Data: job.Image},
		MaxTokens: critiqueMaxTokens,
	})
	if err != nil {
		slog.Error("analysis inference failed", "job_id", job.ID, "error", err)
		return models.AnalysisStatusError, ErrorFeedback
	}
	return models.AnalysisStatusCompleted, text
}

var _ Processor = (*Worker)(nil)
