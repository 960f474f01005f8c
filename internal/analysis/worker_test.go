package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/kiranshivaraju/meeteo/internal/ai"
	"github.com/kiranshivaraju/meeteo/internal/ai/mock"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCritiquePrompt(t *testing.T) {
	prompt := BuildCritiquePrompt(models.WeatherSnapshot{Temp: 41.4, FeelsLike: 35.2, Description: "light rain"})

	assert.Contains(t, prompt, "Temperature: 41°F")
	assert.Contains(t, prompt, "Conditions: light rain")
	assert.Contains(t, prompt, "Feels like: 35°F")
}

func TestWorker_Success(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()
	require.NoError(t, store.Create(ctx, job))

	var got models.CompletionRequest
	provider := &mock.MockProvider{
		CompleteFunc: func(_ context.Context, req models.CompletionRequest) (string, error) {
			got = req
			return "Bring an umbrella.", nil
		},
	}

	require.NoError(t, NewWorker(provider, store).Process(ctx, job.ID))

	require.NotNil(t, got.Image)
	assert.Equal(t, "image/jpeg", got.Image.MediaType)
	assert.Equal(t, job.Image, got.Image.Data)
	assert.Contains(t, got.Prompt, "Conditions: light rain")

	finished, _, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusCompleted, finished.Status)
	assert.Equal(t, "Bring an umbrella.", *finished.Result)
}

func TestWorker_ProviderFailureMarksError(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()
	require.NoError(t, store.Create(ctx, job))

	w := NewWorker(mock.NewFailingProvider(ai.ErrProviderUnavailable), store)
	require.NoError(t, w.Process(ctx, job.ID))

	finished, _, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusError, finished.Status)
	assert.Equal(t, ErrorFeedback, *finished.Result)
}

func TestWorker_PanicMarksError(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()
	require.NoError(t, store.Create(ctx, job))

	provider := &mock.MockProvider{
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			panic("boom")
		},
	}
	require.NoError(t, NewWorker(provider, store).Process(ctx, job.ID))

	finished, _, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusError, finished.Status)
}

func TestWorker_MissingJobIsSkipped(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	called := false
	provider := &mock.MockProvider{
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			called = true
			return "", nil
		},
	}

	require.NoError(t, NewWorker(provider, store).Process(context.Background(), uuid.New()))
	assert.False(t, called)
}

func TestWorker_TerminalJobIsNotReprocessed(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()
	require.NoError(t, store.Create(ctx, job))
	require.NoError(t, store.Finish(ctx, job.ID, models.AnalysisStatusCompleted, "first"))

	called := false
	provider := &mock.MockProvider{
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			called = true
			return "second", nil
		},
	}
	require.NoError(t, NewWorker(provider, store).Process(ctx, job.ID))
	assert.False(t, called)

	finished, _, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", *finished.Result)
}

type stubProcessor struct {
	ids []uuid.UUID
	err error
}

func (s *stubProcessor) Process(_ context.Context, id uuid.UUID) error {
	s.ids = append(s.ids, id)
	return s.err
}

func TestServeMux_DispatchesTask(t *testing.T) {
	p := &stubProcessor{}
	mux := NewServeMux(p)
	id := uuid.New()

	task := asynq.NewTask(TaskTypeAnalyze, []byte(`{"job_id":"`+id.String()+`"}`))
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []uuid.UUID{id}, p.ids)
}

func TestServeMux_BadPayloadSkipsRetry(t *testing.T) {
	mux := NewServeMux(&stubProcessor{})

	err := mux.ProcessTask(context.Background(), asynq.NewTask(TaskTypeAnalyze, []byte("not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
