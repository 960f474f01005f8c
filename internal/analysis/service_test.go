package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/meeteo/internal/ai/mock"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWeather = models.WeatherSnapshot{Temp: 72, FeelsLike: 70, Humidity: 40, Description: "clear sky"}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, uuid.UUID) error {
	return errors.New("redis down")
}

func TestService_EndToEndInline(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	worker := NewWorker(mock.NewMockProvider("Perfect for a sunny day."), store)
	queue := NewInlineQueue(worker)
	svc := NewService(store, queue)
	ctx := context.Background()

	initiated, err := svc.Initiate(ctx, dataURL("image/png", encodePNG(t)), testWeather)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusProcessing, initiated.Status)
	_, err = uuid.Parse(initiated.AnalysisID)
	require.NoError(t, err)

	queue.Wait()

	status, err := svc.Status(ctx, initiated.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusCompleted, status.Status)
	require.NotNil(t, status.Feedback)
	assert.Equal(t, "Perfect for a sunny day.", *status.Feedback)
}

func TestService_StatusWhileProcessing(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	release := make(chan struct{})
	provider := &mock.MockProvider{
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			<-release
			return "done", nil
		},
	}
	queue := NewInlineQueue(NewWorker(provider, store))
	svc := NewService(store, queue)
	ctx := context.Background()

	initiated, err := svc.Initiate(ctx, dataURL("image/png", encodePNG(t)), testWeather)
	require.NoError(t, err)

	status, err := svc.Status(ctx, initiated.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusProcessing, status.Status)
	assert.Nil(t, status.Feedback)

	close(release)
	queue.Wait()
}

func TestService_InitiateInvalidImage(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	svc := NewService(store, NewInlineQueue(&stubProcessor{}))

	tests := map[string]string{
		"no marker":    "iVBORw0KGgo=",
		"not an image": dataURL("image/png", []byte("plain text")),
		"bad base64":   "data:image/png;base64,%%%",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Initiate(context.Background(), input, testWeather)
			assert.ErrorIs(t, err, ErrInvalidImageFormat)
		})
	}
}

func TestService_EnqueueFailureMarksJobError(t *testing.T) {
	store, mr := newJobStore(t, time.Hour)
	svc := NewService(store, failingQueue{})

	_, err := svc.Initiate(context.Background(), dataURL("image/png", encodePNG(t)), testWeather)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue analysis job")

	keys := mr.Keys()
	require.Len(t, keys, 1)
	raw, err := mr.Get(keys[0])
	require.NoError(t, err)
	assert.Contains(t, raw, `"status":"error"`)
}

func TestService_StatusUnknownID(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	svc := NewService(store, NewInlineQueue(&stubProcessor{}))

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		status, err := svc.Status(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.AnalysisStatusNotFound, status.Status)
		assert.Nil(t, status.Feedback)
	}
}
