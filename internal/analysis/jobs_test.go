package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/meeteo/internal/cache"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobStore(t *testing.T, ttl time.Duration) (*RedisJobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return NewRedisJobStore(rc, ttl), mr
}

func newJob() *models.AnalysisJob {
	now := time.Now().UTC()
	return &models.AnalysisJob{
		ID:        uuid.New(),
		Image:     []byte{0xff, 0xd8, 0xff},
		Weather:   models.WeatherSnapshot{Temp: 41, FeelsLike: 35, Humidity: 80, Description: "light rain"},
		Status:    models.AnalysisStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestJobStore_CreateGet(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()

	require.NoError(t, store.Create(ctx, job))

	got, found, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, models.AnalysisStatusProcessing, got.Status)
	assert.Equal(t, job.Image, got.Image)
	assert.Equal(t, job.Weather, got.Weather)
	assert.Nil(t, got.Result)
}

func TestJobStore_CreateDuplicate(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()

	require.NoError(t, store.Create(ctx, job))
	assert.ErrorIs(t, store.Create(ctx, job), ErrJobExists)
}

func TestJobStore_GetMissing(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)

	got, found, err := store.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestJobStore_Expires(t *testing.T) {
	store, mr := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()
	require.NoError(t, store.Create(ctx, job))

	mr.FastForward(time.Hour + time.Second)

	_, found, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJobStore_Finish(t *testing.T) {
	store, mr := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()
	require.NoError(t, store.Create(ctx, job))

	require.NoError(t, store.Finish(ctx, job.ID, models.AnalysisStatusCompleted, "Looks warm enough."))

	got, found, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.AnalysisStatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "Looks warm enough.", *got.Result)
	assert.Empty(t, got.Image)

	ttl := mr.TTL(cache.AnalysisJobKey(job.ID))
	assert.Greater(t, ttl, time.Duration(0))
}

func TestJobStore_FinishOnlyOnce(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()
	require.NoError(t, store.Create(ctx, job))

	require.NoError(t, store.Finish(ctx, job.ID, models.AnalysisStatusError, ErrorFeedback))
	err := store.Finish(ctx, job.ID, models.AnalysisStatusCompleted, "late result")
	assert.ErrorIs(t, err, ErrAlreadyTerminal)

	got, _, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusError, got.Status)
	assert.Equal(t, ErrorFeedback, *got.Result)
}

func TestJobStore_FinishMissing(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)

	err := store.Finish(context.Background(), uuid.New(), models.AnalysisStatusCompleted, "x")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobStore_FinishRejectsNonTerminalStatus(t *testing.T) {
	store, _ := newJobStore(t, time.Hour)
	ctx := context.Background()
	job := newJob()
	require.NoError(t, store.Create(ctx, job))

	err := store.Finish(ctx, job.ID, models.AnalysisStatusProcessing, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid terminal status")
}
