package enrich_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kiranshivaraju/meeteo/internal/enrich"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducts struct {
	fn func(ctx context.Context, query string) enrich.Result[models.Product]
}

func (f *fakeProducts) Search(ctx context.Context, query string) enrich.Result[models.Product] {
	return f.fn(ctx, query)
}

type fakePhotos struct {
	fn func(ctx context.Context, description string) enrich.Result[models.Photo]
}

func (f *fakePhotos) Find(ctx context.Context, description string) enrich.Result[models.Photo] {
	return f.fn(ctx, description)
}

var fallbackPhoto = models.Photo{URL: "https://example.com/dummy.jpg", Photographer: "Unknown", PhotographerURL: "https://unsplash.com", ID: "dummy"}

func failingProducts() *fakeProducts {
	return &fakeProducts{fn: func(_ context.Context, q string) enrich.Result[models.Product] {
		return enrich.Fallback(models.Product{Title: "Shop for " + q, URL: "https://www.amazon.com/s?k=x"}, errors.New("quota"))
	}}
}

func failingPhotos() *fakePhotos {
	return &fakePhotos{fn: func(_ context.Context, _ string) enrich.Result[models.Photo] {
		return enrich.Fallback(fallbackPhoto, errors.New("unsplash down"))
	}}
}

func sampleDescription() models.ClothingDescription {
	return models.ClothingDescription{
		models.SlotFootwear:    "waterproof ankle boots",
		models.SlotTop:         "merino sweater",
		models.SlotBottom:      "dark jeans",
		models.SlotAccessories: "umbrella",
		models.SlotWildcard1:   "rain shell",
		models.SlotWildcard2:   "wool beanie",
	}
}

func assertTotal(t *testing.T, out map[models.Slot]models.EnrichedClothingItem) {
	t.Helper()
	require.Len(t, out, len(models.Slots))
	for _, slot := range models.Slots {
		item, ok := out[slot]
		require.True(t, ok, "slot %s missing", slot)
		assert.NotEmpty(t, item.Recommendation, slot)
		assert.NotEmpty(t, item.ProductTitle, slot)
		assert.NotEmpty(t, item.PurchaseURL, slot)
		assert.NotEmpty(t, item.Image, slot)
		assert.NotEmpty(t, item.Photographer, slot)
		assert.NotEmpty(t, item.PhotographerURL, slot)
		assert.NotEmpty(t, item.ImageID, slot)
	}
}

func TestEnrich_AllLookupsFail(t *testing.T) {
	e := enrich.NewEnricher(failingProducts(), failingPhotos())

	out := e.Enrich(context.Background(), sampleDescription())

	assertTotal(t, out)
	assert.Equal(t, "Shop for umbrella", out[models.SlotAccessories].ProductTitle)
	assert.Equal(t, "dummy", out[models.SlotTop].ImageID)
}

func TestEnrich_ElevenFailOneSucceeds(t *testing.T) {
	products := &fakeProducts{fn: func(_ context.Context, q string) enrich.Result[models.Product] {
		if q == "dark jeans" {
			return enrich.Success(models.Product{Title: "Levi's 511", URL: "https://levi.com/511"})
		}
		return enrich.Fallback(models.Product{Title: "Shop for " + q, URL: "#fallback"}, errors.New("boom"))
	}}

	out := enrich.NewEnricher(products, failingPhotos()).Enrich(context.Background(), sampleDescription())

	assertTotal(t, out)
	assert.Equal(t, "Levi's 511", out[models.SlotBottom].ProductTitle)
	assert.Equal(t, "https://levi.com/511", out[models.SlotBottom].PurchaseURL)
	assert.Equal(t, "Shop for merino sweater", out[models.SlotTop].ProductTitle)
}

func TestEnrich_KeysPassedThroughUnchanged(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	products := &fakeProducts{fn: func(_ context.Context, q string) enrich.Result[models.Product] {
		mu.Lock()
		seen[q]++
		mu.Unlock()
		return enrich.Success(models.Product{Title: q, URL: "https://shop/" + q})
	}}

	desc := sampleDescription()
	out := enrich.NewEnricher(products, failingPhotos()).Enrich(context.Background(), desc)

	for slot, rec := range desc {
		assert.Equal(t, rec, out[slot].Recommendation)
		assert.Equal(t, rec, out[slot].ProductTitle)
		assert.Equal(t, 1, seen[rec])
	}
}

// Every lookup blocks until all twelve have started, so the test only
// finishes if they really run concurrently.
func TestEnrich_RunsTwelveLookupsConcurrently(t *testing.T) {
	const total = 12
	var started atomic.Int32
	all := make(chan struct{})
	arrive := func() {
		if started.Add(1) == total {
			close(all)
		}
		select {
		case <-all:
		case <-time.After(2 * time.Second):
		}
	}

	products := &fakeProducts{fn: func(_ context.Context, q string) enrich.Result[models.Product] {
		arrive()
		return enrich.Success(models.Product{Title: q, URL: "u"})
	}}
	photos := &fakePhotos{fn: func(_ context.Context, _ string) enrich.Result[models.Photo] {
		arrive()
		return enrich.Success(fallbackPhoto)
	}}

	start := time.Now()
	out := enrich.NewEnricher(products, photos).Enrich(context.Background(), sampleDescription())

	assertTotal(t, out)
	assert.EqualValues(t, total, started.Load())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEnrich_WaitsForSlowLookup(t *testing.T) {
	photos := &fakePhotos{fn: func(_ context.Context, d string) enrich.Result[models.Photo] {
		if d == "wool beanie" {
			time.Sleep(50 * time.Millisecond)
			return enrich.Success(models.Photo{URL: "https://img/beanie", Photographer: "Ana", PhotographerURL: "https://unsplash.com/@ana", ID: "b1"})
		}
		return enrich.Fallback(fallbackPhoto, errors.New("x"))
	}}

	out := enrich.NewEnricher(failingProducts(), photos).Enrich(context.Background(), sampleDescription())

	assert.Equal(t, "b1", out[models.SlotWildcard2].ImageID)
	assert.Equal(t, "Ana", out[models.SlotWildcard2].Photographer)
}

func TestResultConstructors(t *testing.T) {
	s := enrich.Success(42)
	assert.Equal(t, enrich.OutcomeSuccess, s.Outcome)
	assert.NoError(t, s.Err)

	cause := errors.New("nope")
	f := enrich.Fallback(7, cause)
	assert.Equal(t, enrich.OutcomeFallback, f.Outcome)
	assert.Equal(t, 7, f.Value)
	assert.ErrorIs(t, f.Err, cause)
}
