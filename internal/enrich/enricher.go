// Package enrich fans each clothing recommendation out to a product search and
// a stock-photo lookup, then gathers the twelve results into a total mapping.
package enrich

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kiranshivaraju/meeteo/internal/metrics"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"golang.org/x/sync/errgroup"
)

// ProductSearcher finds a shoppable product for a recommendation. It never
// fails: on any problem it returns a fallback Result.
type ProductSearcher interface {
	Search(ctx context.Context, query string) Result[models.Product]
}

// PhotoFinder finds a stock photo for a recommendation. Same totality contract
// as ProductSearcher.
type PhotoFinder interface {
	Find(ctx context.Context, description string) Result[models.Photo]
}

type Enricher struct {
	products ProductSearcher
	photos   PhotoFinder
}

func NewEnricher(products ProductSearcher, photos PhotoFinder) *Enricher {
	return &Enricher{products: products, photos: photos}
}

// Enrich runs both lookups for every slot concurrently and waits for all of
// them. The returned map always has every slot in models.Slots, and every
// item field is populated.
func (e *Enricher) Enrich(ctx context.Context, desc models.ClothingDescription) map[models.Slot]models.EnrichedClothingItem {
	var (
		mu       sync.Mutex
		products = make(map[models.Slot]Result[models.Product], len(models.Slots))
		photos   = make(map[models.Slot]Result[models.Photo], len(models.Slots))
	)

	// Lookups never return an error; a plain Group waits without cancelling siblings.
	var g errgroup.Group
	for _, slot := range models.Slots {
		recommendation := desc[slot]
		g.Go(func() error {
			r := e.products.Search(ctx, recommendation)
			record("product", slot, r.Outcome, r.Err)
			mu.Lock()
			products[slot] = r
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			r := e.photos.Find(ctx, recommendation)
			record("photo", slot, r.Outcome, r.Err)
			mu.Lock()
			photos[slot] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[models.Slot]models.EnrichedClothingItem, len(models.Slots))
	for _, slot := range models.Slots {
		product := products[slot].Value
		photo := photos[slot].Value
		out[slot] = models.EnrichedClothingItem{
			Recommendation:  desc[slot],
			ProductTitle:    product.Title,
			PurchaseURL:     product.URL,
			Image:           photo.URL,
			Photographer:    photo.Photographer,
			PhotographerURL: photo.PhotographerURL,
			ImageID:         photo.ID,
		}
	}
	return out
}

func record(kind string, slot models.Slot, outcome Outcome, err error) {
	metrics.LookupsTotal.WithLabelValues(kind, string(outcome)).Inc()
	if outcome == OutcomeFallback {
		slog.Debug("enrichment lookup fell back",
			"kind", kind,
			"slot", slot,
			"error", err,
		)
	}
}
