// Package shopping finds a shoppable product for a clothing recommendation
// using Google Custom Search.
package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/internal/enrich"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	noResultsTitle     = "No products found"
	unavailableTitle   = "Product unavailable"
	placeholderURL     = "#"
	marketplaceBaseURL = "https://www.amazon.com/s?k="
)

var errMissingCredentials = errors.New("google search credentials not configured")

// Searcher looks up the first web result for "<query> clothing buy".
// It never returns an error: every failure yields Fallback(query).
type Searcher struct {
	svc      *customsearch.Service
	engineID string
	timeout  time.Duration
}

// NewSearcher builds a Searcher. With no API key or engine id it is still
// usable and answers every query with the fallback product.
func NewSearcher(ctx context.Context, cfg config.SearchConfig) (*Searcher, error) {
	s := &Searcher{engineID: cfg.EngineID, timeout: cfg.Timeout}
	if cfg.APIKey == "" || cfg.EngineID == "" {
		slog.Warn("google search credentials missing, product lookups will use fallbacks")
		return s, nil
	}

	svc, err := customsearch.NewService(ctx,
		option.WithAPIKey(cfg.APIKey),
		option.WithEndpoint(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}
	s.svc = svc
	return s, nil
}

// componentUnescaper restores the characters url.QueryEscape encodes but a
// URI component keeps literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Fallback is the marketplace search link used when no real product is available.
func Fallback(query string) models.Product {
	return models.Product{
		Title: "Shop for " + query,
		URL:   marketplaceBaseURL + componentUnescaper.Replace(url.QueryEscape(query)) + "+clothing",
	}
}

// Search returns the first product matching query, or Fallback(query) on any
// failure. It never returns an error to the caller.
func (s *Searcher) Search(ctx context.Context, query string) enrich.Result[models.Product] {
	if s.svc == nil {
		return enrich.Fallback(Fallback(query), errMissingCredentials)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.svc.Cse.List().
		Cx(s.engineID).
		Q(query + " clothing buy").
		Num(1).
		Context(ctx).
		Do()
	if err != nil {
		if isQuotaExceeded(err) {
			slog.Info("google search quota exceeded, using fallback", "query", query)
		} else {
			slog.Error("google search failed, using fallback", "query", query, "error", err)
		}
		return enrich.Fallback(Fallback(query), err)
	}

	if len(res.Items) == 0 || res.Items[0] == nil {
		slog.Info("no products found", "query", query)
		return enrich.Success(models.Product{Title: noResultsTitle, URL: placeholderURL})
	}

	item := res.Items[0]
	product := models.Product{Title: unavailableTitle, URL: placeholderURL}
	if item.Title != "" {
		if cleaned := CleanTitle(item.Title); cleaned != "" {
			product.Title = cleaned
		}
	}
	if item.Link != "" {
		product.URL = item.Link
	}
	return enrich.Success(product)
}

func isQuotaExceeded(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, "Quota exceeded") || strings.Contains(apiErr.Body, "Quota exceeded")
	}
	return false
}

var _ enrich.ProductSearcher = (*Searcher)(nil)
