// Package recommend chains the recommendation stages: free text to location,
// location to weather, weather to clothing, clothing to enriched items.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kiranshivaraju/meeteo/internal/metrics"
	"github.com/kiranshivaraju/meeteo/internal/weather"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

// ErrEmptyMessage is returned when the location description is blank.
var ErrEmptyMessage = errors.New("message is required")

type LocationResolver interface {
	Resolve(ctx context.Context, message string) (models.LocationGuess, error)
}

type WeatherLookup interface {
	ByCoordinates(ctx context.Context, lat, lon float64) (weather.Report, error)
}

type ClothingSuggester interface {
	Suggest(ctx context.Context, w models.WeatherSnapshot) (models.ClothingDescription, error)
}

type ClothingEnricher interface {
	Enrich(ctx context.Context, desc models.ClothingDescription) map[models.Slot]models.EnrichedClothingItem
}

// Recommendation is the pipeline's output.
type Recommendation struct {
	Location models.LocationGuess                        `json:"location"`
	Weather  models.WeatherSnapshot                      `json:"weather"`
	Clothing map[models.Slot]models.EnrichedClothingItem `json:"clothing"`
}

// StageError names the stage that failed. The first three stages propagate
// failures; enrichment always recovers and never produces a StageError.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

const (
	StageLocation = "location"
	StageWeather  = "weather"
	StageSuggest  = "suggest"
	StageEnrich   = "enrich"
)

// Pipeline runs the recommendation stages for one message at a time.
type Pipeline struct {
	locations LocationResolver
	weather   WeatherLookup
	suggester ClothingSuggester
	enricher  ClothingEnricher
}

func NewPipeline(l LocationResolver, w WeatherLookup, s ClothingSuggester, e ClothingEnricher) *Pipeline {
	return &Pipeline{locations: l, weather: w, suggester: s, enricher: e}
}

// Run executes every stage in order for one free-text message.
func (p *Pipeline) Run(ctx context.Context, message string) (*Recommendation, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	start := time.Now()

	var loc models.LocationGuess
	if err := stage(StageLocation, func() (err error) {
		loc, err = p.locations.Resolve(ctx, message)
		return err
	}); err != nil {
		return nil, err
	}

	var report weather.Report
	if err := stage(StageWeather, func() (err error) {
		report, err = p.weather.ByCoordinates(ctx, loc.Lat, loc.Lon)
		return err
	}); err != nil {
		return nil, err
	}

	var desc models.ClothingDescription
	if err := stage(StageSuggest, func() (err error) {
		desc, err = p.suggester.Suggest(ctx, report.WeatherSnapshot)
		return err
	}); err != nil {
		return nil, err
	}

	var clothing map[models.Slot]models.EnrichedClothingItem
	_ = stage(StageEnrich, func() error {
		clothing = p.enricher.Enrich(ctx, desc)
		return nil
	})

	slog.Info("recommendation complete",
		"place", loc.PlaceName,
		"temp", report.Temp,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Recommendation{
		Location: loc,
		Weather:  report.WeatherSnapshot,
		Clothing: clothing,
	}, nil
}

func stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StageFailures.WithLabelValues(name).Inc()
		slog.Error("recommendation stage failed", "stage", name, "error", err)
		return &StageError{Stage: name, Err: err}
	}
	return nil
}
