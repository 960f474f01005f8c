package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/meeteo/internal/api/response"
	"github.com/kiranshivaraju/meeteo/internal/weather"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

type WeatherLookup interface {
	ByCoordinates(ctx context.Context, lat, lon float64) (weather.Report, error)
	ByCity(ctx context.Context, city, state string) (weather.Report, error)
}

// CityResolver reads a free-text US location as {city, state}.
type CityResolver interface {
	ResolveCity(ctx context.Context, message string) (models.CityGuess, error)
}

// NewWeatherHandler returns GET /api/v1/weather. Exactly one of three query
// forms is accepted: lat and lon, city and state, or a free-text q.
func NewWeatherHandler(lookup WeatherLookup, resolver CityResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var (
			report weather.Report
			err    error
		)
		switch {
		case q.Has("lat") || q.Has("lon"):
			lat, latErr := parseCoordinate(q.Get("lat"), 90)
			lon, lonErr := parseCoordinate(q.Get("lon"), 180)
			if latErr != nil || lonErr != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"lat must be in [-90, 90] and lon in [-180, 180]", nil)
				return
			}
			report, err = lookup.ByCoordinates(r.Context(), lat, lon)

		case q.Get("city") != "":
			state := strings.TrimSpace(q.Get("state"))
			if state == "" {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "state is required with city", nil)
				return
			}
			report, err = lookup.ByCity(r.Context(), strings.TrimSpace(q.Get("city")), state)

		case strings.TrimSpace(q.Get("q")) != "":
			var guess models.CityGuess
			guess, err = resolver.ResolveCity(r.Context(), q.Get("q"))
			if err == nil {
				report, err = lookup.ByCity(r.Context(), guess.City, guess.State)
			}

		default:
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"one of lat/lon, city/state or q is required", nil)
			return
		}

		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		response.JSON(w, report)
	}
}

var errCoordinateRange = errors.New("coordinate out of range")

func parseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < -limit || v > limit {
		return 0, errCoordinateRange
	}
	return v, nil
}
