// Package weather fetches current conditions from an OpenWeatherMap-compatible API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

// ErrUnavailable wraps transport and decode failures talking to the provider.
var ErrUnavailable = errors.New("weather API unavailable")

// UpstreamError is returned when the weather provider answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("weather API error: %s", e.Status)
}

// Report is a WeatherSnapshot plus the provider's name for the place.
type Report struct {
	models.WeatherSnapshot
	PlaceName string `json:"place_name,omitempty"`
}

// Client calls the current-weather endpoint. Units are always imperial.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.WeatherConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// ByCoordinates returns current conditions at lat/lon.
func (c *Client) ByCoordinates(ctx context.Context, lat, lon float64) (Report, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return c.fetch(ctx, q)
}

// ByCity returns current conditions for a US city and state.
func (c *Client) ByCity(ctx context.Context, city, state string) (Report, error) {
	q := url.Values{}
	q.Set("q", city+","+state+",US")
	return c.fetch(ctx, q)
}

// currentResponse is the subset of the provider's payload we read.
type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (c *Client) fetch(ctx context.Context, q url.Values) (Report, error) {
	q.Set("units", "imperial")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("create weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("%w: call weather API: %w", ErrUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close weather response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Report{}, &UpstreamError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Report{}, fmt.Errorf("%w: decode weather response: %w", ErrUnavailable, err)
	}

	report := Report{
		WeatherSnapshot: models.WeatherSnapshot{
			Temp:      body.Main.Temp,
			FeelsLike: body.Main.FeelsLike,
			Humidity:  body.Main.Humidity,
		},
		PlaceName: body.Name,
	}
	if len(body.Weather) > 0 {
		report.Description = body.Weather[0].Description
	}
	return report, nil
}

// statusText strips the numeric code from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
