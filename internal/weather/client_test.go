package weather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
	"name": "Cambridge",
	"main": {"temp": 45.3, "feels_like": 40.1, "humidity": 80},
	"weather": [{"description": "light rain"}, {"description": "mist"}]
}`

func newClient(t *testing.T, handler http.HandlerFunc) *weather.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return weather.NewClient(config.WeatherConfig{BaseURL: server.URL, APIKey: "ow-key", Timeout: time.Second})
}

func TestByCoordinates(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "42.3736", q.Get("lat"))
		assert.Equal(t, "-71.1097", q.Get("lon"))
		assert.Equal(t, "imperial", q.Get("units"))
		assert.Equal(t, "ow-key", q.Get("appid"))
		_, _ = w.Write([]byte(sampleBody))
	})

	report, err := c.ByCoordinates(context.Background(), 42.3736, -71.1097)
	require.NoError(t, err)
	assert.Equal(t, 45.3, report.Temp)
	assert.Equal(t, 40.1, report.FeelsLike)
	assert.Equal(t, 80.0, report.Humidity)
	assert.Equal(t, "light rain", report.Description)
	assert.Equal(t, "Cambridge", report.PlaceName)
}

func TestByCoordinates_ZeroZeroIsQueried(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("lat"))
		assert.Equal(t, "0", r.URL.Query().Get("lon"))
		_, _ = w.Write([]byte(sampleBody))
	})

	_, err := c.ByCoordinates(context.Background(), 0, 0)
	require.NoError(t, err)
}

func TestByCity(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Cambridge,MA,US", r.URL.Query().Get("q"))
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(sampleBody))
	})

	report, err := c.ByCity(context.Background(), "Cambridge", "MA")
	require.NoError(t, err)
	assert.Equal(t, "light rain", report.Description)
}

func TestFetch_UpstreamError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	})

	_, err := c.ByCity(context.Background(), "Nowhere", "ZZ")
	require.Error(t, err)

	var upstream *weather.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Equal(t, "Not Found", upstream.Status)
	assert.Contains(t, err.Error(), "Not Found")
}

func TestFetch_MissingWeatherArray(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main":{"temp":70,"feels_like":70,"humidity":40}}`))
	})

	report, err := c.ByCoordinates(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, report.Description)
	assert.Equal(t, 70.0, report.Temp)
}

func TestFetch_InvalidJSON(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	_, err := c.ByCoordinates(context.Background(), 1, 2)
	require.Error(t, err)
	var upstream *weather.UpstreamError
	assert.False(t, errors.As(err, &upstream))
	assert.ErrorIs(t, err, weather.ErrUnavailable)
}

func TestFetch_TransportError(t *testing.T) {
	c := weather.NewClient(config.WeatherConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k", Timeout: time.Second})
	_, err := c.ByCoordinates(context.Background(), 1, 2)
	assert.ErrorIs(t, err, weather.ErrUnavailable)
}
