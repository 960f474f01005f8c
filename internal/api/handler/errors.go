package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/meeteo/internal/ai"
	"github.com/kiranshivaraju/meeteo/internal/api/response"
	"github.com/kiranshivaraju/meeteo/internal/weather"
)

const maxJSONBody = 1 << 20

// writeUpstreamError maps a failure from a language model or the weather
// provider to a gateway status. The message never includes provider output.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var upstream *weather.UpstreamError
	switch {
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_TIMEOUT",
			"The language model did not respond in time", nil)
	case errors.Is(err, ai.ErrInvalidResponse):
		response.Error(w, http.StatusBadGateway, "AI_INVALID_RESPONSE",
			"The language model returned an unusable response", nil)
	case errors.Is(err, ai.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_UNAVAILABLE",
			"The language model is unavailable", nil)
	case errors.As(err, &upstream):
		response.Error(w, http.StatusBadGateway, "WEATHER_UNAVAILABLE",
			upstream.Error(), map[string]int{"upstream_status": upstream.StatusCode})
	case errors.Is(err, weather.ErrUnavailable):
		response.Error(w, http.StatusBadGateway, "WEATHER_UNAVAILABLE",
			"The weather provider is unavailable", nil)
	default:
		slog.Error("unhandled upstream error", "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
