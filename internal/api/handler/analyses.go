package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/meeteo/internal/analysis"
	"github.com/kiranshivaraju/meeteo/internal/api/response"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

// Uploads arrive base64-encoded inside JSON, about 4/3 the size of the image.
const maxAnalysisBody = 16 << 20

type Analyzer interface {
	Initiate(ctx context.Context, image string, weather models.WeatherSnapshot) (*analysis.Initiated, error)
	Status(ctx context.Context, analysisID string) (*analysis.StatusResult, error)
}

// NewInitiateAnalysisHandler returns POST /api/v1/analyses.
func NewInitiateAnalysisHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Image   string                  `json:"image"`
			Weather *models.WeatherSnapshot `json:"weather"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalysisBody)).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Image == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "image is required", nil)
			return
		}
		if req.Weather == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "weather is required", nil)
			return
		}

		initiated, err := svc.Initiate(r.Context(), req.Image, *req.Weather)
		if errors.Is(err, analysis.ErrInvalidImageFormat) {
			response.Error(w, http.StatusBadRequest, "INVALID_IMAGE_FORMAT",
				"image must be a base64 data URL of a JPEG, PNG or GIF", nil)
			return
		}
		if err != nil {
			slog.Error("failed to initiate analysis", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to start analysis", nil)
			return
		}

		response.Accepted(w, initiated)
	}
}

// NewAnalysisStatusHandler returns GET /api/v1/analyses/{analysisID}. Unknown
// ids are reported as status not_found with 200, matching how clients poll.
func NewAnalysisStatusHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Status(r.Context(), chi.URLParam(r, "analysisID"))
		if err != nil {
			slog.Error("failed to read analysis status", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to read analysis status", nil)
			return
		}
		response.JSON(w, status)
	}
}
