package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kiranshivaraju/meeteo/internal/api/response"
	"github.com/kiranshivaraju/meeteo/internal/recommend"
)

// Recommender runs the full recommendation pipeline.
type Recommender interface {
	Run(ctx context.Context, message string) (*recommend.Recommendation, error)
}

// NewRecommendationHandler returns POST /api/v1/recommendations.
func NewRecommendationHandler(rec Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		result, err := rec.Run(r.Context(), req.Message)
		if errors.Is(err, recommend.ErrEmptyMessage) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "message is required", nil)
			return
		}
		if err != nil {
			writeUpstreamError(w, err)
			return
		}

		response.JSON(w, result)
	}
}
