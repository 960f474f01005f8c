package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	mw "github.com/kiranshivaraju/meeteo/internal/api/middleware"
	"github.com/kiranshivaraju/meeteo/internal/api/response"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	ListSubmissions(ctx context.Context, userID string) ([]*models.Submission, error)
}

// NewListSubmissionsHandler returns GET /api/v1/submissions, the caller's
// submissions newest first.
func NewListSubmissionsHandler(s SubmissionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		subs, err := s.ListSubmissions(r.Context(), userID)
		if err != nil {
			slog.Error("failed to list submissions", "user_id", userID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list submissions", nil)
			return
		}
		if subs == nil {
			subs = []*models.Submission{}
		}
		response.List(w, subs, len(subs))
	}
}

// NewCreateSubmissionHandler returns POST /api/v1/submissions. Weather and
// clothing are stored as given.
func NewCreateSubmissionHandler(s SubmissionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req struct {
			Location string          `json:"location"`
			Lat      *float64        `json:"lat"`
			Lon      *float64        `json:"lon"`
			Weather  json.RawMessage `json:"weather"`
			Clothing json.RawMessage `json:"clothing"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		details := map[string]string{}
		if strings.TrimSpace(req.Location) == "" {
			details["location"] = "location is required"
		}
		if req.Lat == nil {
			details["lat"] = "lat is required"
		}
		if req.Lon == nil {
			details["lon"] = "lon is required"
		}
		if isMissingJSON(req.Weather) {
			details["weather"] = "weather is required"
		}
		if isMissingJSON(req.Clothing) {
			details["clothing"] = "clothing is required"
		}
		if len(details) > 0 {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid submission", details)
			return
		}

		sub := &models.Submission{
			UserID:   userID,
			Location: req.Location,
			Lat:      *req.Lat,
			Lon:      *req.Lon,
			Weather:  req.Weather,
			Clothing: req.Clothing,
		}
		if err := s.CreateSubmission(r.Context(), sub); err != nil {
			slog.Error("failed to create submission", "user_id", userID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to save submission", nil)
			return
		}

		response.Created(w, sub)
	}
}

func isMissingJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
