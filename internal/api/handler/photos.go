package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/meeteo/internal/api/response"
)

type DownloadTracker interface {
	TrackDownload(ctx context.Context, imageID string) error
}

// NewPhotoDownloadHandler returns POST /api/v1/photos/{imageID}/download,
// which reports a photo download to the stock-photo provider.
func NewPhotoDownloadHandler(tracker DownloadTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID := chi.URLParam(r, "imageID")

		if err := tracker.TrackDownload(r.Context(), imageID); err != nil {
			response.Error(w, http.StatusBadGateway, "PHOTO_TRACKING_FAILED",
				"Failed to record photo download", nil)
			return
		}

		response.Accepted(w, map[string]any{"image_id": imageID, "tracked": true})
	}
}
