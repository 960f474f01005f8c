package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusError      = "error"
	AnalysisStatusNotFound   = "not_found"
)

// AnalysisJob tracks one asynchronous outfit critique. The API returns the ID on
// POST /api/v1/analyses; the client polls GET /api/v1/analyses/{id} until the
// status is completed or error. Records expire from the job store after a TTL.
type AnalysisJob struct {
	ID        uuid.UUID       `json:"id"`
	Image     []byte          `json:"image"` // JPEG
	Weather   WeatherSnapshot `json:"weather"`
	Status    string          `json:"status"`
	Result    *string         `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Terminal reports whether the job has left the processing state.
func (j *AnalysisJob) Terminal() bool {
	return j.Status == AnalysisStatusCompleted || j.Status == AnalysisStatusError
}
