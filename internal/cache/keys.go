package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func AnalysisJobKey(jobID uuid.UUID) string {
	return fmt.Sprintf("analysis:job:%s", jobID)
}

func RateLimitKey(callerID string) string {
	return fmt.Sprintf("ratelimit:%s", callerID)
}
