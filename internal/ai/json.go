package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals the first JSON object found in a model reply into v.
// Models sometimes wrap the object in prose or a ```json fence; both are tolerated.
// Any reply without a parseable object yields ErrInvalidResponse.
func DecodeJSON(reply string, v any) error {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return fmt.Errorf("%w: no JSON object in reply %q", ErrInvalidResponse, truncate(reply, 200))
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
