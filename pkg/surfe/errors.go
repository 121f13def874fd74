package surfe

import (
	"encoding/json"
	"fmt"
	"time"
)

// EnrichmentFailedError is returned when the remote job reports FAILED.
// Payload holds the raw "error" value from the status response.
type EnrichmentFailedError struct {
	JobID   string
	Payload json.RawMessage
}

func (e *EnrichmentFailedError) Error() string {
	detail := "Unknown error"
	if len(e.Payload) > 0 && string(e.Payload) != "null" {
		detail = string(e.Payload)
	}
	return fmt.Sprintf("surfe: enrichment %s failed: %s", e.JobID, detail)
}

// EnrichmentTimeoutError is returned when polling exhausts its attempts
// without the job reaching a terminal state.
type EnrichmentTimeoutError struct {
	JobID    string
	Attempts int
	Interval time.Duration
}

func (e *EnrichmentTimeoutError) Error() string {
	return fmt.Sprintf("surfe: enrichment %s timed out after %d polls (%s apart)", e.JobID, e.Attempts, e.Interval)
}
