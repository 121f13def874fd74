package model

import "time"

// RunStatus represents the current state of a workflow run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Outcome describes what happened to a single record in a run.
type Outcome string

const (
	OutcomeUpdated   Outcome = "updated"
	OutcomeFilled    Outcome = "filled"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Run is the ledger entry for one workflow invocation.
type Run struct {
	ID        string      `json:"id" yaml:"id"`
	Workflow  string      `json:"workflow" yaml:"workflow"`
	Source    string      `json:"source" yaml:"source"`
	JobID     string      `json:"job_id,omitempty" yaml:"job_id,omitempty"`
	Status    RunStatus   `json:"status" yaml:"status"`
	Summary   *RunSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error     string      `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" yaml:"updated_at"`

	Outcomes []RecordOutcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
}

// RunSummary holds the final counts of a run.
type RunSummary struct {
	Total     int `json:"total" yaml:"total"`
	Submitted int `json:"submitted" yaml:"submitted"`
	Enriched  int `json:"enriched" yaml:"enriched"`
	Updated   int `json:"updated" yaml:"updated"`
	Filled    int `json:"filled" yaml:"filled"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
}

// RecordOutcome is the per-record line of a run. It never carries field
// values, only the correlation id and a status summary.
type RecordOutcome struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	ExternalID string    `json:"external_id" yaml:"external_id"`
	Outcome    Outcome   `json:"outcome" yaml:"outcome"`
	Detail     string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Add tallies one outcome into the summary.
func (s *RunSummary) Add(o Outcome) {
	switch o {
	case OutcomeUpdated:
		s.Updated++
	case OutcomeFilled:
		s.Filled++
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// RunResult is the final state written when a run finishes.
type RunResult struct {
	Status  RunStatus   `json:"status"`
	JobID   string      `json:"job_id,omitempty"`
	Summary *RunSummary `json:"summary,omitempty"`
	Error   string      `json:"error,omitempty"`
}
