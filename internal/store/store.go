// Package store persists the run ledger: one row per workflow invocation and
// one outcome line per processed record.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/enrich-cli/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("store: run not found")

const defaultListLimit = 100

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Workflow string          `json:"workflow,omitempty"`
	Status   model.RunStatus `json:"status,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store defines the run ledger persistence interface.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, workflow, source string) (*model.Run, error)
	SetRunJob(ctx context.Context, runID, jobID string) error
	FinishRun(ctx context.Context, runID string, result model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Outcomes
	AddOutcomes(ctx context.Context, runID string, outcomes []model.RecordOutcome) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
