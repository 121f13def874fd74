package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "contacts", "contacts.csv")
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, model.RunStatusRunning, run.Status)

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, "contacts", got.Workflow)
		assert.Equal(t, "contacts.csv", got.Source)
		assert.Equal(t, model.RunStatusRunning, got.Status)
		assert.Nil(t, got.Summary)
		assert.Empty(t, got.Outcomes)
	})

	t.Run("RunLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "hubspot", "hubspot:contacts")
		require.NoError(t, err)
		require.NoError(t, s.SetRunJob(ctx, run.ID, "job-42"))
		require.NoError(t, s.AddOutcomes(ctx, run.ID, []model.RecordOutcome{
			{ExternalID: "101", Outcome: model.OutcomeUpdated, Detail: "Updated: Job Title"},
			{ExternalID: "102", Outcome: model.OutcomeFailed, Error: "hubspot: 400"},
		}))
		summary := &model.RunSummary{Total: 2, Submitted: 2, Enriched: 2, Updated: 1, Failed: 1}
		require.NoError(t, s.FinishRun(ctx, run.ID, model.RunResult{Status: model.RunStatusComplete, Summary: summary}))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusComplete, got.Status)
		assert.Equal(t, "job-42", got.JobID)
		assert.Equal(t, summary, got.Summary)
		require.Len(t, got.Outcomes, 2)
		assert.Equal(t, "101", got.Outcomes[0].ExternalID)
		assert.Equal(t, model.OutcomeUpdated, got.Outcomes[0].Outcome)
		assert.Equal(t, "hubspot: 400", got.Outcomes[1].Error)
		assert.Equal(t, run.ID, got.Outcomes[1].RunID)
	})

	t.Run("FinishRunFailed", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "contacts", "in.csv")
		require.NoError(t, err)
		require.NoError(t, s.FinishRun(ctx, run.ID, model.RunResult{
			Status: model.RunStatusFailed,
			JobID:  "job-9",
			Error:  "surfe: enrichment job-9 failed",
		}))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusFailed, got.Status)
		assert.Equal(t, "job-9", got.JobID)
		assert.Equal(t, "surfe: enrichment job-9 failed", got.Error)
	})

	t.Run("GetRunNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetRun(context.Background(), "nonexistent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateMissingRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		assert.ErrorIs(t, s.SetRunJob(ctx, "nonexistent", "job"), ErrNotFound)
		assert.ErrorIs(t, s.FinishRun(ctx, "nonexistent", model.RunResult{Status: model.RunStatusComplete}), ErrNotFound)
	})

	t.Run("AddOutcomesEmpty", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.AddOutcomes(context.Background(), "any", nil))
	})

	t.Run("ListRunsFilters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateRun(ctx, "contacts", "a.csv")
		require.NoError(t, err)
		_, err = s.CreateRun(ctx, "contacts", "b.csv")
		require.NoError(t, err)
		_, err = s.CreateRun(ctx, "pipedrive", "pipedrive:persons")
		require.NoError(t, err)
		require.NoError(t, s.FinishRun(ctx, a.ID, model.RunResult{Status: model.RunStatusComplete}))

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		contacts, err := s.ListRuns(ctx, RunFilter{Workflow: "contacts"})
		require.NoError(t, err)
		assert.Len(t, contacts, 2)

		complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
		require.NoError(t, err)
		require.Len(t, complete, 1)
		assert.Equal(t, a.ID, complete[0].ID)

		page, err := s.ListRuns(ctx, RunFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, page, 1)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}
