package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/enrich-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Workflow:  "hubspot",
			Status:    model.RunStatusComplete,
			Summary:   &model.RunSummary{Total: 12, Failed: 2},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Workflow:  "contacts",
			Status:    model.RunStatusRunning,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "WORKFLOW")
	assert.Contains(t, output, "hubspot")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "2m0s")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}

func sampleRun() *model.Run {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.Run{
		ID:        "run-1",
		Workflow:  "pipedrive",
		Source:    "pipedrive:persons",
		JobID:     "job-9",
		Status:    model.RunStatusComplete,
		Summary:   &model.RunSummary{Total: 1, Filled: 1},
		CreatedAt: now,
		UpdatedAt: now,
		Outcomes: []model.RecordOutcome{
			{RunID: "run-1", ExternalID: "7", Outcome: model.OutcomeFilled, Detail: "Filled: Email Address", CreatedAt: now},
		},
	}
}

func TestWriteRun_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRun(&buf, sampleRun(), "json"))

	var got model.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "job-9", got.JobID)
	require.Len(t, got.Outcomes, 1)
	assert.Equal(t, "Filled: Email Address", got.Outcomes[0].Detail)
}

func TestWriteRun_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRun(&buf, sampleRun(), "yaml"))

	out := buf.String()
	assert.Contains(t, out, "workflow: pipedrive")
	assert.Contains(t, out, "external_id: \"7\"")

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got["id"])
}

func TestWriteRun_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeRun(&buf, sampleRun(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
