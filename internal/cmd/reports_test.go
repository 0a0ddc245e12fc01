package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/taskflow/internal/config"
	"github.com/harrison/taskflow/internal/models"
	"github.com/harrison/taskflow/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeRoot runs the full root command with TASKFLOW_HOME set to home.
func executeRoot(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.HomeEnvVar, home)

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func seedReports(t *testing.T, dir string) []string {
	t.Helper()
	store, err := report.NewStore(dir, config.FormatJSON)
	require.NoError(t, err)

	start := time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)
	reports := []models.ExecutionReport{
		{
			RunID: "aaaaaaaa-1", StartTime: start, EndTime: start.Add(time.Second), TasksExecuted: 2,
			Results: []models.TaskRecord{
				{TaskID: "T1", Status: models.StatusCompleted, Result: "ok1"},
				{TaskID: "T2", Status: models.StatusCompleted, Result: "ok2"},
			},
		},
		{
			RunID: "bbbbbbbb-2", StartTime: start.Add(time.Hour), EndTime: start.Add(time.Hour + time.Second), TasksExecuted: 1, TasksFailed: 1,
			Results: []models.TaskRecord{
				{TaskID: "T1", Status: models.StatusCompleted, Result: "ok1"},
				{TaskID: "T2", Status: models.StatusFailed, Result: "RuntimeError: boom"},
			},
		},
	}

	var paths []string
	for _, r := range reports {
		p, err := store.Write(r)
		require.NoError(t, err)
		paths = append(paths, p)
	}
	return paths
}

func TestReportsList(t *testing.T) {
	home := t.TempDir()
	seedReports(t, filepath.Join(home, "reports"))

	out, err := executeRoot(t, home, "reports", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run-20241225-100000-aaaaaaaa.json")
	assert.Contains(t, lines[0], "2 completed, 0 failed  ok")
	assert.Contains(t, lines[1], "run-20241225-110000-bbbbbbbb.json")
	assert.Contains(t, lines[1], "1 completed, 1 failed  FAILED")
}

func TestReportsList_Empty(t *testing.T) {
	home := t.TempDir()

	out, err := executeRoot(t, home, "reports", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No reports in")
}

func TestReportsShow_DefaultsToLatest(t *testing.T) {
	home := t.TempDir()
	seedReports(t, filepath.Join(home, "reports"))

	out, err := executeRoot(t, home, "reports", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "Run: bbbbbbbb-2")
	assert.Contains(t, out, "Failed: 1")
	assert.Contains(t, out, "  - T2 [failed] RuntimeError: boom")
}

func TestReportsShow_ByFileName(t *testing.T) {
	home := t.TempDir()
	paths := seedReports(t, filepath.Join(home, "reports"))

	out, err := executeRoot(t, home, "reports", "show", filepath.Base(paths[0]))
	require.NoError(t, err)
	assert.Contains(t, out, "Run: aaaaaaaa-1")
	assert.Contains(t, out, "  - T2 [completed] ok2")

	out, err = executeRoot(t, home, "reports", "show", paths[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Run: bbbbbbbb-2")
}

func TestReportsShow_Errors(t *testing.T) {
	home := t.TempDir()

	_, err := executeRoot(t, home, "reports", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reports found")

	_, err = executeRoot(t, home, "reports", "show", "run-missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-missing.json")
}

func TestReports_AfterRun(t *testing.T) {
	home := t.TempDir()
	path := createTestWorkflowFile(t, mixedWorkflow)

	_, err := executeRoot(t, home, "run", "--format", "yaml", "--no-log-file", path)
	require.NoError(t, err)

	out, err := executeRoot(t, home, "reports", "list", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "2 completed, 1 failed  FAILED")
}
