package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/storage"
)

var monday = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

type harness struct {
	t   *testing.T
	db  string
	env string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("TASKWISE_OPTIMIZE_DELAY", "0s")
	dir := t.TempDir()
	return &harness{t: t, db: filepath.Join(dir, "taskwise.db"), env: filepath.Join(dir, "missing.env")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	c := New(WithClock(func() time.Time { return monday }))
	full := append([]string{"--db", h.db, "--env-file", h.env, "--log-level", "error"}, args...)
	err := c.Run(context.Background(), full, &out, &errOut)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "taskwise %v", args)
	return out
}

func (h *harness) addTask(args ...string) model.Task {
	h.t.Helper()
	out := h.mustRun(append([]string{"task", "add", "--json"}, args...)...)
	var task model.Task
	require.NoError(h.t, json.Unmarshal([]byte(out), &task))
	return task
}

func TestTaskAddAndList(t *testing.T) {
	h := newHarness(t)
	task := h.addTask("Write", "report", "--priority", "HIGH", "--energy", "high", "--duration", "60", "--category", "work")
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, model.EnergyHigh, task.EnergyLevel)
	assert.Equal(t, model.CategoryWork, task.Category)
	assert.Equal(t, 60, task.Duration)

	h.addTask("Groceries", "--category", "personal")

	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("task", "list", "--json")), &tasks))
	assert.Len(t, tasks, 2)

	require.NoError(t, json.Unmarshal([]byte(h.mustRun("task", "list", "--json", "--category", "Personal")), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Groceries", tasks[0].Title)
	assert.Equal(t, model.PriorityMedium, tasks[0].Priority)

	assert.Contains(t, h.mustRun("task", "list"), "Write report")
}

func TestTaskDoneUndoAndRemove(t *testing.T) {
	h := newHarness(t)
	task := h.addTask("Stretch")

	assert.Equal(t, "completed "+task.ID+": Stretch\n", h.mustRun("task", "done", task.ID))
	assert.Equal(t, "reopened "+task.ID+": Stretch\n", h.mustRun("task", "undo", task.ID))
	assert.Equal(t, "deleted "+task.ID+"\n", h.mustRun("task", "rm", task.ID))

	_, err := h.run("task", "done", task.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTaskAddRejectsInvalidInput(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("task", "add", "Nothing", "--duration", "0")
	var invalid *model.InvalidInputError
	assert.True(t, errors.As(err, &invalid), "got %v", err)

	_, err = h.run("task", "add", "Bad", "--priority", "urgent")
	assert.True(t, errors.As(err, &invalid), "got %v", err)

	_, err = h.run("task", "add", "Late", "--deadline", "tomorrow")
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestOptimizeApplyThenHistoryAndDay(t *testing.T) {
	h := newHarness(t)
	h.addTask("Write report", "--priority", "high", "--energy", "high", "--duration", "60")

	preview := h.mustRun("optimize", "productivity")
	assert.Contains(t, preview, "preview only")
	assert.Contains(t, h.mustRun("history"), "optimizations: 0")

	out := h.mustRun("optimize", "--apply")
	assert.Contains(t, out, "saved ")
	assert.Contains(t, out, "1 task(s), efficiency 75%")

	var history struct {
		Records []storage.OptimizationRecord `json:"records"`
		Stats   struct {
			TotalOptimizations int `json:"totalOptimizations"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("history", "--json")), &history))
	require.Len(t, history.Records, 1)
	rec := history.Records[0]
	assert.Equal(t, "productivity", rec.Mode)
	assert.Equal(t, 75, rec.Efficiency)
	assert.Equal(t, 1, history.Stats.TotalOptimizations)

	assert.Equal(t, "rated "+rec.ID+" 4/5\n", h.mustRun("history", "rate", rec.ID, "4"))
	_, err := h.run("history", "rate", rec.ID, "9")
	assert.ErrorIs(t, err, storage.ErrInvalidRating)
	_, err = h.run("history", "rate", rec.ID, "four")
	assert.ErrorIs(t, err, errUsage)

	day := h.mustRun("day", "--date", "2026-03-02")
	assert.Contains(t, day, "Write report")
	assert.Contains(t, h.mustRun("reminders"), "Write report")
}

func TestOptimizeRejectsUnknownMode(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("optimize", "chaos")
	var invalid *model.InvalidInputError
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestScheduleDoesNotSave(t *testing.T) {
	h := newHarness(t)
	h.addTask("Write report", "--priority", "high", "--energy", "high", "--duration", "60")

	var preview struct {
		Timeline []json.RawMessage `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("schedule", "--json", "--start", "2026-03-02")), &preview))
	assert.Len(t, preview.Timeline, 1)

	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("task", "list", "--json")), &tasks))
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Scheduled)
}

func TestAnalyticsFormats(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("analytics"), "metrics:")

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("analytics", "--format", "json")), &report))
	assert.Contains(t, report, "metrics")

	_, err := h.run("analytics", "--format", "xml")
	assert.ErrorIs(t, err, errUsage)
}

func TestSettingsExportEnergyImport(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "settings.yaml")

	h.mustRun("settings", "export", path)
	assert.Equal(t, "energy pattern set to evening\n", h.mustRun("settings", "energy", "Evening"))

	var settings model.Settings
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("settings", "show", "--format", "json")), &settings))
	assert.Equal(t, model.EnergyTypeEvening, settings.AIPreferences.EnergyPattern)

	h.mustRun("settings", "import", path)
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("settings", "show", "--format", "json")), &settings))
	assert.Equal(t, model.EnergyTypeMorning, settings.AIPreferences.EnergyPattern)

	assert.Contains(t, h.mustRun("settings", "show"), "energyPattern: morning")

	_, err := h.run("settings", "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "rejected")
}

func TestLogLevelFlagIsValidated(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--log-level", "verbose", "task", "list")
	assert.Error(t, err)
}

func TestHelpAndTUIDoNotOpenDatabase(t *testing.T) {
	h := newHarness(t)
	h.mustRun("help")
	assert.NoFileExists(t, h.db)

	_, err := h.run("tui")
	assert.ErrorContains(t, err, "terminal")
	assert.NoFileExists(t, h.db)
}
