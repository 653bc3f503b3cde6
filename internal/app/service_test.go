package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/reminder"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
	"github.com/sandeepkv93/taskwise/internal/storage"
)

var monday = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

func openRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "taskwise.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newService(t *testing.T, repo storage.Repository, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return monday }),
		WithIDGenerator(sequentialIDs()),
		WithOptimizeDelay(0),
		WithFS(afero.NewMemMapFs()),
	}
	return New(repo, append(base, opts...)...)
}

// seed adds one task that fits a morning peak slot and two that cannot be
// placed: a medium task scoring exactly 50% and a two hour task.
func seed(t *testing.T, svc *Service) []model.Task {
	t.Helper()
	ctx := t.Context()
	inputs := []NewTask{
		{Title: "Write report", Category: "work", Priority: model.PriorityHigh, Duration: 60, EnergyLevel: model.EnergyHigh},
		{Title: "Groceries", Category: "personal", Duration: 30},
		{Title: "Deep refactor", Category: "work", Priority: model.PriorityHigh, Duration: 120, EnergyLevel: model.EnergyHigh},
	}
	out := make([]model.Task, 0, len(inputs))
	for _, in := range inputs {
		task, err := svc.AddTask(ctx, in)
		require.NoError(t, err)
		out = append(out, task)
	}
	return out
}

func TestAddTaskNormalizesAndDefaults(t *testing.T) {
	svc := newService(t, openRepo(t))
	task, err := svc.AddTask(t.Context(), NewTask{Title: "Stretch", Category: "  health ", Duration: 15})
	require.NoError(t, err)

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, model.CategoryHealth, task.Category)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.EnergyMedium, task.EnergyLevel)
	assert.True(t, task.CreatedAt.Equal(monday))

	stored, err := svc.Tasks(t.Context(), storage.TaskListFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, task.ID, stored[0].ID)
}

func TestAddTaskRejectsInvalidInput(t *testing.T) {
	svc := newService(t, openRepo(t))
	_, err := svc.AddTask(t.Context(), NewTask{Title: "Nothing", Category: "work", Duration: 0})
	require.Error(t, err)
	assert.True(t, model.IsInvalidInput(err))

	_, err = svc.AddTask(t.Context(), NewTask{Title: "Bad", Category: "work", Duration: 30, Priority: "Urgent"})
	assert.True(t, model.IsInvalidInput(err))
}

func TestCompleteAndUncompleteTask(t *testing.T) {
	svc := newService(t, openRepo(t))
	task, err := svc.AddTask(t.Context(), NewTask{Title: "Call", Category: "personal", Duration: 30})
	require.NoError(t, err)

	done, err := svc.CompleteTask(t.Context(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.Completed)

	undone, err := svc.UncompleteTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedAt)

	_, err = svc.CompleteTask(t.Context(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSettingsDefaultUntilSaved(t *testing.T) {
	svc := newService(t, openRepo(t))
	got, err := svc.Settings(t.Context())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), got)

	bad := model.DefaultSettings()
	bad.Theme = "neon"
	assert.True(t, model.IsInvalidInput(svc.SaveSettings(t.Context(), bad)))

	good := model.DefaultSettings()
	good.Theme = model.ThemeDark
	require.NoError(t, svc.SaveSettings(t.Context(), good))
	got, err = svc.Settings(t.Context())
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, got.Theme)
}

func TestSchedulePreviewDoesNotPersist(t *testing.T) {
	svc := newService(t, openRepo(t))
	seed(t, svc)

	preview, err := svc.Schedule(t.Context(), ScheduleOptions{})
	require.NoError(t, err)
	require.Len(t, preview.Result.ScheduledTasks, 1)
	assert.Len(t, preview.Result.UnscheduledTasks, 2)
	assert.Equal(t, "09:00", preview.Timeline[0].Time().String())

	pending, err := svc.PendingTasks(t.Context())
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestOptimizeAppliesPlacementsAndRecordsHistory(t *testing.T) {
	svc := newService(t, openRepo(t))
	tasks := seed(t, svc)

	out, err := svc.Optimize(t.Context(), scheduler.OptimizeProductivity, OptimizeOptions{Apply: true})
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.Equal(t, 1, out.Record.TasksOptimized)
	assert.Equal(t, 75, out.Record.Efficiency)
	assert.Equal(t, "productivity", out.Record.Mode)

	pending, err := svc.PendingTasks(t.Context())
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	today, err := svc.TodayTasks(t.Context())
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, tasks[0].ID, today[0].ID)
	assert.Equal(t, "09:00", today[0].ScheduledTime.String())

	history, err := svc.History(t.Context(), storage.OptimizationListFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)

	require.NoError(t, svc.RateOptimization(t.Context(), out.Record.ID, 4))
	stats, err := svc.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, OptimizationStats{TotalOptimizations: 1, AverageEfficiency: 75, AverageRating: 4}, stats)

	assert.ErrorIs(t, svc.RateOptimization(t.Context(), out.Record.ID, 6), storage.ErrInvalidRating)
}

func TestOptimizeWithoutApplyLeavesStoreUntouched(t *testing.T) {
	svc := newService(t, openRepo(t))
	seed(t, svc)

	out, err := svc.Optimize(t.Context(), scheduler.OptimizeBalance, OptimizeOptions{})
	require.NoError(t, err)
	assert.Nil(t, out.Record)
	assert.Len(t, out.Result.ScheduledTasks, 1)

	history, err := svc.History(t.Context(), storage.OptimizationListFilter{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOptimizeRejectsUnknownMode(t *testing.T) {
	svc := newService(t, openRepo(t))
	_, err := svc.Optimize(t.Context(), "chaos", OptimizeOptions{})
	assert.True(t, model.IsInvalidInput(err))
}

func TestOptimizeCancelledDuringDelay(t *testing.T) {
	svc := newService(t, openRepo(t), WithOptimizeDelay(time.Hour))
	seed(t, svc)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := svc.Optimize(ctx, scheduler.OptimizeProductivity, OptimizeOptions{Apply: true})
	assert.ErrorIs(t, err, context.Canceled)

	history, err := svc.History(t.Context(), storage.OptimizationListFilter{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOptimizeReportsProgress(t *testing.T) {
	svc := newService(t, openRepo(t), WithOptimizeDelay(20*time.Millisecond))
	var seen []float64
	_, err := svc.Optimize(t.Context(), scheduler.OptimizeFrontload, OptimizeOptions{
		Progress: func(p float64) { seen = append(seen, p) },
	})
	require.NoError(t, err)
	require.Len(t, seen, progressSteps)
	assert.InDelta(t, 1.0, seen[len(seen)-1], 1e-9)
}

type failingPlacements struct {
	*storage.SQLiteRepository
}

func (f failingPlacements) ApplyPlacements(context.Context, []model.Task) error {
	return errors.New("disk full")
}

func TestOptimizeRecordsZeroEntryWhenSaveFails(t *testing.T) {
	repo := openRepo(t)
	svc := newService(t, failingPlacements{repo})
	seed(t, svc)

	_, err := svc.Optimize(t.Context(), scheduler.OptimizeProductivity, OptimizeOptions{Apply: true})
	require.Error(t, err)

	history, err := repo.ListOptimizations(t.Context(), storage.OptimizationListFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Zero(t, history[0].TasksOptimized)
	assert.Zero(t, history[0].Efficiency)
}

func TestRemindersFollowPersistedPlan(t *testing.T) {
	svc := newService(t, openRepo(t))
	tasks := seed(t, svc)
	_, err := svc.Optimize(t.Context(), scheduler.OptimizeProductivity, OptimizeOptions{Apply: true})
	require.NoError(t, err)

	events, err := svc.Reminders(t.Context())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, reminder.KindTaskStart, events[0].Kind)
	assert.Equal(t, tasks[0].ID, events[0].TaskID)
	assert.True(t, events[0].TriggerAt.Equal(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "daily_summary:2026-03-02", events[1].ID)
}

func TestSnapshotCombinesViews(t *testing.T) {
	svc := newService(t, openRepo(t))
	seed(t, svc)
	_, err := svc.Optimize(t.Context(), scheduler.OptimizeProductivity, OptimizeOptions{Apply: true})
	require.NoError(t, err)

	snap, err := svc.Snapshot(t.Context())
	require.NoError(t, err)
	assert.True(t, snap.Today.Date.Equal(model.DateOf(monday)))
	assert.Len(t, snap.Week, 7)
	assert.Equal(t, 1, snap.Stats.TotalOptimizations)
	assert.Len(t, snap.Reminders, 2)
	assert.NotEmpty(t, snap.Report.Insights)
}

func TestExportImportSettings(t *testing.T) {
	fs := afero.NewMemMapFs()
	svc := newService(t, openRepo(t), WithFS(fs))

	custom := model.DefaultSettings()
	custom.Theme = model.ThemeDark
	custom.AIPreferences.EnergyPattern = model.EnergyTypeEvening
	require.NoError(t, svc.SaveSettings(t.Context(), custom))
	require.NoError(t, svc.ExportSettings(t.Context(), "/exports/settings.yaml"))

	require.NoError(t, svc.SaveSettings(t.Context(), model.DefaultSettings()))
	res, err := svc.ImportSettings(t.Context(), "/exports/settings.yaml")
	require.NoError(t, err)
	require.True(t, res.OK, res.Reason)

	got, err := svc.Settings(t.Context())
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	require.NoError(t, afero.WriteFile(fs, "/exports/broken.json", []byte(`{"theme":"dark"}`), 0o644))
	res, err = svc.ImportSettings(t.Context(), "/exports/broken.json")
	require.NoError(t, err)
	assert.False(t, res.OK)
	got, err = svc.Settings(t.Context())
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestSummarizeHistory(t *testing.T) {
	rating := func(v int) *int { return &v }
	cases := []struct {
		name    string
		history []storage.OptimizationRecord
		want    OptimizationStats
	}{
		{name: "empty", want: OptimizationStats{}},
		{
			name: "unrated",
			history: []storage.OptimizationRecord{
				{Efficiency: 75}, {Efficiency: 0}, {Efficiency: 80},
			},
			want: OptimizationStats{TotalOptimizations: 3, AverageEfficiency: 52},
		},
		{
			name: "rated subset",
			history: []storage.OptimizationRecord{
				{Efficiency: 60, UserRating: rating(4)}, {Efficiency: 70, UserRating: rating(4)},
				{Efficiency: 80, UserRating: rating(5)}, {Efficiency: 90},
			},
			want: OptimizationStats{TotalOptimizations: 4, AverageEfficiency: 75, AverageRating: 4.3},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, summarizeHistory(tc.history))
		})
	}
}
