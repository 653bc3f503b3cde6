package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// now is Friday 2026-03-06 18:00 UTC.
var now = time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return model.DateOf(now).AddDate(0, 0, offset)
}

func task(id string, cat model.Category, duration int) model.Task {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return model.Task{
		ID:          id,
		Title:       id,
		Category:    cat,
		Priority:    model.PriorityMedium,
		Duration:    duration,
		EnergyLevel: model.EnergyMedium,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func scheduledOn(t model.Task, date time.Time, at string) model.Task {
	t.Place(date, model.MustClock(at))
	return t
}

func completedAt(t model.Task, at time.Time) model.Task {
	t.Complete(at)
	return t
}

func TestEmptyTaskList(t *testing.T) {
	c := NewCalculator(nil, now)

	progress := c.WeeklyProgress()
	require.Len(t, progress, 7)
	assert.Equal(t, "Sat", progress[0].Day)
	assert.Equal(t, "Fri", progress[6].Day)
	assert.Equal(t, "Mar 6", progress[6].Date)
	for _, d := range progress {
		assert.Zero(t, d.Planned)
		assert.Zero(t, d.Productivity)
	}

	dist := c.CategoryDistribution()
	require.Len(t, dist, 4)
	assert.Equal(t, CategoryShare{Name: model.CategoryWork, Color: "#6366f1"}, dist[0])
	assert.Equal(t, model.CategoryLearning, dist[3].Name)

	m := c.Metrics()
	assert.Equal(t, Metrics{TimeAccuracy: 80, WeeklyGoal: 85}, m)

	insights := c.Insights()
	require.Len(t, insights, 2)
	assert.Equal(t, "Welcome to TaskWise!", insights[0].Title)
	assert.Equal(t, InsightPattern, insights[1].Type)

	goals := c.DefaultGoals()
	require.Len(t, goals, 4)
	assert.Equal(t, "Add your first tasks", goals[0].Name)
	assert.Equal(t, 5, goals[0].Target)
	assert.Equal(t, GoalHours, goals[3].Type)
}

func TestWeeklyProgressAssignsByScheduleThenCompletion(t *testing.T) {
	tasks := []model.Task{
		completedAt(scheduledOn(task("a", model.CategoryWork, 30), day(0), "09:00"), now),
		scheduledOn(task("b", model.CategoryWork, 30), day(0), "10:00"),
		completedAt(task("c", model.CategoryWork, 30), day(-1).Add(15*time.Hour)),
		// scheduled a week out; counts toward no visible day even though completed today
		completedAt(scheduledOn(task("d", model.CategoryWork, 30), day(7), "09:00"), now),
		task("e", model.CategoryWork, 30),
	}
	progress := NewCalculator(tasks, now).WeeklyProgress()

	assert.Equal(t, DayProgress{Day: "Fri", Date: "Mar 6", Completed: 1, Planned: 2, Productivity: 50}, progress[6])
	assert.Equal(t, DayProgress{Day: "Thu", Date: "Mar 5", Completed: 1, Planned: 1, Productivity: 100}, progress[5])
	assert.Zero(t, progress[4].Planned)
}

func TestCategoryDistributionCountsCompletedOnly(t *testing.T) {
	tasks := []model.Task{
		completedAt(task("w1", model.CategoryWork, 30), now),
		completedAt(task("errand", model.Category("Errands"), 30), now),
		completedAt(task("w2", model.CategoryWork, 30), now),
		completedAt(task("w3", model.CategoryWork, 30), now),
		task("h", model.CategoryHealth, 30),
	}
	dist := NewCalculator(tasks, now).CategoryDistribution()
	require.Len(t, dist, 2)
	assert.Equal(t, CategoryShare{Name: model.CategoryWork, Value: 75, Color: "#6366f1", Count: 3}, dist[0])
	assert.Equal(t, CategoryShare{Name: "Errands", Value: 25, Color: UnknownCategoryColor, Count: 1}, dist[1])
}

func TestEnergyPerformance(t *testing.T) {
	tasks := []model.Task{
		completedAt(scheduledOn(task("a", model.CategoryWork, 30), day(0), "09:00"), now),
		scheduledOn(task("b", model.CategoryWork, 30), day(-2), "09:30"),
		completedAt(task("c", model.CategoryWork, 30), day(-1).Add(14*time.Hour+5*time.Minute)),
	}
	points := NewCalculator(tasks, now).EnergyPerformance()
	require.Len(t, points, 9)

	byHour := map[int]EnergyPoint{}
	for _, p := range points {
		byHour[p.Hour] = p
	}
	assert.Equal(t, EnergyPoint{Hour: 6, Time: "6 AM", Energy: 30, Performance: 24}, byHour[6])
	assert.Equal(t, EnergyPoint{Hour: 9, Time: "9 AM", Energy: 85, Performance: 50, TaskCount: 2}, byHour[9])
	assert.Equal(t, EnergyPoint{Hour: 12, Time: "12 PM", Energy: 60, Performance: 48}, byHour[12])
	assert.Equal(t, EnergyPoint{Hour: 14, Time: "2 PM", Energy: 75, Performance: 100, TaskCount: 1}, byHour[14])
}

func TestBaselineEnergy(t *testing.T) {
	cases := map[int]int{5: 30, 7: 30, 8: 85, 11: 85, 12: 60, 13: 60, 14: 75, 16: 75, 17: 50, 19: 50, 20: 30, 23: 30}
	for hour, want := range cases {
		assert.Equal(t, want, BaselineEnergy(hour), "hour %d", hour)
	}
}

func TestCurrentStreak(t *testing.T) {
	var tasks []model.Task
	add := func(offset, total, done int) {
		for i := 0; i < total; i++ {
			tk := scheduledOn(task(fmt.Sprintf("d%d-%d", offset, i), model.CategoryWork, 30), day(offset), "09:00")
			if i < done {
				tk = completedAt(tk, day(offset).Add(10*time.Hour))
			}
			tasks = append(tasks, tk)
		}
	}
	add(0, 1, 1)
	add(-2, 4, 3)
	add(-3, 2, 1)
	add(-4, 1, 1)

	assert.Equal(t, 2, NewCalculator(tasks, now).CurrentStreak())
}

func TestTimeAccuracy(t *testing.T) {
	start := day(-1)
	tasks := []model.Task{
		completedAt(scheduledOn(task("exact", model.CategoryWork, 60), start, "09:00"), start.Add(10*time.Hour)),
		completedAt(scheduledOn(task("slow", model.CategoryWork, 60), start, "09:00"), start.Add(10*time.Hour+30*time.Minute)),
		completedAt(scheduledOn(task("early", model.CategoryWork, 60), start, "09:00"), start.Add(8*time.Hour)),
		completedAt(task("unscheduled", model.CategoryWork, 60), start.Add(12*time.Hour)),
	}
	assert.Equal(t, 75, NewCalculator(tasks, now).Metrics().TimeAccuracy)

	way := []model.Task{
		completedAt(scheduledOn(task("late", model.CategoryWork, 30), start, "09:00"), start.Add(20*time.Hour)),
	}
	assert.Equal(t, 0, NewCalculator(way, now).Metrics().TimeAccuracy)
}

func TestMetricsTrendAndAverages(t *testing.T) {
	recent := func(id string, done bool, duration int) model.Task {
		tk := task(id, model.CategoryWork, duration)
		tk.CreatedAt = now.AddDate(0, 0, -2)
		if done {
			tk = completedAt(tk, now.Add(-time.Hour))
		}
		return tk
	}
	older := func(id string, done bool) model.Task {
		tk := task(id, model.CategoryWork, 30)
		tk.CreatedAt = now.AddDate(0, 0, -10)
		if done {
			tk = completedAt(tk, now.AddDate(0, 0, -9))
		}
		return tk
	}
	tasks := []model.Task{
		recent("r1", true, 30), recent("r2", true, 60), recent("r3", false, 30),
		older("o1", true), older("o2", false),
	}
	m := NewCalculator(tasks, now).Metrics()
	assert.Equal(t, 60, m.CompletionRate)
	assert.Equal(t, 16.7, m.ProductivityTrend)
	assert.Equal(t, 3, m.TotalTasksCompleted)
	assert.Equal(t, 40, m.AverageTaskDuration)
	assert.Equal(t, WeeklyGoal, m.WeeklyGoal)
}

func streakScenario() []model.Task {
	var tasks []model.Task
	for i := 0; i < 7; i++ {
		tk := scheduledOn(task(fmt.Sprintf("s%d", i), model.CategoryWork, 30), day(-i), "09:00")
		tk.CreatedAt = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		tasks = append(tasks, completedAt(tk, day(-i).Add(10*time.Hour)))
	}
	for i := 0; i < 10; i++ {
		tk := task(fmt.Sprintf("idle%d", i), model.CategoryPersonal, 30)
		tk.CreatedAt = time.Date(2026, 2, 25, 8, 0, 0, 0, time.UTC)
		tasks = append(tasks, tk)
	}
	return tasks
}

func TestInsightsOrderedByPriority(t *testing.T) {
	insights := NewCalculator(streakScenario(), now).Insights()
	require.Len(t, insights, 4)

	types := []InsightType{}
	for _, in := range insights {
		types = append(types, in.Type)
	}
	assert.Equal(t, []InsightType{InsightPeak, InsightPattern, InsightSuggestion, InsightWarning}, types)
	assert.Equal(t, "Most productive on Sats with 100% completion", insights[0].Description)
	assert.Equal(t, "7 day completion streak!", insights[1].Description)
	assert.Equal(t, "Productivity up 100% this week", insights[2].Description)
	assert.Equal(t, "Only 41% of tasks completed this week", insights[3].Description)
	assert.True(t, insights[0].Date.Equal(now))
}

func TestDefaultGoalsFromPerformance(t *testing.T) {
	goals := NewCalculator(streakScenario(), now).DefaultGoals()
	require.Len(t, goals, 4)

	assert.Equal(t, Goal{ID: "weekly-tasks", Name: "Complete tasks this week", Progress: 100, Target: 10, Current: 7, Type: GoalTasks}, goals[0])
	assert.Equal(t, Goal{ID: "completion-rate", Name: "Maintain completion rate", Progress: 41, Target: 85, Current: 41, Type: GoalRate}, goals[1])
	assert.Equal(t, Goal{ID: "daily-streak", Name: "Daily completion streak", Progress: 100, Target: 7, Current: 7, Type: GoalStreak}, goals[2])
	assert.Equal(t, Goal{ID: "weekly-hours", Name: "Focus hours this week", Progress: 14, Target: 25, Current: 4, Type: GoalHours}, goals[3])
}

func TestReportDoesNotMutateTasks(t *testing.T) {
	tasks := streakScenario()
	before := tasks[0].Clone()
	r := NewCalculator(tasks, now).Report()
	assert.Equal(t, before, tasks[0])
	assert.Len(t, r.WeeklyProgress, 7)
	assert.True(t, r.GeneratedAt.Equal(now))
}

func TestCompletionTimesReadInLocalZone(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	local := time.Date(2026, 3, 2, 21, 30, 0, 0, est)
	// storage hands completion instants back in UTC
	evening := time.Date(2026, 3, 2, 21, 0, 0, 0, est).UTC()
	morning := time.Date(2026, 3, 2, 9, 15, 0, 0, est).UTC()
	tasks := []model.Task{
		completedAt(task("evening", model.CategoryWork, 30), evening),
		completedAt(task("morning", model.CategoryWork, 30), morning),
	}
	c := NewCalculator(tasks, local)

	progress := c.WeeklyProgress()
	assert.Equal(t, DayProgress{Day: "Mon", Date: "Mar 2", Completed: 2, Planned: 2, Productivity: 100}, progress[6])
	assert.Equal(t, 1, c.CurrentStreak())

	byHour := map[int]EnergyPoint{}
	for _, p := range c.EnergyPerformance() {
		byHour[p.Hour] = p
	}
	assert.Equal(t, 1, byHour[9].TaskCount)
	assert.Zero(t, byHour[14].TaskCount)

	timed := []model.Task{
		completedAt(scheduledOn(task("timed", model.CategoryWork, 60), model.DateOf(local), "09:00"), time.Date(2026, 3, 2, 10, 0, 0, 0, est).UTC()),
	}
	assert.Equal(t, 100, NewCalculator(timed, local).Metrics().TimeAccuracy)
}
