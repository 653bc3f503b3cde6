// Package analytics derives progress, distribution and performance figures
// from a task list. All computations are relative to the calculator's
// reference time and never modify the tasks.
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

const (
	// WeeklyGoal is the completion-rate target shown alongside the metrics.
	WeeklyGoal = 85

	streakLookbackDays = 30
	streakThreshold    = 0.7
	trendWindowDays    = 7

	// defaultTimeAccuracy is reported when no completed task has timing data.
	defaultTimeAccuracy = 80
)

// CategoryColors maps built-in categories to their display colors.
var CategoryColors = map[model.Category]string{
	model.CategoryWork:     "#6366f1",
	model.CategoryPersonal: "#ec4899",
	model.CategoryHealth:   "#10b981",
	model.CategoryLearning: "#8b5cf6",
}

// UnknownCategoryColor is used for user defined categories.
const UnknownCategoryColor = "#94a3b8"

type DayProgress struct {
	Day          string `json:"day"`
	Date         string `json:"date"`
	Completed    int    `json:"completed"`
	Planned      int    `json:"planned"`
	Productivity int    `json:"productivity"`
}

type CategoryShare struct {
	Name  model.Category `json:"name"`
	Value int            `json:"value"`
	Color string         `json:"color"`
	Count int            `json:"count"`
}

type EnergyPoint struct {
	Hour        int    `json:"hour"`
	Time        string `json:"time"`
	Energy      int    `json:"energy"`
	Performance int    `json:"performance"`
	TaskCount   int    `json:"taskCount"`
}

type Metrics struct {
	CompletionRate      int     `json:"completionRate"`
	TimeAccuracy        int     `json:"timeAccuracy"`
	ProductivityTrend   float64 `json:"productivityTrend"`
	WeeklyGoal          int     `json:"weeklyGoal"`
	CurrentStreak       int     `json:"currentStreak"`
	TotalTasksCompleted int     `json:"totalTasksCompleted"`
	AverageTaskDuration int     `json:"averageTaskDuration"`
}

type Calculator struct {
	tasks []model.Task
	now   time.Time
}

func NewCalculator(tasks []model.Task, now time.Time) *Calculator {
	return &Calculator{tasks: tasks, now: now}
}

func (c *Calculator) today() time.Time {
	return model.DateOf(c.now)
}

// local moves an instant loaded from storage, which is kept in UTC, into the
// location of now so calendar days and hours line up with today.
func (c *Calculator) local(t time.Time) time.Time {
	return t.In(c.now.Location())
}

// lastDays returns n calendar dates ending today, oldest first.
func (c *Calculator) lastDays(n int) []time.Time {
	today := c.today()
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = today.AddDate(0, 0, i-(n-1))
	}
	return out
}

// dayKey is the calendar date a task counts toward: its scheduled date when
// set, otherwise the date it was completed.
func (c *Calculator) dayKey(t model.Task) (string, bool) {
	if t.ScheduledDate != nil {
		return model.DateKey(*t.ScheduledDate), true
	}
	if t.CompletedAt != nil {
		return model.DateKey(model.DateOf(c.local(*t.CompletedAt))), true
	}
	return "", false
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func (c *Calculator) WeeklyProgress() []DayProgress {
	days := c.lastDays(7)
	out := make([]DayProgress, 0, len(days))
	for _, day := range days {
		key := model.DateKey(day)
		planned, completed := 0, 0
		for _, t := range c.tasks {
			if k, ok := c.dayKey(t); !ok || k != key {
				continue
			}
			planned++
			if t.Completed {
				completed++
			}
		}
		out = append(out, DayProgress{
			Day:          day.Format("Mon"),
			Date:         day.Format("Jan 2"),
			Completed:    completed,
			Planned:      planned,
			Productivity: percent(completed, planned),
		})
	}
	return out
}

// CategoryDistribution reports the share of completed tasks per category in
// order of first appearance. With nothing completed it returns zero rows for
// the built-in categories.
func (c *Calculator) CategoryDistribution() []CategoryShare {
	counts := map[model.Category]int{}
	order := []model.Category{}
	total := 0
	for _, t := range c.tasks {
		if !t.Completed {
			continue
		}
		if _, seen := counts[t.Category]; !seen {
			order = append(order, t.Category)
		}
		counts[t.Category]++
		total++
	}

	if total == 0 {
		out := make([]CategoryShare, 0, len(model.BuiltinCategories))
		for _, cat := range model.BuiltinCategories {
			out = append(out, CategoryShare{Name: cat, Color: categoryColor(cat)})
		}
		return out
	}

	out := make([]CategoryShare, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryShare{
			Name:  cat,
			Value: percent(counts[cat], total),
			Color: categoryColor(cat),
			Count: counts[cat],
		})
	}
	return out
}

func categoryColor(cat model.Category) string {
	if color, ok := CategoryColors[cat]; ok {
		return color
	}
	return UnknownCategoryColor
}

// BaselineEnergy is the typical energy level for an hour of the day.
func BaselineEnergy(hour int) int {
	switch {
	case hour >= 8 && hour <= 11:
		return 85
	case hour >= 14 && hour <= 16:
		return 75
	case hour <= 7 || hour >= 20:
		return 30
	case hour >= 12 && hour <= 13:
		return 60
	default:
		return 50
	}
}

func hourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

// EnergyPerformance covers 06:00 through 14:00. An hour with tasks reports
// its completion rate; an empty hour reports 80% of the baseline energy.
func (c *Calculator) EnergyPerformance() []EnergyPoint {
	out := make([]EnergyPoint, 0, 9)
	for hour := 6; hour <= 14; hour++ {
		total, completed := 0, 0
		for _, t := range c.tasks {
			h, ok := c.taskHour(t)
			if !ok || h != hour {
				continue
			}
			total++
			if t.Completed {
				completed++
			}
		}
		energy := BaselineEnergy(hour)
		perf := float64(energy) * 0.8
		if total > 0 {
			perf = float64(completed) / float64(total) * 100
		}
		out = append(out, EnergyPoint{
			Hour:        hour,
			Time:        hourLabel(hour),
			Energy:      energy,
			Performance: int(math.Round(perf)),
			TaskCount:   total,
		})
	}
	return out
}

func (c *Calculator) taskHour(t model.Task) (int, bool) {
	if t.ScheduledTime != nil {
		return t.ScheduledTime.Hour(), true
	}
	if t.CompletedAt != nil {
		return c.local(*t.CompletedAt).Hour(), true
	}
	return 0, false
}

func (c *Calculator) Metrics() Metrics {
	completed := 0
	totalDuration := 0
	for _, t := range c.tasks {
		if t.Completed {
			completed++
			totalDuration += t.Duration
		}
	}
	avg := 0
	if completed > 0 {
		avg = int(math.Round(float64(totalDuration) / float64(completed)))
	}

	recent := c.completionRateBetween(trendWindowDays, 0)
	previous := c.completionRateBetween(trendWindowDays, trendWindowDays)

	return Metrics{
		CompletionRate:      percent(completed, len(c.tasks)),
		TimeAccuracy:        c.timeAccuracy(),
		ProductivityTrend:   math.Round((recent-previous)*10) / 10,
		WeeklyGoal:          WeeklyGoal,
		CurrentStreak:       c.CurrentStreak(),
		TotalTasksCompleted: completed,
		AverageTaskDuration: avg,
	}
}

// timeAccuracy compares the time between scheduled start and completion with
// the estimated duration. Each qualifying task scores
// max(0, 100 - |elapsed-duration|/duration*100).
func (c *Calculator) timeAccuracy() int {
	sum, n := 0.0, 0
	for _, t := range c.tasks {
		if !t.Completed || t.CompletedAt == nil || t.Duration <= 0 {
			continue
		}
		start, ok := t.StartsAt(c.now.Location())
		if !ok || !t.CompletedAt.After(start) {
			continue
		}
		elapsed := t.CompletedAt.Sub(start).Minutes()
		dur := float64(t.Duration)
		sum += math.Max(0, 100-math.Abs(elapsed-dur)/dur*100)
		n++
	}
	if n == 0 {
		return defaultTimeAccuracy
	}
	return int(math.Round(sum / float64(n)))
}

// completionRateBetween is the completion percentage of tasks created within
// [now-offset-days, now-offset] days.
func (c *Calculator) completionRateBetween(days, offset int) float64 {
	end := c.now.AddDate(0, 0, -offset)
	start := end.AddDate(0, 0, -days)
	total, completed := 0, 0
	for _, t := range c.tasks {
		if t.CreatedAt.Before(start) || t.CreatedAt.After(end) {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// CurrentStreak counts consecutive days, walking back from today, on which at
// least 70% of the day's tasks were completed. Days without tasks neither
// extend nor break the streak.
func (c *Calculator) CurrentStreak() int {
	today := c.today()
	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		key := model.DateKey(today.AddDate(0, 0, -i))
		total, completed := 0, 0
		for _, t := range c.tasks {
			onDay := t.ScheduledDate != nil && model.DateKey(*t.ScheduledDate) == key
			if !onDay && t.CompletedAt != nil {
				onDay = model.DateKey(model.DateOf(c.local(*t.CompletedAt))) == key
			}
			if !onDay {
				continue
			}
			total++
			if t.Completed {
				completed++
			}
		}
		if total == 0 {
			continue
		}
		if float64(completed)/float64(total) < streakThreshold {
			break
		}
		streak++
	}
	return streak
}
