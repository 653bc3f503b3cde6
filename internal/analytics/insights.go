package analytics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

type InsightType string

const (
	InsightPeak       InsightType = "peak"
	InsightPattern    InsightType = "pattern"
	InsightSuggestion InsightType = "suggestion"
	InsightWarning    InsightType = "warning"
)

// MaxInsights caps the number of insights returned.
const MaxInsights = 4

type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Color       string      `json:"color"`
	Priority    int         `json:"priority"`
	Date        time.Time   `json:"date"`
}

type GoalType string

const (
	GoalTasks  GoalType = "tasks"
	GoalHours  GoalType = "hours"
	GoalRate   GoalType = "rate"
	GoalStreak GoalType = "streak"
)

type Goal struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Progress float64  `json:"progress"`
	Target   int      `json:"target"`
	Current  int      `json:"current"`
	Type     GoalType `json:"type"`
}

// Insights returns at most MaxInsights observations ordered by priority, with
// ties kept in generation order.
func (c *Calculator) Insights() []Insight {
	if len(c.tasks) == 0 {
		return []Insight{
			{
				Type:        InsightSuggestion,
				Title:       "Welcome to TaskWise!",
				Description: "Start by adding your first task to begin tracking your productivity",
				Color:       "blue",
				Priority:    1,
				Date:        c.now,
			},
			{
				Type:        InsightPattern,
				Title:       "Optimize Your Day",
				Description: "Use AI planning to automatically schedule tasks based on your energy levels",
				Color:       "green",
				Priority:    2,
				Date:        c.now,
			},
		}
	}

	metrics := c.Metrics()
	insights := []Insight{}

	progress := c.WeeklyProgress()
	best := progress[0]
	for _, day := range progress[1:] {
		if day.Productivity > best.Productivity {
			best = day
		}
	}
	if best.Productivity > 80 {
		insights = append(insights, Insight{
			Type:        InsightPeak,
			Title:       "Peak Performance",
			Description: fmt.Sprintf("Most productive on %ss with %d%% completion", best.Day, best.Productivity),
			Color:       "green",
			Priority:    1,
			Date:        c.now,
		})
	}

	if metrics.CompletionRate < 60 {
		insights = append(insights, Insight{
			Type:        InsightWarning,
			Title:       "Low Completion Rate",
			Description: fmt.Sprintf("Only %d%% of tasks completed this week", metrics.CompletionRate),
			Color:       "red",
			Priority:    3,
			Date:        c.now,
		})
	}

	if metrics.CurrentStreak >= 7 {
		insights = append(insights, Insight{
			Type:        InsightPattern,
			Title:       "Strong Momentum",
			Description: fmt.Sprintf("%d day completion streak!", metrics.CurrentStreak),
			Color:       "blue",
			Priority:    1,
			Date:        c.now,
		})
	}

	if metrics.ProductivityTrend > 5 {
		insights = append(insights, Insight{
			Type:        InsightSuggestion,
			Title:       "Improving Trend",
			Description: fmt.Sprintf("Productivity up %s%% this week", strconv.FormatFloat(metrics.ProductivityTrend, 'f', -1, 64)),
			Color:       "green",
			Priority:    2,
			Date:        c.now,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority < insights[j].Priority
	})
	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	return insights
}

// DefaultGoals proposes goals sized to recent performance, or starter goals
// when there are no tasks yet.
func (c *Calculator) DefaultGoals() []Goal {
	if len(c.tasks) == 0 {
		return []Goal{
			{ID: "weekly-tasks", Name: "Add your first tasks", Target: 5, Type: GoalTasks},
			{ID: "completion-rate", Name: "Achieve 80% completion rate", Target: 80, Type: GoalRate},
			{ID: "daily-streak", Name: "Start a completion streak", Target: 3, Type: GoalStreak},
			{ID: "weekly-hours", Name: "Plan 10 hours of focused work", Target: 10, Type: GoalHours},
		}
	}

	metrics := c.Metrics()
	planned, completed := 0, 0
	for _, day := range c.WeeklyProgress() {
		planned += day.Planned
		completed += day.Completed
	}
	focusHours := float64(completed) * float64(metrics.AverageTaskDuration) / 60

	return []Goal{
		{
			ID:       "weekly-tasks",
			Name:     "Complete tasks this week",
			Progress: math.Round(float64(completed) / float64(max(planned, 1)) * 100),
			Target:   max(planned, 10),
			Current:  completed,
			Type:     GoalTasks,
		},
		{
			ID:       "completion-rate",
			Name:     "Maintain completion rate",
			Progress: float64(metrics.CompletionRate),
			Target:   WeeklyGoal,
			Current:  metrics.CompletionRate,
			Type:     GoalRate,
		},
		{
			ID:       "daily-streak",
			Name:     "Daily completion streak",
			Progress: math.Min(float64(metrics.CurrentStreak)/7*100, 100),
			Target:   7,
			Current:  metrics.CurrentStreak,
			Type:     GoalStreak,
		},
		{
			ID:       "weekly-hours",
			Name:     "Focus hours this week",
			Progress: math.Round(focusHours / 25 * 100),
			Target:   25,
			Current:  int(math.Round(focusHours)),
			Type:     GoalHours,
		},
	}
}

// Report bundles every analytics view computed at one instant.
type Report struct {
	GeneratedAt          time.Time       `json:"generatedAt"`
	WeeklyProgress       []DayProgress   `json:"weeklyProgress"`
	CategoryDistribution []CategoryShare `json:"categoryDistribution"`
	EnergyPerformance    []EnergyPoint   `json:"energyPerformance"`
	Metrics              Metrics         `json:"metrics"`
	Insights             []Insight       `json:"insights"`
	Goals                []Goal          `json:"goals"`
}

func (c *Calculator) Report() Report {
	return Report{
		GeneratedAt:          c.now,
		WeeklyProgress:       c.WeeklyProgress(),
		CategoryDistribution: c.CategoryDistribution(),
		EnergyPerformance:    c.EnergyPerformance(),
		Metrics:              c.Metrics(),
		Insights:             c.Insights(),
		Goals:                c.DefaultGoals(),
	}
}
