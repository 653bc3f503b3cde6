package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/taskwise/internal/analytics"
	"github.com/sandeepkv93/taskwise/internal/dayplan"
	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/reminder"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
	"github.com/sandeepkv93/taskwise/internal/storage"
)

var priorityStyles = map[model.Priority]lipgloss.Style{
	model.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
}

func priorityBadge(p model.Priority) string {
	label := "[" + strings.ToUpper(string(p)) + "]"
	if style, ok := priorityStyles[p]; ok {
		return style.Render(label)
	}
	return label
}

func RenderTaskList(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "tasks:\n  (none)"
	}
	var b strings.Builder
	b.WriteString("tasks:\n")
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		b.WriteString(fmt.Sprintf("[%s] %s %s %s (%s, %dm, %s energy)", mark, t.ID, priorityBadge(t.Priority), t.Title, t.Category, t.Duration, strings.ToLower(string(t.EnergyLevel))))
		if start, ok := t.StartsAt(nil); ok {
			b.WriteString(" @" + start.Format("Mon Jan 2 15:04"))
		}
		if t.Deadline != nil {
			b.WriteString(" due:" + t.Deadline.Format("Jan 2"))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderDayPanel lists the half-hour slots of a day. A task is named on the
// slot where it starts and marked as continuing on the slots it covers.
func RenderDayPanel(plan dayplan.Plan, selectedID string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("day: %s | workload: %s | efficiency: %d%%\n", plan.Date.Format("Mon Jan 2"), plan.Workload, plan.Efficiency))
	if len(plan.Slots) == 0 {
		b.WriteString("  (no working hours)")
		return b.String()
	}
	for _, slot := range plan.Slots {
		cursor := " "
		if slot.Task != nil && slot.Task.ID == selectedID && selectedID != "" {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s  %-5s", cursor, slot.Time, slot.Type)
		if slot.Task != nil {
			t := slot.Task
			if t.ScheduledTime != nil && *t.ScheduledTime == slot.Time {
				line += fmt.Sprintf(" %s %s (%dm)", priorityBadge(t.Priority), t.Title, t.Duration)
			} else {
				line += " | " + t.Title
			}
			if t.Completed {
				line += " done"
			}
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderWeekPanel(week []dayplan.DaySummary) string {
	var b strings.Builder
	b.WriteString("week:\n")
	for _, day := range week {
		b.WriteString(fmt.Sprintf("  %s %-6s %2d tasks %4.1fh %3d%% done\n", day.Day, day.Date, day.Tasks, day.Hours, day.CompletionRate))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderAlerts(alerts []dayplan.Alert) string {
	if len(alerts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("alerts:\n")
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("- [%s] %s: %s\n", strings.ToUpper(string(a.Type)), a.Title, a.Description))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderSchedule prints a scheduling result in start order, followed by the
// tasks that found no slot.
func RenderSchedule(result scheduler.SchedulingResult, timeline []scheduler.ScheduledTask) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("schedule: %d placed, %d unscheduled\n", len(result.ScheduledTasks), len(result.UnscheduledTasks)))
	day := ""
	for _, st := range timeline {
		if key := st.Date().Format("Mon Jan 2"); key != day {
			day = key
			b.WriteString("\n" + day + ":\n")
		}
		if scheduler.IsBreak(st) {
			b.WriteString(fmt.Sprintf("  %s  -- break %dm --\n", st.Time(), st.Duration))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s  %s %s (%dm) %.0f%%\n", st.Time(), priorityBadge(st.Priority), st.Title, st.Duration, st.Confidence))
	}
	if len(result.UnscheduledTasks) > 0 {
		b.WriteString("\nunscheduled:\n")
		for _, t := range result.UnscheduledTasks {
			b.WriteString(fmt.Sprintf("  %s %s (%dm)\n", priorityBadge(t.Priority), t.Title, t.Duration))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderMetrics(report analytics.Report) string {
	m := report.Metrics
	var b strings.Builder
	b.WriteString("metrics:\n")
	b.WriteString(fmt.Sprintf("  completion rate   %d%% (goal %d%%)\n", m.CompletionRate, m.WeeklyGoal))
	b.WriteString(fmt.Sprintf("  time accuracy     %d%%\n", m.TimeAccuracy))
	b.WriteString(fmt.Sprintf("  trend             %+.1f%%\n", m.ProductivityTrend))
	b.WriteString(fmt.Sprintf("  streak            %d days\n", m.CurrentStreak))
	b.WriteString(fmt.Sprintf("  completed         %d tasks, avg %dm\n", m.TotalTasksCompleted, m.AverageTaskDuration))

	b.WriteString("\nlast 7 days:\n")
	for _, d := range report.WeeklyProgress {
		b.WriteString(fmt.Sprintf("  %s %-6s %2d/%-2d %s\n", d.Day, d.Date, d.Completed, d.Planned, bar(d.Productivity)))
	}

	b.WriteString("\ncategories:\n")
	for _, c := range report.CategoryDistribution {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■")
		b.WriteString(fmt.Sprintf("  %s %-10s %3d%% (%d)\n", swatch, c.Name, c.Value, c.Count))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// bar draws a ten cell gauge for a 0-100 value.
func bar(pct int) string {
	filled := max(0, min(10, pct/10))
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %d%%", pct)
}

// InsightsMarkdown renders insights and goals for RenderMarkdown.
func InsightsMarkdown(report analytics.Report) string {
	var b strings.Builder
	b.WriteString("## Insights\n\n")
	for _, in := range report.Insights {
		b.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", in.Title, in.Type, in.Description))
	}
	b.WriteString("\n## Goals\n\n")
	b.WriteString("| Goal | Progress | Current | Target |\n|---|---|---|---|\n")
	for _, g := range report.Goals {
		b.WriteString(fmt.Sprintf("| %s | %.0f%% | %d | %d |\n", g.Name, g.Progress, g.Current, g.Target))
	}
	return b.String()
}

func SuggestionsMarkdown(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## " + title + "\n\n")
	for _, s := range items {
		b.WriteString("- " + s + "\n")
	}
	return b.String()
}

type HistoryData struct {
	Records           []storage.OptimizationRecord
	Total             int
	AverageEfficiency int
	AverageRating     float64
}

func RenderHistory(data HistoryData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("optimizations: %d | avg efficiency %d%% | avg rating %.1f\n", data.Total, data.AverageEfficiency, data.AverageRating))
	if len(data.Records) == 0 {
		b.WriteString("  (none)")
		return b.String()
	}
	for _, rec := range data.Records {
		rating := "-"
		if rec.UserRating != nil {
			rating = fmt.Sprintf("%d/5", *rec.UserRating)
		}
		b.WriteString(fmt.Sprintf("  %s %-12s %s %2d tasks %3d%% rating %s\n", rec.ID, rec.Mode, rec.RanAt.Format("2006-01-02 15:04"), rec.TasksOptimized, rec.Efficiency, rating))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderReminders(events []reminder.Event) string {
	if len(events) == 0 {
		return "reminders:\n  (none upcoming)"
	}
	var b strings.Builder
	b.WriteString("reminders:\n")
	for _, ev := range events {
		b.WriteString(fmt.Sprintf("  %s %-13s %s\n", ev.TriggerAt.Format("Mon 15:04"), ev.Kind, ev.Title))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
