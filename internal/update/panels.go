package update

import (
	"strings"

	"github.com/sandeepkv93/taskwise/internal/views"
)

func (m Model) renderTodayView() string {
	return views.RenderDayPanel(m.Snapshot.Today, m.SelectedTaskID)
}

func (m Model) renderTodaySidebar() string {
	parts := []string{
		views.RenderAlerts(m.Snapshot.Today.Alerts),
		views.RenderMarkdown(views.SuggestionsMarkdown("Suggestions", m.Snapshot.Today.Suggestions), m.markdownStyle),
		views.RenderReminders(m.Snapshot.Reminders),
	}
	return joinNonEmpty(parts)
}

func (m Model) renderPlanningView() string {
	parts := []string{views.RenderWeekPanel(m.Snapshot.Week)}
	if m.Preview != nil {
		parts = append(parts, views.RenderSchedule(m.Preview.Result, m.Preview.Timeline))
		parts = append(parts, views.RenderMarkdown(views.SuggestionsMarkdown("Suggestions", m.Preview.Result.Suggestions), m.markdownStyle))
	} else {
		parts = append(parts, "press [s] to preview the week, [b] with breaks, [o] to optimize")
	}
	return joinNonEmpty(parts)
}

func (m Model) renderPlanningSidebar() string {
	stats := m.Snapshot.Stats
	return views.RenderHistory(views.HistoryData{
		Total:             stats.TotalOptimizations,
		AverageEfficiency: stats.AverageEfficiency,
		AverageRating:     stats.AverageRating,
	})
}

func (m Model) analyticsBody() string {
	report := m.Snapshot.Report
	return joinNonEmpty([]string{
		views.RenderMetrics(report),
		views.RenderMarkdown(views.InsightsMarkdown(report), m.markdownStyle),
	})
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
