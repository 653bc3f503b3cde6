package scheduler

import (
	"strings"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// BreakIDPrefix marks synthetic break entries.
const BreakIDPrefix = "break-"

// InsertBreaks walks consecutive pairs in the given order and splices a break
// after the first task of a pair when the gap fits a break and the first task
// ran at least BreakFrequency minutes. Inserted breaks are never compared with
// their neighbours.
func (s *Scheduler) InsertBreaks(tasks []ScheduledTask, prefs model.Preferences) []ScheduledTask {
	out := make([]ScheduledTask, 0, len(tasks))
	now := s.now()
	for i, task := range tasks {
		out = append(out, task)
		if i == len(tasks)-1 {
			continue
		}
		start, ok := task.StartsAt(nil)
		if !ok {
			continue
		}
		nextStart, ok := tasks[i+1].StartsAt(nil)
		if !ok {
			continue
		}
		end := start.Add(minutes(task.Duration))
		gap := nextStart.Sub(end).Minutes()
		if gap < float64(prefs.BreakDuration) || task.Duration < prefs.BreakFrequency {
			continue
		}

		brk := model.Task{
			ID:          BreakIDPrefix + task.ID,
			Title:       "Break",
			Category:    model.CategoryPersonal,
			Priority:    model.PriorityLow,
			Duration:    prefs.BreakDuration,
			EnergyLevel: model.EnergyLow,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		brk.Place(task.Date(), model.ClockOf(end))
		out = append(out, ScheduledTask{Task: brk, Confidence: 100, Conflicts: []string{}})
	}
	return out
}

// IsBreak reports whether t was produced by InsertBreaks.
func IsBreak(t ScheduledTask) bool {
	return strings.HasPrefix(t.ID, BreakIDPrefix) && t.Title == "Break"
}
