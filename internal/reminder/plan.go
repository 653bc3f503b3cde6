package reminder

import (
	"sort"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
)

// EventsForPlan derives the reminders for a plan that are still in the future
// at now. Completed tasks get no reminder. Breaks, task starts and the end of
// day summary are each gated by their notification setting. The result is
// ordered by trigger time. Scheduled clocks are read as wall clocks in now's
// location.
func EventsForPlan(plan []scheduler.ScheduledTask, settings model.Settings, now time.Time) []Event {
	notify := settings.Notifications
	loc := now.Location()
	events := []Event{}
	days := map[string]time.Time{}

	for _, st := range plan {
		start, ok := st.StartsAt(loc)
		if !ok || st.Completed {
			continue
		}
		days[model.DateKey(st.Date())] = st.Date()
		if !start.After(now) {
			continue
		}

		kind := KindTaskStart
		if scheduler.IsBreak(st) {
			if !notify.BreakReminders {
				continue
			}
			kind = KindBreakStart
		} else if !notify.TaskReminders {
			continue
		}
		events = append(events, Event{
			ID:        string(kind) + ":" + st.ID,
			TaskID:    st.ID,
			Kind:      kind,
			Title:     st.Title,
			TriggerAt: start,
		})
	}

	if notify.DailySummary {
		for key, date := range days {
			at := settings.WorkSchedule.EndTime.In(date, loc)
			if !at.After(now) {
				continue
			}
			events = append(events, Event{
				ID:        string(KindDailySummary) + ":" + key,
				Kind:      KindDailySummary,
				Title:     "Daily summary",
				TriggerAt: at,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].TriggerAt.Equal(events[j].TriggerAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].TriggerAt.Before(events[j].TriggerAt)
	})
	return events
}
