package reminder

import (
	"testing"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
)

var planDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func placed(id, clock string, duration int) scheduler.ScheduledTask {
	task := model.Task{ID: id, Title: "task " + id, Category: model.CategoryWork, Priority: model.PriorityHigh, Duration: duration, EnergyLevel: model.EnergyHigh}
	task.Place(planDay, model.MustClock(clock))
	return scheduler.ScheduledTask{Task: task, Confidence: 75, Conflicts: []string{}}
}

func withBreaks(now time.Time) []scheduler.ScheduledTask {
	s := scheduler.New(scheduler.WithClock(func() time.Time { return now }))
	prefs := model.DefaultPreferences()
	return s.InsertBreaks([]scheduler.ScheduledTask{
		placed("early", "08:00", 30),
		placed("a", "09:00", 100),
		placed("b", "11:00", 30),
	}, prefs)
}

func TestEventsForPlan(t *testing.T) {
	now := planDay.Add(8*time.Hour + 30*time.Minute)
	events := EventsForPlan(withBreaks(now), model.DefaultSettings(), now)

	want := []struct {
		id   string
		kind Kind
		at   string
	}{
		{"task_start:a", KindTaskStart, "09:00"},
		{"break_start:break-a", KindBreakStart, "10:40"},
		{"task_start:b", KindTaskStart, "11:00"},
		{"daily_summary:2026-03-02", KindDailySummary, "17:00"},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i, w := range want {
		ev := events[i]
		if ev.ID != w.id || ev.Kind != w.kind || model.ClockOf(ev.TriggerAt).String() != w.at {
			t.Fatalf("event %d: expected %s %s at %s, got %+v", i, w.id, w.kind, w.at, ev)
		}
	}
}

func TestEventsForPlanRespectsNotificationSettings(t *testing.T) {
	now := planDay.Add(7 * time.Hour)
	settings := model.DefaultSettings()
	settings.Notifications = model.NotificationSettings{BreakReminders: true}

	events := EventsForPlan(withBreaks(now), settings, now)
	if len(events) != 1 || events[0].Kind != KindBreakStart {
		t.Fatalf("expected only the break reminder, got %+v", events)
	}

	settings.Notifications = model.NotificationSettings{TaskReminders: true}
	plan := withBreaks(now)
	plan[1].Complete(now)
	events = EventsForPlan(plan, settings, now)
	if len(events) != 2 || events[0].TaskID != "early" || events[1].TaskID != "b" {
		t.Fatalf("expected reminders for early and b only, got %+v", events)
	}
}

func TestEventsForPlanUsesLocalWallClock(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, est)
	events := EventsForPlan(withBreaks(now), model.DefaultSettings(), now)

	want := []struct {
		id string
		at time.Time
	}{
		{"task_start:a", time.Date(2026, 3, 2, 9, 0, 0, 0, est)},
		{"break_start:break-a", time.Date(2026, 3, 2, 10, 40, 0, 0, est)},
		{"task_start:b", time.Date(2026, 3, 2, 11, 0, 0, 0, est)},
		{"daily_summary:2026-03-02", time.Date(2026, 3, 2, 17, 0, 0, 0, est)},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i, w := range want {
		if events[i].ID != w.id || !events[i].TriggerAt.Equal(w.at) {
			t.Fatalf("event %d: expected %s at %v, got %+v", i, w.id, w.at, events[i])
		}
	}
}
